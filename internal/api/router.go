package api

import (
	"net/http"

	"github.com/athebyme/ozon-tracker/internal/adapters/storage"
	"github.com/athebyme/ozon-tracker/internal/api/handlers"
	"github.com/athebyme/ozon-tracker/internal/api/middleware"
	"github.com/athebyme/ozon-tracker/internal/domain/services"
	"github.com/athebyme/ozon-tracker/internal/interfaces"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter настраивает маршрутизатор
func SetupRouter(
	syncService *services.SyncService,
	store *storage.MemoryStore,
	cache interfaces.CachePort,
	logger interfaces.LoggerPort,
	corsAllowedOrigins []string,
	metricsEnabled bool,
) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.CORS(corsAllowedOrigins))
	r.Use(middleware.Metrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "Not found"})
	})

	productHandler := handlers.NewProductHandler(store, cache, logger)
	syncHandler := handlers.NewSyncHandler(syncService, store, logger)

	r.Get("/", handlers.Dashboard)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", productHandler.ListProducts)
		r.Get("/product", productHandler.GetProduct)
		r.Get("/search", productHandler.Search)
		r.Get("/stats", productHandler.Stats)
		r.Get("/sync/history", syncHandler.History)
		r.Get("/health", syncHandler.Health)
		r.Post("/sync", syncHandler.Sync)
	})

	return r
}
