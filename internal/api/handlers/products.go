package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/athebyme/ozon-tracker/internal/adapters/storage"
	"github.com/athebyme/ozon-tracker/internal/domain/models"
	"github.com/athebyme/ozon-tracker/internal/interfaces"
	"github.com/go-chi/render"
)

// Ключ и срок жизни закэшированного ответа со списком товаров
const (
	productsCacheKey = "products:list"
	productsCacheTTL = 30 * time.Second
)

// ProductHandler обработчик запросов к каталогу товаров
type ProductHandler struct {
	store  *storage.MemoryStore
	cache  interfaces.CachePort
	logger interfaces.LoggerPort
}

// NewProductHandler создает новый обработчик каталога.
// cache может быть nil — тогда ответы не кэшируются.
func NewProductHandler(store *storage.MemoryStore, cache interfaces.CachePort, logger interfaces.LoggerPort) *ProductHandler {
	return &ProductHandler{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// errorResponse представляет структуру ответа с ошибкой
type errorResponse struct {
	Error string `json:"error"`
}

type productListResponse struct {
	Total    int              `json:"total"`
	Products []models.Product `json:"products"`
}

type searchResponse struct {
	Query    string           `json:"query"`
	Count    int              `json:"count"`
	Products []models.Product `json:"products"`
}

type statsResponse struct {
	models.ProductStats
	Syncs            int        `json:"syncs"`
	LastSync         *time.Time `json:"last_sync"`
	ConnectionStatus string     `json:"connection_status"`
	LastError        string     `json:"last_error,omitempty"`
}

// ListProducts обрабатывает запрос на получение всего набора товаров
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.cache != nil {
		if data, err := h.cache.Get(ctx, productsCacheKey); err == nil {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			_, _ = w.Write(data)
			return
		}
	}

	products := h.store.Products()
	resp := productListResponse{
		Total:    len(products),
		Products: products,
	}

	if h.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := h.cache.Set(ctx, productsCacheKey, data, productsCacheTTL); err != nil {
				h.logger.WarnWithContext(ctx, "Не удалось сохранить ответ в кэш",
					interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// GetProduct обрабатывает запрос на получение товара по идентификатору
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "Invalid product id"})
		return
	}

	product, ok := h.store.ProductByID(id)
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorResponse{Error: "Product not found"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{"product": product})
}

// Search обрабатывает поиск товаров по подстроке названия
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("q"))

	results := h.store.Search(query)
	if results == nil {
		results = []models.Product{}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, searchResponse{
		Query:    query,
		Count:    len(results),
		Products: results,
	})
}

// Stats обрабатывает запрос агрегированной статистики каталога
func (h *ProductHandler) Stats(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, statsResponse{
		ProductStats:     h.store.Stats(),
		Syncs:            len(h.store.Syncs()),
		LastSync:         h.store.LastSync(),
		ConnectionStatus: h.store.ConnectionStatus(),
		LastError:        h.store.LastError(),
	})
}
