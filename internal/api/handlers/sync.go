package handlers

import (
	"errors"
	"net/http"

	"github.com/athebyme/ozon-tracker/internal/adapters/storage"
	"github.com/athebyme/ozon-tracker/internal/domain/models"
	"github.com/athebyme/ozon-tracker/internal/domain/services"
	"github.com/athebyme/ozon-tracker/internal/interfaces"
	"github.com/go-chi/render"
)

// SyncHandler обработчик команд синхронизации и запросов ее состояния
type SyncHandler struct {
	service *services.SyncService
	store   *storage.MemoryStore
	logger  interfaces.LoggerPort
}

// NewSyncHandler создает новый обработчик синхронизации
func NewSyncHandler(service *services.SyncService, store *storage.MemoryStore, logger interfaces.LoggerPort) *SyncHandler {
	return &SyncHandler{
		service: service,
		store:   store,
		logger:  logger,
	}
}

type syncResponse struct {
	Success          bool   `json:"success"`
	ProductsSynced   int    `json:"products_synced"`
	Message          string `json:"message"`
	ConnectionStatus string `json:"connection_status"`
}

type syncHistoryResponse struct {
	Total int                 `json:"total"`
	Syncs []models.SyncRecord `json:"syncs"`
}

type healthResponse struct {
	Status           string `json:"status"`
	ProductsLoaded   int    `json:"products_loaded"`
	ConnectionStatus string `json:"connection_status"`
}

// Sync обрабатывает команду синхронизации каталога.
// Выполняется ровно одна попытка; политика повторов остается за вызывающим.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.SyncFromRemote(r.Context())

	if errors.Is(err, services.ErrSyncInProgress) {
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, syncResponse{
			Success:          false,
			ProductsSynced:   0,
			Message:          err.Error(),
			ConnectionStatus: h.store.ConnectionStatus(),
		})
		return
	}

	resp := syncResponse{
		Success:          err == nil,
		ProductsSynced:   count,
		Message:          "Синхронизация завершена",
		ConnectionStatus: h.store.ConnectionStatus(),
	}
	if err != nil {
		resp.Message = err.Error()
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// History обрабатывает запрос истории синхронизаций
func (h *SyncHandler) History(w http.ResponseWriter, r *http.Request) {
	syncs := h.store.Syncs()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, syncHistoryResponse{
		Total: len(syncs),
		Syncs: syncs,
	})
}

// Health обрабатывает запрос состояния сервиса
func (h *SyncHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, healthResponse{
		Status:           "ok",
		ProductsLoaded:   len(h.store.Products()),
		ConnectionStatus: h.store.ConnectionStatus(),
	})
}
