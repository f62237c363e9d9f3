package models

import "time"

// Статусы подключения к Ozon API. Статус перезаписывается при каждой
// попытке синхронизации, ошибочные статусы дополняются деталями.
const (
	StatusInitializing = "initializing"
	StatusConnecting   = "connecting"
	StatusConnected    = "connected"
	StatusNoConnection = "no connectivity"
)

// Статусы записи в истории синхронизаций
const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// SyncTypeFull — единственный поддерживаемый тип синхронизации
const SyncTypeFull = "full"

// SyncRecord представляет запись в истории синхронизаций.
// История только пополняется: записи не изменяются и не удаляются,
// ID присваивается монотонно начиная с 1.
type SyncRecord struct {
	ID            int       `json:"id"`
	Date          time.Time `json:"date"`
	Type          string    `json:"type"`
	ProductsCount int       `json:"products_count"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
}
