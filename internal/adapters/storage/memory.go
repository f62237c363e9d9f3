package storage

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/athebyme/ozon-tracker/internal/domain/models"
	"github.com/samber/lo"
)

// MemoryStore хранит текущий набор товаров, историю синхронизаций и
// статус подключения. Состояние живет только в памяти процесса и целиком
// перестраивается при каждой успешной синхронизации.
type MemoryStore struct {
	mu sync.RWMutex

	products []models.Product
	syncs    []models.SyncRecord

	connectionStatus string
	lastError        string
	lastSync         *time.Time
}

// NewMemoryStore создает новое пустое хранилище
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		connectionStatus: models.StatusInitializing,
	}
}

// ReplaceProducts атомарно заменяет весь набор товаров.
// Читатели никогда не видят частично обновленный набор.
func (s *MemoryStore) ReplaceProducts(products []models.Product) {
	next := make([]models.Product, len(products))
	copy(next, products)

	s.mu.Lock()
	s.products = next
	s.mu.Unlock()
}

// Products возвращает копию текущего набора товаров в порядке листинга
func (s *MemoryStore) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Product, len(s.products))
	copy(result, s.products)
	return result
}

// ProductByID возвращает товар по идентификатору
func (s *MemoryStore) ProductByID(id int64) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Find(s.products, func(p models.Product) bool {
		return p.ID == id
	})
}

// Search возвращает товары, название которых содержит подстроку
// без учета регистра
func (s *MemoryStore) Search(query string) []models.Product {
	q := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Filter(s.products, func(p models.Product, _ int) bool {
		return strings.Contains(strings.ToLower(p.Name), q)
	})
}

// Stats возвращает агрегированную статистику по текущему набору товаров.
// Средняя цена равна 0 для пустого набора.
func (s *MemoryStore) Stats() models.ProductStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.ProductStats{
		TotalProducts: len(s.products),
		TotalStock: lo.SumBy(s.products, func(p models.Product) int {
			return p.Stock
		}),
		TotalFBOStock: lo.SumBy(s.products, func(p models.Product) int {
			return p.FBOStock
		}),
	}

	if len(s.products) > 0 {
		total := lo.SumBy(s.products, func(p models.Product) float64 {
			return p.Price
		})
		stats.AveragePrice = math.Round(total/float64(len(s.products))*100) / 100
	}

	return stats
}

// AppendSync добавляет запись в историю синхронизаций и присваивает ей
// монотонный ID (длина истории + 1 на момент добавления)
func (s *MemoryStore) AppendSync(record models.SyncRecord) models.SyncRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = len(s.syncs) + 1
	s.syncs = append(s.syncs, record)
	return record
}

// Syncs возвращает копию истории синхронизаций, от старых записей к новым
func (s *MemoryStore) Syncs() []models.SyncRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.SyncRecord, len(s.syncs))
	copy(result, s.syncs)
	return result
}

// SetConnectionStatus перезаписывает текущий статус подключения
func (s *MemoryStore) SetConnectionStatus(status string) {
	s.mu.Lock()
	s.connectionStatus = status
	s.mu.Unlock()
}

// ConnectionStatus возвращает текущий статус подключения
func (s *MemoryStore) ConnectionStatus() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connectionStatus
}

// SetLastError сохраняет текст последней ошибки синхронизации.
// Пустая строка очищает ошибку.
func (s *MemoryStore) SetLastError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}

// LastError возвращает текст последней ошибки синхронизации
func (s *MemoryStore) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// SetLastSync сохраняет время последней успешной синхронизации
func (s *MemoryStore) SetLastSync(t time.Time) {
	s.mu.Lock()
	s.lastSync = &t
	s.mu.Unlock()
}

// LastSync возвращает время последней успешной синхронизации,
// nil — если успешных синхронизаций еще не было
func (s *MemoryStore) LastSync() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastSync == nil {
		return nil
	}
	t := *s.lastSync
	return &t
}
