package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/athebyme/ozon-tracker/internal/adapters/ozon"
	"github.com/athebyme/ozon-tracker/internal/adapters/storage"
	"github.com/athebyme/ozon-tracker/internal/domain/models"
	"github.com/athebyme/ozon-tracker/internal/interfaces"
)

// batchLimit — максимальный размер пакета идентификаторов в одном запросе,
// ограничение самого Ozon API
const batchLimit = 100

// productsCachePattern — ключи ответов, инвалидируемые после успешной синхронизации
const productsCachePattern = "products:*"

var (
	// ErrSyncInProgress возвращается при попытке запустить синхронизацию,
	// пока предыдущая не завершилась. В историю такая попытка не попадает.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrNoProducts возвращается, когда списочный метод не вернул ни одного товара
	ErrNoProducts = errors.New("no products found")
)

// OzonAPI описывает используемое подмножество клиента Ozon Seller API
type OzonAPI interface {
	ProductList(ctx context.Context, limit int) (interface{}, error)
	ProductInfo(ctx context.Context, ids []int64) (interface{}, error)
	Stocks(ctx context.Context, ids []int64) (interface{}, error)
}

// Правила поиска списка записей для каждого из трех методов
var (
	listRules   = recordRules{envelopeKeys: []string{"result"}, listKeys: []string{"products", "items"}}
	detailRules = recordRules{envelopeKeys: []string{"result"}, listKeys: []string{"items", "products"}}
	stockRules  = recordRules{envelopeKeys: []string{"result"}, listKeys: []string{"items", "stocks", "rows"}}
)

// SyncService синхронизирует каталог из Ozon Seller API: три последовательных
// запроса (список → информация → остатки), объединение записей по
// идентификатору и атомарная замена набора товаров в хранилище.
type SyncService struct {
	client OzonAPI
	store  *storage.MemoryStore
	cache  interfaces.CachePort
	logger interfaces.LoggerPort

	pageLimit int

	mu sync.Mutex
}

// NewSyncService создает новый сервис синхронизации.
// cache может быть nil — тогда инвалидация кэша не выполняется.
func NewSyncService(
	client OzonAPI,
	store *storage.MemoryStore,
	cache interfaces.CachePort,
	log interfaces.LoggerPort,
	pageLimit int,
) *SyncService {
	if pageLimit <= 0 || pageLimit > batchLimit {
		pageLimit = batchLimit
	}
	return &SyncService{
		client:    client,
		store:     store,
		cache:     cache,
		logger:    log,
		pageLimit: pageLimit,
	}
}

// SyncFromRemote выполняет ровно одну попытку синхронизации, без повторов.
// Повторный вызов при идущей синхронизации отклоняется с ErrSyncInProgress.
// Любая ошибка фиксируется в статусе подключения и истории синхронизаций;
// набор товаров при этом остается прежним.
func (s *SyncService) SyncFromRemote(ctx context.Context) (int, error) {
	if !s.mu.TryLock() {
		return 0, ErrSyncInProgress
	}
	defer s.mu.Unlock()

	s.store.SetConnectionStatus(models.StatusConnecting)
	s.logger.InfoWithContext(ctx, "Синхронизация каталога из Ozon API")

	products, err := s.reconcile(ctx)
	now := time.Now().UTC()

	if err != nil {
		s.store.SetConnectionStatus(statusForError(err))
		s.store.SetLastError(err.Error())
		s.store.AppendSync(models.SyncRecord{
			Date:          now,
			Type:          models.SyncTypeFull,
			ProductsCount: 0,
			Status:        models.SyncStatusError,
			Error:         err.Error(),
		})
		s.logger.ErrorWithContext(ctx, "Синхронизация завершилась ошибкой",
			interfaces.LogField{Key: "error", Value: err.Error()})
		return 0, err
	}

	s.store.ReplaceProducts(products)
	s.store.SetConnectionStatus(models.StatusConnected)
	s.store.SetLastError("")
	s.store.SetLastSync(now)
	s.store.AppendSync(models.SyncRecord{
		Date:          now,
		Type:          models.SyncTypeFull,
		ProductsCount: len(products),
		Status:        models.SyncStatusSuccess,
	})

	s.invalidateCache(ctx)

	s.logger.InfoWithContext(ctx, "Синхронизация завершена",
		interfaces.LogField{Key: "products", Value: len(products)})
	return len(products), nil
}

// reconcile выполняет последовательность из трех запросов и объединяет
// записи по идентификатору, сохраняя порядок листинга
func (s *SyncService) reconcile(ctx context.Context) ([]models.Product, error) {
	payload, err := s.client.ProductList(ctx, s.pageLimit)
	if err != nil {
		return nil, fmt.Errorf("product list: %w", err)
	}

	rawItems, err := extractRecords(payload, listRules)
	if err != nil {
		return nil, err
	}

	var refs []models.CatalogItemRef
	for i, raw := range rawItems {
		rec, ok := raw.(map[string]interface{})
		if !ok {
			s.logger.WarnWithContext(ctx, "Пропущена запись листинга неожиданной формы",
				interfaces.LogField{Key: "index", Value: i})
			continue
		}
		refs = append(refs, extractCatalogItem(rec, i))
	}
	if len(refs) == 0 {
		return nil, ErrNoProducts
	}

	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	if len(ids) > batchLimit {
		ids = ids[:batchLimit]
	}

	details, err := s.fetchDetails(ctx, ids)
	if err != nil {
		return nil, err
	}

	stocks, err := s.fetchStocks(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Промах по идентификатору — не ошибка: поля заполняются значениями
	// по умолчанию
	products := make([]models.Product, 0, len(refs))
	for _, ref := range refs {
		product := models.Product{
			ID:     ref.ID,
			SKU:    ref.OfferCode,
			Name:   models.DefaultProductName,
			Status: models.ProductStatusActive,
		}
		if ref.Archived {
			product.Status = models.ProductStatusArchived
		}
		if detail, ok := details[ref.ID]; ok {
			product.Name = detail.Name
			product.Price = detail.Price
			product.FBOStock = detail.FBOStock
			product.Rating = detail.Rating
		}
		if snapshot, ok := stocks[ref.ID]; ok {
			product.Stock = snapshot.TotalPresent()
		}
		products = append(products, product)
	}

	return products, nil
}

// fetchDetails запрашивает информацию о товарах и индексирует ее по
// идентификатору; при дублях выигрывает последняя запись
func (s *SyncService) fetchDetails(ctx context.Context, ids []int64) (map[int64]models.ProductDetail, error) {
	payload, err := s.client.ProductInfo(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("product info: %w", err)
	}

	rawItems, err := extractRecords(payload, detailRules)
	if err != nil {
		return nil, err
	}

	details := make(map[int64]models.ProductDetail, len(rawItems))
	for i, raw := range rawItems {
		rec, ok := raw.(map[string]interface{})
		if !ok {
			s.logger.WarnWithContext(ctx, "Пропущена запись информации неожиданной формы",
				interfaces.LogField{Key: "index", Value: i})
			continue
		}
		detail := extractDetail(rec, i)
		details[detail.ID] = detail
	}

	return details, nil
}

// fetchStocks запрашивает остатки и индексирует их по идентификатору
func (s *SyncService) fetchStocks(ctx context.Context, ids []int64) (map[int64]models.StockSnapshot, error) {
	payload, err := s.client.Stocks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("product stocks: %w", err)
	}

	rawItems, err := extractRecords(payload, stockRules)
	if err != nil {
		return nil, err
	}

	stocks := make(map[int64]models.StockSnapshot, len(rawItems))
	for i, raw := range rawItems {
		rec, ok := raw.(map[string]interface{})
		if !ok {
			s.logger.WarnWithContext(ctx, "Пропущена запись остатков неожиданной формы",
				interfaces.LogField{Key: "index", Value: i})
			continue
		}
		snapshot := extractStockSnapshot(rec, i)
		stocks[snapshot.ID] = snapshot
	}

	return stocks, nil
}

// invalidateCache сбрасывает закэшированные ответы со списками товаров
func (s *SyncService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, productsCachePattern); err != nil {
		s.logger.WarnWithContext(ctx, "Не удалось сбросить кэш товаров",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
}

// statusForError переводит ошибку синхронизации в статус подключения
func statusForError(err error) string {
	var transportErr *ozon.TransportError
	if errors.As(err, &transportErr) {
		return models.StatusNoConnection
	}

	var apiErr *ozon.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("error: HTTP %d", apiErr.StatusCode)
	}

	return fmt.Sprintf("error: %s", err.Error())
}
