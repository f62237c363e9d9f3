package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/athebyme/ozon-tracker/internal/adapters/logger"
	"github.com/athebyme/ozon-tracker/internal/adapters/ozon"
	"github.com/athebyme/ozon-tracker/internal/adapters/storage"
	"github.com/athebyme/ozon-tracker/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOzonAPI подменяет клиент Ozon Seller API заранее заданными ответами
type fakeOzonAPI struct {
	listPayload   interface{}
	listErr       error
	infoPayload   interface{}
	infoErr       error
	stocksPayload interface{}
	stocksErr     error

	listCalls   int
	infoCalls   int
	stocksCalls int

	// listStarted и listRelease позволяют удерживать синхронизацию
	// внутри первого запроса
	listStarted chan struct{}
	listRelease chan struct{}
}

func (f *fakeOzonAPI) ProductList(ctx context.Context, limit int) (interface{}, error) {
	f.listCalls++
	if f.listStarted != nil {
		close(f.listStarted)
		<-f.listRelease
	}
	return f.listPayload, f.listErr
}

func (f *fakeOzonAPI) ProductInfo(ctx context.Context, ids []int64) (interface{}, error) {
	f.infoCalls++
	return f.infoPayload, f.infoErr
}

func (f *fakeOzonAPI) Stocks(ctx context.Context, ids []int64) (interface{}, error) {
	f.stocksCalls++
	return f.stocksPayload, f.stocksErr
}

func newSyncFixture(client OzonAPI) (*SyncService, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	service := NewSyncService(client, store, nil, logger.NewNopLogger(), 100)
	return service, store
}

func TestSyncFromRemote_JoinsThreeEndpoints(t *testing.T) {
	client := &fakeOzonAPI{
		listPayload: decodePayload(t, `{"result": {"items": [
			{"product_id": 1, "offer_id": "A"},
			{"product_id": 2, "offer_id": "B"}
		]}}`),
		infoPayload: decodePayload(t, `{"result": {"items": [
			{"id": 1, "name": "Widget", "price": 100}
		]}}`),
		stocksPayload: decodePayload(t, `{"result": {"items": [
			{"product_id": 1, "stocks": [{"present": 3}, {"present": 2}]}
		]}}`),
	}
	service, store := newSyncFixture(client)

	count, err := service.SyncFromRemote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	products := store.Products()
	require.Len(t, products, 2)

	assert.Equal(t, models.Product{
		ID: 1, SKU: "A", Name: "Widget", Price: 100, Stock: 5,
		Status: models.ProductStatusActive,
	}, products[0])

	// Товар без записи в информации и остатках получает значения по умолчанию
	assert.Equal(t, models.Product{
		ID: 2, SKU: "B", Name: models.DefaultProductName,
		Status: models.ProductStatusActive,
	}, products[1])

	assert.Equal(t, models.StatusConnected, store.ConnectionStatus())
	assert.Empty(t, store.LastError())
	require.NotNil(t, store.LastSync())

	syncs := store.Syncs()
	require.Len(t, syncs, 1)
	assert.Equal(t, 1, syncs[0].ID)
	assert.Equal(t, models.SyncTypeFull, syncs[0].Type)
	assert.Equal(t, models.SyncStatusSuccess, syncs[0].Status)
	assert.Equal(t, 2, syncs[0].ProductsCount)
}

func TestSyncFromRemote_ArchivedListingBecomesArchivedProduct(t *testing.T) {
	client := &fakeOzonAPI{
		listPayload:   decodePayload(t, `{"result": {"items": [{"product_id": 1, "offer_id": "A", "archived": true}]}}`),
		infoPayload:   decodePayload(t, `{"result": {"items": []}}`),
		stocksPayload: decodePayload(t, `{"result": {"items": []}}`),
	}
	service, store := newSyncFixture(client)

	_, err := service.SyncFromRemote(context.Background())
	require.NoError(t, err)

	products := store.Products()
	require.Len(t, products, 1)
	assert.Equal(t, models.ProductStatusArchived, products[0].Status)
}

func TestSyncFromRemote_FailureLeavesProductsUntouched(t *testing.T) {
	client := &fakeOzonAPI{
		listPayload: decodePayload(t, `{"result": {"items": [{"product_id": 1, "offer_id": "A"}]}}`),
		infoPayload: decodePayload(t, `{"result": {"items": [{"id": 1, "name": "Widget"}]}}`),
		stocksPayload: decodePayload(t, `{"result": {"items": [
			{"product_id": 1, "stocks": [{"present": 1}]}
		]}}`),
	}
	service, store := newSyncFixture(client)

	_, err := service.SyncFromRemote(context.Background())
	require.NoError(t, err)
	before := store.Products()

	// Вторая синхронизация падает на шаге остатков
	client.stocksErr = &ozon.APIError{Path: "/v4/product/info/stocks", StatusCode: 500}
	_, err = service.SyncFromRemote(context.Background())
	require.Error(t, err)

	assert.Equal(t, before, store.Products())
	assert.Equal(t, "error: HTTP 500", store.ConnectionStatus())
	assert.NotEmpty(t, store.LastError())

	syncs := store.Syncs()
	require.Len(t, syncs, 2)
	assert.Equal(t, 2, syncs[1].ID)
	assert.Equal(t, models.SyncStatusError, syncs[1].Status)
	assert.Zero(t, syncs[1].ProductsCount)
	assert.NotEmpty(t, syncs[1].Error)
}

func TestSyncFromRemote_TransportErrorMeansNoConnectivity(t *testing.T) {
	client := &fakeOzonAPI{
		listErr: &ozon.TransportError{Path: "/v3/product/list", Err: errors.New("dial tcp: connection refused")},
	}
	service, store := newSyncFixture(client)

	_, err := service.SyncFromRemote(context.Background())
	require.Error(t, err)

	assert.Equal(t, models.StatusNoConnection, store.ConnectionStatus())
	assert.Nil(t, store.LastSync())
	assert.Zero(t, client.infoCalls, "после ошибки листинга запросы не продолжаются")
}

func TestSyncFromRemote_EmptyCatalog(t *testing.T) {
	client := &fakeOzonAPI{
		listPayload: decodePayload(t, `{"result": {"items": []}}`),
	}
	service, store := newSyncFixture(client)

	_, err := service.SyncFromRemote(context.Background())
	require.ErrorIs(t, err, ErrNoProducts)

	syncs := store.Syncs()
	require.Len(t, syncs, 1)
	assert.Equal(t, models.SyncStatusError, syncs[0].Status)
}

func TestSyncFromRemote_UnknownShape(t *testing.T) {
	client := &fakeOzonAPI{
		listPayload: decodePayload(t, `{"code": 7, "message": "permission denied"}`),
	}
	service, store := newSyncFixture(client)

	_, err := service.SyncFromRemote(context.Background())
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Contains(t, store.LastError(), "no records found")
}

func TestSyncFromRemote_RejectsConcurrentRun(t *testing.T) {
	client := &fakeOzonAPI{
		listPayload: decodePayload(t, `{"result": {"items": [{"product_id": 1, "offer_id": "A"}]}}`),
		infoPayload: decodePayload(t, `{"result": {"items": []}}`),
		stocksPayload: decodePayload(t, `{"result": {"items": []}}`),
		listStarted: make(chan struct{}),
		listRelease: make(chan struct{}),
	}
	service, store := newSyncFixture(client)

	done := make(chan error, 1)
	go func() {
		_, err := service.SyncFromRemote(context.Background())
		done <- err
	}()

	select {
	case <-client.listStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("первая синхронизация не началась")
	}

	_, err := service.SyncFromRemote(context.Background())
	require.ErrorIs(t, err, ErrSyncInProgress)

	close(client.listRelease)
	require.NoError(t, <-done)

	// Отклоненная попытка не попадает в историю
	assert.Len(t, store.Syncs(), 1)
}

func TestSyncFromRemote_RepeatedRunsAreIdempotent(t *testing.T) {
	client := &fakeOzonAPI{
		listPayload: decodePayload(t, `{"result": {"items": [{"product_id": 1, "offer_id": "A"}]}}`),
		infoPayload: decodePayload(t, `{"result": {"items": [{"id": 1, "name": "Widget", "price": 10}]}}`),
		stocksPayload: decodePayload(t, `{"result": {"items": [
			{"product_id": 1, "stocks": [{"present": 2}]}
		]}}`),
	}
	service, store := newSyncFixture(client)

	_, err := service.SyncFromRemote(context.Background())
	require.NoError(t, err)
	first := store.Products()

	_, err = service.SyncFromRemote(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, store.Products())

	syncs := store.Syncs()
	require.Len(t, syncs, 2)
	assert.Equal(t, 1, syncs[0].ID)
	assert.Equal(t, 2, syncs[1].ID)
}
