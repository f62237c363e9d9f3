package ozon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:    server.URL,
		ClientID:   "client-123",
		APIKey:     "key-456",
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)

	return client, server
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{APIKey: "key"})
	assert.Error(t, err)

	_, err = NewClient(Config{ClientID: "id"})
	assert.Error(t, err)

	_, err = NewClient(Config{ClientID: " ", APIKey: "key"})
	assert.Error(t, err)
}

func TestProductList_SendsAuthHeadersAndFilter(t *testing.T) {
	var captured *http.Request
	var body map[string]interface{}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))
		_, _ = w.Write([]byte(`{"result": {"items": []}}`))
	})

	_, err := client.ProductList(context.Background(), 100)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/v3/product/list", captured.URL.Path)
	assert.Equal(t, "client-123", captured.Header.Get("Client-Id"))
	assert.Equal(t, "key-456", captured.Header.Get("Api-Key"))
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))

	assert.Equal(t, float64(100), body["limit"])
	assert.Equal(t, float64(0), body["offset"])
	filter, ok := body["filter"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ALL", filter["visibility"])
}

func TestProductInfo_SendsIDs(t *testing.T) {
	var body map[string]interface{}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/product/info/list", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))
		_, _ = w.Write([]byte(`{"result": {"items": []}}`))
	})

	_, err := client.ProductInfo(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)

	ids, ok := body["product_id"].([]interface{})
	require.True(t, ok)
	assert.Len(t, ids, 3)
}

func TestStocks_SendsFilterAndLimit(t *testing.T) {
	var body map[string]interface{}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/product/info/stocks", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))
		_, _ = w.Write([]byte(`{"result": {"items": []}}`))
	})

	_, err := client.Stocks(context.Background(), []int64{7, 8})
	require.NoError(t, err)

	assert.Equal(t, float64(2), body["limit"])
	filter, ok := body["filter"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ALL", filter["visibility"])
}

func TestPost_NonSuccessStatusBecomesAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code": 7, "message": "permission denied"}`))
	})

	_, err := client.ProductList(context.Background(), 100)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "HTTP 403")
	assert.Contains(t, apiErr.Body, "permission denied")
}

func TestPost_ConnectionFailureBecomesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client, err := NewClient(Config{
		BaseURL:  serverURL,
		ClientID: "client-123",
		APIKey:   "key-456",
	})
	require.NoError(t, err)

	_, err = client.ProductList(context.Background(), 100)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.NotNil(t, transportErr.Unwrap())
}

func TestPost_MalformedJSONIsNotTransportError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": `))
	})

	_, err := client.ProductList(context.Background(), 100)
	require.Error(t, err)

	var transportErr *TransportError
	assert.False(t, errors.As(err, &transportErr))
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
