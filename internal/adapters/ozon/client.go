package ozon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL адрес Ozon Seller API
const DefaultBaseURL = "https://api-seller.ozon.ru"

// Пределы, задаваемые самим API
const (
	// maxResponseSize ограничивает размер читаемого тела ответа
	maxResponseSize = 4 << 20
)

// Config настройки клиента Ozon Seller API
type Config struct {
	BaseURL    string
	ClientID   string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client выполняет запросы к Ozon Seller API.
// Аутентификация — два фиксированных заголовка: Client-Id и Api-Key.
type Client struct {
	baseURL    string
	clientID   string
	apiKey     string
	httpClient *http.Client
}

// NewClient создает новый клиент Ozon Seller API
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, errors.New("ozon: client id is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("ozon: api key is required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientID:   cfg.ClientID,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// ProductList запрашивает одну страницу списка товаров (видимость ALL)
func (c *Client) ProductList(ctx context.Context, limit int) (interface{}, error) {
	body := map[string]interface{}{
		"filter": map[string]interface{}{"visibility": "ALL"},
		"limit":  limit,
		"offset": 0,
	}
	return c.post(ctx, "/v3/product/list", body)
}

// ProductInfo запрашивает подробную информацию о товарах по их идентификаторам
func (c *Client) ProductInfo(ctx context.Context, ids []int64) (interface{}, error) {
	body := map[string]interface{}{
		"product_id": ids,
	}
	return c.post(ctx, "/v3/product/info/list", body)
}

// Stocks запрашивает остатки на складах по идентификаторам товаров
func (c *Client) Stocks(ctx context.Context, ids []int64) (interface{}, error) {
	body := map[string]interface{}{
		"filter": map[string]interface{}{"product_id": ids, "visibility": "ALL"},
		"limit":  len(ids),
	}
	return c.post(ctx, "/v4/product/info/stocks", body)
}

// post выполняет POST запрос и декодирует JSON ответ.
// Форма ответа не фиксирована контрактом, поэтому результат декодируется
// в interface{} и разбирается нормализатором на стороне вызывающего.
func (c *Client) post(ctx context.Context, path string, payload interface{}) (interface{}, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ozon: encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ozon: build %s request: %w", path, err)
	}
	req.Header.Set("Client-Id", c.clientID)
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("ozon: decode %s response: %w", path, err)
	}

	return decoded, nil
}
