package services

import (
	"strconv"
	"strings"

	"github.com/athebyme/ozon-tracker/internal/domain/models"
)

// Порядок ключей отражает наблюдаемые варианты схемы API:
// выигрывает первое присутствующее непустое значение.
var (
	itemIDKeys    = []string{"product_id", "id"}
	offerKeys     = []string{"offer_id", "sku"}
	detailIDKeys  = []string{"id", "product_id"}
	nameKeys      = []string{"name", "title"}
	priceKeys     = []string{"price", "current_price", "marketing_price"}
	fboKeys       = []string{"fbo_stock", "fbo_present"}
	ratingKeys    = []string{"rating", "rating_value"}
	stockIDKeys   = []string{"product_id", "id", "sku"}
	warehouseKeys = []string{"stocks", "items"}
	presentKeys   = []string{"present", "free_to_sell_amount"}
)

// extractCatalogItem нормализует запись списочного метода.
// Функция тотальна: отсутствующие поля заменяются значениями по умолчанию,
// идентификатор — позиционным индексом записи.
func extractCatalogItem(raw map[string]interface{}, index int) models.CatalogItemRef {
	item := models.CatalogItemRef{
		ID:        int64(index),
		OfferCode: models.DefaultOfferCode,
	}

	if id, ok := firstInt(raw, itemIDKeys); ok {
		item.ID = id
	}
	if code, ok := firstString(raw, offerKeys); ok {
		item.OfferCode = code
	}
	if archived, ok := raw["archived"].(bool); ok {
		item.Archived = archived
	}

	return item
}

// extractDetail нормализует запись метода информации о товарах
func extractDetail(raw map[string]interface{}, index int) models.ProductDetail {
	detail := models.ProductDetail{
		ID:   int64(index),
		Name: models.DefaultProductName,
	}

	if id, ok := firstInt(raw, detailIDKeys); ok {
		detail.ID = id
	}
	if name, ok := firstString(raw, nameKeys); ok {
		detail.Name = name
	}
	if price, ok := firstFloat(raw, priceKeys); ok {
		detail.Price = price
	}
	if fbo, ok := firstInt(raw, fboKeys); ok {
		detail.FBOStock = int(fbo)
	}
	if rating, ok := firstFloat(raw, ratingKeys); ok {
		detail.Rating = rating
	}

	return detail
}

// extractStockSnapshot нормализует запись метода остатков на складах
func extractStockSnapshot(raw map[string]interface{}, index int) models.StockSnapshot {
	snapshot := models.StockSnapshot{ID: int64(index)}

	if id, ok := firstInt(raw, stockIDKeys); ok {
		snapshot.ID = id
	}

	for _, key := range warehouseKeys {
		list, ok := raw[key].([]interface{})
		if !ok {
			continue
		}
		for _, item := range list {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			warehouse := models.WarehouseStock{}
			if present, ok := firstInt(entry, presentKeys); ok {
				warehouse.Present = int(present)
			}
			snapshot.Warehouses = append(snapshot.Warehouses, warehouse)
		}
		break
	}

	return snapshot
}

// firstString возвращает первое непустое строковое значение по списку ключей
func firstString(raw map[string]interface{}, keys []string) (string, bool) {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

// firstFloat возвращает первое числовое значение по списку ключей.
// Ozon отдает цены как числами, так и строками вида "990.0000".
func firstFloat(raw map[string]interface{}, keys []string) (float64, bool) {
	for _, key := range keys {
		value, exists := raw[key]
		if !exists || value == nil {
			continue
		}
		switch v := value.(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// firstInt возвращает первое целочисленное значение по списку ключей
func firstInt(raw map[string]interface{}, keys []string) (int64, bool) {
	if f, ok := firstFloat(raw, keys); ok {
		return int64(f), true
	}
	return 0, false
}
