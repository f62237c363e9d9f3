package models

// Product представляет нормализованный товар магазина Ozon.
// Набор товаров целиком заменяется по итогам успешной синхронизации.
type Product struct {
	ID       int64   `json:"id"`
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	FBOStock int     `json:"fbo_stock"`
	Status   string  `json:"status"` // "active" или "archived"
	Rating   float64 `json:"rating"`
}

// Статусы товара
const (
	ProductStatusActive   = "active"
	ProductStatusArchived = "archived"
)

// Значения по умолчанию, когда API не вернул соответствующее поле
const (
	DefaultProductName = "Unknown"
	DefaultOfferCode   = "N/A"
)

// CatalogItemRef представляет запись списочного метода /v3/product/list.
// Живет только внутри одной синхронизации, до объединения записей.
type CatalogItemRef struct {
	ID        int64
	OfferCode string
	Archived  bool
}

// ProductDetail представляет запись метода информации о товарах
type ProductDetail struct {
	ID       int64
	Name     string
	Price    float64
	FBOStock int
	Rating   float64
}

// WarehouseStock представляет остаток товара на одном складе
type WarehouseStock struct {
	Present int
}

// StockSnapshot представляет остатки товара по всем складам
type StockSnapshot struct {
	ID         int64
	Warehouses []WarehouseStock
}

// TotalPresent возвращает суммарный остаток по всем складам
func (s StockSnapshot) TotalPresent() int {
	total := 0
	for _, w := range s.Warehouses {
		total += w.Present
	}
	return total
}

// ProductStats представляет агрегированную статистику по текущему набору товаров
type ProductStats struct {
	TotalProducts int     `json:"total_products"`
	TotalStock    int     `json:"total_stock"`
	TotalFBOStock int     `json:"total_fbo_stock"`
	AveragePrice  float64 `json:"average_price"`
}
