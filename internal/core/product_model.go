package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinThreshold is the reorder point assigned to products created without one.
const DefaultMinThreshold = 5

// Product is a stock-keeping item. Quantity is only ever changed by InventoryService.
type Product struct {
	ID           int             `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	MinThreshold int             `json:"min_threshold"`
	ProductGroup string          `json:"product_group"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsLowStock reports whether the on-hand quantity has reached the reorder point.
func (p Product) IsLowStock() bool {
	return p.Quantity <= p.MinThreshold
}

// ProductInput holds the fields required to create a product.
// Quantity is the opening stock and is recorded in the stock log.
type ProductInput struct {
	SKU          string
	Name         string
	Description  string
	Price        decimal.Decimal
	Quantity     int
	MinThreshold *int
	ProductGroup string
}

// ProductUpdate carries the mutable product fields; nil means unchanged.
// SKU and Quantity are intentionally absent.
type ProductUpdate struct {
	Name         *string
	Description  *string
	Price        *decimal.Decimal
	MinThreshold *int
	ProductGroup *string
}

// ProductFilter narrows ListProducts.
type ProductFilter struct {
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	LowStock bool
	// SortBy is one of name, price, quantity, created_at; a leading "-" sorts descending.
	SortBy string
	Page
}

// ProductList is one page of products plus the unpaged total.
type ProductList struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// ProductCache fronts product reads. Implementations must be safe for concurrent use and
// should subscribe to ProductEvents to drop stale entries.
type ProductCache interface {
	// Fetch returns the cached product or calls load and caches its result.
	Fetch(ctx context.Context, id int, load func(context.Context) (*Product, error)) (*Product, error)
}

// ProductService provides product catalog operations.
type ProductService interface {
	// CreateProduct inserts a product; a taken SKU yields *DuplicateError.
	CreateProduct(ctx context.Context, actor Actor, in ProductInput) (*Product, error)
	// GetProduct returns a product by ID, served from the cache when possible.
	GetProduct(ctx context.Context, id int) (*Product, error)
	// GetProductBySKU returns a product by its business key.
	GetProductBySKU(ctx context.Context, sku string) (*Product, error)
	// ListProducts returns a filtered, sorted page of products.
	ListProducts(ctx context.Context, f ProductFilter) (*ProductList, error)
	// UpdateProduct applies a partial update to the descriptive fields of a product.
	UpdateProduct(ctx context.Context, actor Actor, id int, upd ProductUpdate) (*Product, error)
	// DeleteProduct removes a product that no order references.
	DeleteProduct(ctx context.Context, actor Actor, id int) error
}
