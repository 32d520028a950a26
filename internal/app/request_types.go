package app

import (
	"inventory-service/internal/core"

	"github.com/shopspring/decimal"
)

// CreateUserRequest is the input for creating a new user.
type CreateUserRequest struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string
}

// CreateProductRequest is the input for creating a new product.
// Quantity is the opening stock.
type CreateProductRequest struct {
	SKU          string
	Name         string
	Description  string
	Price        decimal.Decimal
	Quantity     int
	MinThreshold *int
	ProductGroup string
}

// AdjustStockRequest is the input for a manual stock correction.
// Exactly one of ProductID and SKU identifies the product.
type AdjustStockRequest struct {
	ProductID int
	SKU       string
	Change    int
	Reason    string
}

// CreatePurchaseOrderRequest is the input for creating a new purchase order.
// Exactly one of ProductID and SKU identifies the product.
type CreatePurchaseOrderRequest struct {
	ProductID  int
	SKU        string
	SupplierID int
	Quantity   int
	UnitCost   decimal.Decimal
	Notes      string
}

// CreateSalesOrderRequest is the input for creating a new sales order.
// CustomerID defaults to the acting user. A zero UnitPrice means "use product price".
type CreateSalesOrderRequest struct {
	CustomerID int
	ProductID  int
	SKU        string
	Quantity   int
	UnitPrice  decimal.Decimal
	Notes      string
}

func (r CreateProductRequest) input() core.ProductInput {
	return core.ProductInput{
		SKU:          r.SKU,
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		Quantity:     r.Quantity,
		MinThreshold: r.MinThreshold,
		ProductGroup: r.ProductGroup,
	}
}
