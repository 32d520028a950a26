package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrder is a customer order for one product.
// TotalAmount is fixed at creation as Quantity × UnitPrice.
// Orders are created Confirmed with stock already deducted:
//
//	Pending → Confirmed → Shipped → Delivered
//	Pending | Confirmed → Cancelled
type SalesOrder struct {
	ID            int             `json:"id"`
	CustomerID    int             `json:"customer_id"`
	CustomerName  string          `json:"customer_name"` // joined from users
	ProductID     int             `json:"product_id"`
	ProductSKU    string          `json:"product_sku"`  // joined from products
	ProductName   string          `json:"product_name"` // joined from products
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedBy     *int            `json:"created_by,omitempty"`
	ShippedDate   *time.Time      `json:"shipped_date,omitempty"`
	DeliveredDate *time.Time      `json:"delivered_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SalesOrderInput holds the fields required to create a sales order.
// A zero UnitPrice means "use the product's list price".
type SalesOrderInput struct {
	CustomerID int
	ProductID  int
	Quantity   int
	UnitPrice  decimal.Decimal
	Notes      string
}

// SalesOrderFilter narrows ListSalesOrders. Zero values mean "any".
type SalesOrderFilter struct {
	Status     string
	CustomerID int
	ProductID  int
	Page
}

// SalesOrderService manages the sales order lifecycle.
type SalesOrderService interface {
	// CreateSalesOrder checks stock under a row lock, stores the order as Confirmed and
	// deducts the quantity in one transaction.
	CreateSalesOrder(ctx context.Context, actor Actor, in SalesOrderInput) (*SalesOrder, error)

	// TransitionSalesOrder moves an order along the sales table. Shipped and Delivered stamp
	// their dates once; Confirmed deducts stock; Cancelled from Confirmed restores it.
	TransitionSalesOrder(ctx context.Context, actor Actor, id int, target string) (*SalesOrder, error)

	// CancelSalesOrder is TransitionSalesOrder(id, Cancelled).
	CancelSalesOrder(ctx context.Context, actor Actor, id int) (*SalesOrder, error)

	// GetSalesOrder returns one order. Customers may only read their own orders.
	GetSalesOrder(ctx context.Context, actor Actor, id int) (*SalesOrder, error)

	// ListSalesOrders returns orders newest first. Customers only ever see their own orders.
	ListSalesOrders(ctx context.Context, actor Actor, f SalesOrderFilter) ([]SalesOrder, error)
}
