package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder is a replenishment order for one product from one supplier.
// TotalCost is fixed at creation as Quantity × UnitCost.
//
//	Draft → Sent → Received → Closed
type PurchaseOrder struct {
	ID           int             `json:"id"`
	ProductID    int             `json:"product_id"`
	ProductSKU   string          `json:"product_sku"`   // joined from products
	ProductName  string          `json:"product_name"`  // joined from products
	SupplierID   int             `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"` // joined from suppliers
	Quantity     int             `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Status       string          `json:"status"`
	Notes        *string         `json:"notes,omitempty"`
	CreatedBy    *int            `json:"created_by,omitempty"`
	SentAt       *time.Time      `json:"sent_at,omitempty"`
	ReceivedAt   *time.Time      `json:"received_at,omitempty"`
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PurchaseOrderInput holds the fields required to create a purchase order.
// Any status supplied by a caller is ignored; new orders always start in Draft.
type PurchaseOrderInput struct {
	ProductID  int
	SupplierID int
	Quantity   int
	UnitCost   decimal.Decimal
	Notes      string
}

// PurchaseOrderFilter narrows ListPurchaseOrders. Zero values mean "any".
type PurchaseOrderFilter struct {
	Status     string
	SupplierID int
	ProductID  int
	Page
}

// PurchaseOrderService manages the purchase order lifecycle.
type PurchaseOrderService interface {
	// CreatePurchaseOrder validates product and supplier, computes the total and stores a Draft order.
	CreatePurchaseOrder(ctx context.Context, actor Actor, in PurchaseOrderInput) (*PurchaseOrder, error)

	// TransitionPurchaseOrder moves an order along Draft → Sent → Received → Closed.
	// Reaching Received adds the ordered quantity to stock in the same transaction.
	TransitionPurchaseOrder(ctx context.Context, actor Actor, id int, target string) (*PurchaseOrder, error)

	// DeletePurchaseOrder removes an order that is still in Draft.
	DeletePurchaseOrder(ctx context.Context, actor Actor, id int) error

	GetPurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, f PurchaseOrderFilter) ([]PurchaseOrder, error)
}
