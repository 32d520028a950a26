package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Stock log reason prefixes for lifecycle-triggered adjustments.
const (
	ReasonPurchaseOrderReceived = "purchase-order-received"
	ReasonSalesOrderConfirmed   = "sales-order-confirmed"
	ReasonSalesOrderCancelled   = "sales-order-cancelled"
	ReasonOpeningStock          = "opening-stock"
)

// StockChangeLog is one append-only audit row. Rows are never updated or deleted.
type StockChangeLog struct {
	ID            int       `json:"id"`
	ProductID     int       `json:"product_id"`
	Change        int       `json:"change"`
	QuantityAfter int       `json:"quantity_after"`
	Reason        string    `json:"reason"`
	ChangedBy     *int      `json:"changed_by,omitempty"`
	ChangedByName string    `json:"changed_by_name,omitempty"` // joined from users
	CreatedAt     time.Time `json:"created_at"`
}

// InventoryService is the stock ledger: the only code path that mutates products.quantity.
type InventoryService interface {
	// ApplyTx locks the product row, applies delta and appends one StockChangeLog row inside tx.
	// A result below zero fails with *InsufficientStockError and leaves the row untouched.
	// The returned event must be handed to Publish once tx has committed.
	ApplyTx(ctx context.Context, tx pgx.Tx, productID, delta int, reason string, actor Actor) (*ProductEvent, error)

	// Publish notifies observers of events produced by ApplyTx after the owning transaction commits.
	Publish(ctx context.Context, events ...*ProductEvent)

	// Adjust runs a manual adjustment in its own transaction.
	Adjust(ctx context.Context, actor Actor, productID, delta int, reason string) (*Product, error)

	// History returns the newest limit log rows for a product.
	History(ctx context.Context, actor Actor, productID, limit int) ([]StockChangeLog, error)
}
