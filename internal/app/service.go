package app

import (
	"context"

	"inventory-service/internal/core"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, login, password string) (*UserSession, error)

	// GetUser returns user profile by ID.
	GetUser(ctx context.Context, userID int) (*core.User, error)

	// CreateUser creates a user with a hashed password. Admin only.
	CreateUser(ctx context.Context, actor core.Actor, req CreateUserRequest) (*core.User, error)

	// ListUsers returns every user. Admin only.
	ListUsers(ctx context.Context, actor core.Actor) ([]core.User, error)

	// ── Products & stock ─────────────────────────────────────────────────────

	ListProducts(ctx context.Context, f core.ProductFilter) (*core.ProductList, error)

	GetProduct(ctx context.Context, id int) (*core.Product, error)

	// FindProduct resolves an operator-typed reference. A matching SKU wins;
	// otherwise a numeric ref is tried as a product ID.
	FindProduct(ctx context.Context, ref string) (*core.Product, error)

	CreateProduct(ctx context.Context, actor core.Actor, req CreateProductRequest) (*core.Product, error)
	UpdateProduct(ctx context.Context, actor core.Actor, id int, upd core.ProductUpdate) (*core.Product, error)
	DeleteProduct(ctx context.Context, actor core.Actor, id int) error

	// AdjustStock records a manual stock correction through the stock ledger.
	AdjustStock(ctx context.Context, actor core.Actor, req AdjustStockRequest) (*core.Product, error)

	// StockHistory returns the newest stock log rows for a product.
	StockHistory(ctx context.Context, actor core.Actor, productID, limit int) (*StockHistoryResult, error)

	// ── Suppliers ────────────────────────────────────────────────────────────

	ListSuppliers(ctx context.Context, activeOnly bool) ([]core.Supplier, error)
	GetSupplier(ctx context.Context, id int) (*core.Supplier, error)
	CreateSupplier(ctx context.Context, actor core.Actor, in core.SupplierInput) (*core.Supplier, error)
	UpdateSupplier(ctx context.Context, actor core.Actor, id int, upd core.SupplierUpdate) (*core.Supplier, error)
	DeleteSupplier(ctx context.Context, actor core.Actor, id int) error

	// ── Purchase orders ──────────────────────────────────────────────────────

	ListPurchaseOrders(ctx context.Context, f core.PurchaseOrderFilter) ([]core.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id int) (*PurchaseOrderResult, error)

	// CreatePurchaseOrder creates a new Draft purchase order.
	CreatePurchaseOrder(ctx context.Context, actor core.Actor, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error)

	// AdvancePurchaseOrder moves a purchase order to status. Received adds stock.
	AdvancePurchaseOrder(ctx context.Context, actor core.Actor, id int, status string) (*PurchaseOrderResult, error)

	// DeletePurchaseOrder removes a Draft purchase order.
	DeletePurchaseOrder(ctx context.Context, actor core.Actor, id int) error

	// ── Sales orders ─────────────────────────────────────────────────────────

	ListSalesOrders(ctx context.Context, actor core.Actor, f core.SalesOrderFilter) ([]core.SalesOrder, error)
	GetSalesOrder(ctx context.Context, actor core.Actor, id int) (*SalesOrderResult, error)

	// CreateSalesOrder creates a Confirmed sales order and deducts stock.
	CreateSalesOrder(ctx context.Context, actor core.Actor, req CreateSalesOrderRequest) (*SalesOrderResult, error)

	// AdvanceSalesOrder moves a sales order to status.
	AdvanceSalesOrder(ctx context.Context, actor core.Actor, id int, status string) (*SalesOrderResult, error)

	// CancelSalesOrder cancels a Pending or Confirmed order, restoring stock for Confirmed ones.
	CancelSalesOrder(ctx context.Context, actor core.Actor, id int) (*SalesOrderResult, error)

	// ── Reports ──────────────────────────────────────────────────────────────

	DashboardStats(ctx context.Context, actor core.Actor) (*core.DashboardStats, error)
	LowStock(ctx context.Context, actor core.Actor) ([]core.Product, error)
	InventoryValue(ctx context.Context, actor core.Actor) (*core.InventoryValueReport, error)
	OrderHistory(ctx context.Context, actor core.Actor, productID int) (*core.ProductOrderHistory, error)
}
