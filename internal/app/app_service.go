package app

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"inventory-service/internal/core"
)

// Services groups the core services the application layer delegates to.
type Services struct {
	Users          core.UserService
	Products       core.ProductService
	Inventory      core.InventoryService
	Suppliers      core.SupplierService
	PurchaseOrders core.PurchaseOrderService
	SalesOrders    core.SalesOrderService
	Reports        core.ReportingService
}

type appService struct {
	users     core.UserService
	products  core.ProductService
	inventory core.InventoryService
	suppliers core.SupplierService
	po        core.PurchaseOrderService
	so        core.SalesOrderService
	reports   core.ReportingService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(s Services) ApplicationService {
	return &appService{
		users:     s.Users,
		products:  s.Products,
		inventory: s.Inventory,
		suppliers: s.Suppliers,
		po:        s.PurchaseOrders,
		so:        s.SalesOrders,
		reports:   s.Reports,
	}
}

// ── Users ─────────────────────────────────────────────────────────────────────

func (s *appService) AuthenticateUser(ctx context.Context, login, password string) (*UserSession, error) {
	u, err := s.users.Authenticate(ctx, strings.TrimSpace(login), password)
	if err != nil {
		return nil, err
	}
	return &UserSession{UserID: u.ID, Username: u.Username, FullName: u.FullName, Role: u.Role}, nil
}

func (s *appService) GetUser(ctx context.Context, userID int) (*core.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *appService) CreateUser(ctx context.Context, actor core.Actor, req CreateUserRequest) (*core.User, error) {
	role, err := core.ParseRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if err != nil {
		return nil, err
	}
	return s.users.CreateUser(ctx, actor, core.UserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     role,
	})
}

func (s *appService) ListUsers(ctx context.Context, actor core.Actor) ([]core.User, error) {
	return s.users.ListUsers(ctx, actor)
}

// ── Products & stock ──────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context, f core.ProductFilter) (*core.ProductList, error) {
	return s.products.ListProducts(ctx, f)
}

func (s *appService) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	return s.products.GetProduct(ctx, id)
}

func (s *appService) FindProduct(ctx context.Context, ref string) (*core.Product, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &core.ValidationError{Field: "product", Message: "is required"}
	}
	p, err := s.products.GetProductBySKU(ctx, ref)
	var nf *core.NotFoundError
	if err == nil || !errors.As(err, &nf) {
		return p, err
	}
	if id, convErr := strconv.Atoi(ref); convErr == nil && id > 0 {
		return s.products.GetProduct(ctx, id)
	}
	return nil, err
}

func (s *appService) CreateProduct(ctx context.Context, actor core.Actor, req CreateProductRequest) (*core.Product, error) {
	return s.products.CreateProduct(ctx, actor, req.input())
}

func (s *appService) UpdateProduct(ctx context.Context, actor core.Actor, id int, upd core.ProductUpdate) (*core.Product, error) {
	return s.products.UpdateProduct(ctx, actor, id, upd)
}

func (s *appService) DeleteProduct(ctx context.Context, actor core.Actor, id int) error {
	return s.products.DeleteProduct(ctx, actor, id)
}

func (s *appService) AdjustStock(ctx context.Context, actor core.Actor, req AdjustStockRequest) (*core.Product, error) {
	p, err := s.resolveProduct(ctx, req.ProductID, req.SKU)
	if err != nil {
		return nil, err
	}
	return s.inventory.Adjust(ctx, actor, p.ID, req.Change, strings.TrimSpace(req.Reason))
}

func (s *appService) StockHistory(ctx context.Context, actor core.Actor, productID, limit int) (*StockHistoryResult, error) {
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	entries, err := s.inventory.History(ctx, actor, p.ID, limit)
	if err != nil {
		return nil, err
	}
	return &StockHistoryResult{Product: *p, Entries: entries}, nil
}

// resolveProduct looks a product up by ID or by SKU. The SKU is never read as an ID.
// When both are given they must name the same product.
func (s *appService) resolveProduct(ctx context.Context, id int, sku string) (*core.Product, error) {
	sku = strings.TrimSpace(sku)
	switch {
	case sku != "":
		p, err := s.products.GetProductBySKU(ctx, sku)
		if err != nil {
			return nil, err
		}
		if id != 0 && p.ID != id {
			return nil, &core.ValidationError{Field: "sku", Message: "does not match product_id"}
		}
		return p, nil
	case id > 0:
		return s.products.GetProduct(ctx, id)
	default:
		return nil, &core.ValidationError{Field: "product", Message: "product_id or sku is required"}
	}
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func (s *appService) ListSuppliers(ctx context.Context, activeOnly bool) ([]core.Supplier, error) {
	return s.suppliers.ListSuppliers(ctx, activeOnly)
}

func (s *appService) GetSupplier(ctx context.Context, id int) (*core.Supplier, error) {
	return s.suppliers.GetSupplier(ctx, id)
}

func (s *appService) CreateSupplier(ctx context.Context, actor core.Actor, in core.SupplierInput) (*core.Supplier, error) {
	return s.suppliers.CreateSupplier(ctx, actor, in)
}

func (s *appService) UpdateSupplier(ctx context.Context, actor core.Actor, id int, upd core.SupplierUpdate) (*core.Supplier, error) {
	return s.suppliers.UpdateSupplier(ctx, actor, id, upd)
}

func (s *appService) DeleteSupplier(ctx context.Context, actor core.Actor, id int) error {
	return s.suppliers.DeleteSupplier(ctx, actor, id)
}

// ── Purchase orders ───────────────────────────────────────────────────────────

func (s *appService) ListPurchaseOrders(ctx context.Context, f core.PurchaseOrderFilter) ([]core.PurchaseOrder, error) {
	if f.Status != "" {
		f.Status = canonicalStatus(core.PurchaseOrderKind, f.Status)
	}
	return s.po.ListPurchaseOrders(ctx, f)
}

func (s *appService) GetPurchaseOrder(ctx context.Context, id int) (*PurchaseOrderResult, error) {
	po, err := s.po.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return purchaseOrderResult(po), nil
}

func (s *appService) CreatePurchaseOrder(ctx context.Context, actor core.Actor, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	p, err := s.resolveProduct(ctx, req.ProductID, req.SKU)
	if err != nil {
		return nil, err
	}
	po, err := s.po.CreatePurchaseOrder(ctx, actor, core.PurchaseOrderInput{
		ProductID:  p.ID,
		SupplierID: req.SupplierID,
		Quantity:   req.Quantity,
		UnitCost:   req.UnitCost,
		Notes:      req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return purchaseOrderResult(po), nil
}

func (s *appService) AdvancePurchaseOrder(ctx context.Context, actor core.Actor, id int, status string) (*PurchaseOrderResult, error) {
	po, err := s.po.TransitionPurchaseOrder(ctx, actor, id, canonicalStatus(core.PurchaseOrderKind, status))
	if err != nil {
		return nil, err
	}
	return purchaseOrderResult(po), nil
}

func (s *appService) DeletePurchaseOrder(ctx context.Context, actor core.Actor, id int) error {
	return s.po.DeletePurchaseOrder(ctx, actor, id)
}

// ── Sales orders ──────────────────────────────────────────────────────────────

func (s *appService) ListSalesOrders(ctx context.Context, actor core.Actor, f core.SalesOrderFilter) ([]core.SalesOrder, error) {
	if f.Status != "" {
		f.Status = canonicalStatus(core.SalesOrderKind, f.Status)
	}
	return s.so.ListSalesOrders(ctx, actor, f)
}

func (s *appService) GetSalesOrder(ctx context.Context, actor core.Actor, id int) (*SalesOrderResult, error) {
	so, err := s.so.GetSalesOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return salesOrderResult(so), nil
}

func (s *appService) CreateSalesOrder(ctx context.Context, actor core.Actor, req CreateSalesOrderRequest) (*SalesOrderResult, error) {
	p, err := s.resolveProduct(ctx, req.ProductID, req.SKU)
	if err != nil {
		return nil, err
	}
	customerID := req.CustomerID
	if customerID == 0 {
		customerID = actor.UserID
	}
	so, err := s.so.CreateSalesOrder(ctx, actor, core.SalesOrderInput{
		CustomerID: customerID,
		ProductID:  p.ID,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		Notes:      req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return salesOrderResult(so), nil
}

func (s *appService) AdvanceSalesOrder(ctx context.Context, actor core.Actor, id int, status string) (*SalesOrderResult, error) {
	so, err := s.so.TransitionSalesOrder(ctx, actor, id, canonicalStatus(core.SalesOrderKind, status))
	if err != nil {
		return nil, err
	}
	return salesOrderResult(so), nil
}

func (s *appService) CancelSalesOrder(ctx context.Context, actor core.Actor, id int) (*SalesOrderResult, error) {
	so, err := s.so.CancelSalesOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return salesOrderResult(so), nil
}

// canonicalStatus matches status case-insensitively against the known statuses of kind.
// Unknown input is returned trimmed so the transition check reports it.
func canonicalStatus(kind core.OrderKind, status string) string {
	status = strings.TrimSpace(status)
	for _, known := range core.Statuses(kind) {
		if strings.EqualFold(known, status) {
			return known
		}
	}
	return status
}

// ── Reports ───────────────────────────────────────────────────────────────────

func (s *appService) DashboardStats(ctx context.Context, actor core.Actor) (*core.DashboardStats, error) {
	return s.reports.DashboardStats(ctx, actor)
}

func (s *appService) LowStock(ctx context.Context, actor core.Actor) ([]core.Product, error) {
	return s.reports.LowStock(ctx, actor)
}

func (s *appService) InventoryValue(ctx context.Context, actor core.Actor) (*core.InventoryValueReport, error) {
	return s.reports.InventoryValue(ctx, actor)
}

func (s *appService) OrderHistory(ctx context.Context, actor core.Actor, productID int) (*core.ProductOrderHistory, error) {
	return s.reports.OrderHistory(ctx, actor, productID)
}
