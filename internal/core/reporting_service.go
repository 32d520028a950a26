package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// DashboardStats is the headline summary shown on the dashboard.
// Revenue counts sales orders that are Confirmed, Shipped or Delivered.
type DashboardStats struct {
	ProductCount           int             `json:"product_count"`
	LowStockCount          int             `json:"low_stock_count"`
	TotalUnits             int             `json:"total_units"`
	InventoryValue         decimal.Decimal `json:"inventory_value"`
	SupplierCount          int             `json:"supplier_count"`
	PurchaseOrdersByStatus map[string]int  `json:"purchase_orders_by_status"`
	SalesOrdersByStatus    map[string]int  `json:"sales_orders_by_status"`
	Revenue                decimal.Decimal `json:"revenue"`
}

// InventoryValueLine is one product's contribution to inventory value (quantity × price).
type InventoryValueLine struct {
	ProductID    int             `json:"product_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	ProductGroup string          `json:"product_group"`
	Quantity     int             `json:"quantity"`
	MinThreshold int             `json:"min_threshold"`
	Price        decimal.Decimal `json:"price"`
	Value        decimal.Decimal `json:"value"`
}

// InventoryValueReport lists every product and the grand total.
type InventoryValueReport struct {
	Lines []InventoryValueLine `json:"lines"`
	Total decimal.Decimal      `json:"total"`
}

// ProductOrderHistory lists every order placed for one product.
type ProductOrderHistory struct {
	Product        Product         `json:"product"`
	PurchaseOrders []PurchaseOrder `json:"purchase_orders"`
	SalesOrders    []SalesOrder    `json:"sales_orders"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only reporting queries for managers.
type ReportingService interface {
	// DashboardStats aggregates catalog, stock and order counts.
	DashboardStats(ctx context.Context, actor Actor) (*DashboardStats, error)

	// LowStock returns products at or below their reorder point, lowest stock first.
	LowStock(ctx context.Context, actor Actor) ([]Product, error)

	// InventoryValue returns per-product stock value and the total.
	InventoryValue(ctx context.Context, actor Actor) (*InventoryValueReport, error)

	// OrderHistory returns all purchase and sales orders for one product.
	OrderHistory(ctx context.Context, actor Actor, productID int) (*ProductOrderHistory, error)
}

type reportingService struct {
	pool *pgxpool.Pool
	po   PurchaseOrderService
	so   SalesOrderService
}

// NewReportingService constructs a ReportingService.
func NewReportingService(pool *pgxpool.Pool, po PurchaseOrderService, so SalesOrderService) ReportingService {
	return &reportingService{pool: pool, po: po, so: so}
}

func (s *reportingService) statusCounts(ctx context.Context, table string) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, "SELECT status, COUNT(*) FROM "+table+" GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count %s by status: %w", table, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (s *reportingService) DashboardStats(ctx context.Context, actor Actor) (*DashboardStats, error) {
	if err := actor.Require(Role.CanViewReports, "view dashboard"); err != nil {
		return nil, err
	}

	st := &DashboardStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE quantity <= min_threshold),
		       COALESCE(SUM(quantity), 0),
		       COALESCE(SUM(quantity * price), 0),
		       (SELECT COUNT(*) FROM suppliers WHERE is_active = true)
		FROM products
	`).Scan(&st.ProductCount, &st.LowStockCount, &st.TotalUnits, &st.InventoryValue, &st.SupplierCount)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate products: %w", err)
	}

	if err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM sales_orders
		WHERE status IN ($1, $2, $3)
	`, SOStatusConfirmed, SOStatusShipped, SOStatusDelivered).Scan(&st.Revenue); err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	if st.PurchaseOrdersByStatus, err = s.statusCounts(ctx, "purchase_orders"); err != nil {
		return nil, err
	}
	if st.SalesOrdersByStatus, err = s.statusCounts(ctx, "sales_orders"); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *reportingService) LowStock(ctx context.Context, actor Actor) ([]Product, error) {
	if err := actor.Require(Role.CanViewReports, "view low stock report"); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE quantity <= min_threshold
		ORDER BY quantity ASC, sku ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *reportingService) InventoryValue(ctx context.Context, actor Actor) (*InventoryValueReport, error) {
	if err := actor.Require(Role.CanViewReports, "view inventory value"); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, sku, name, product_group, quantity, min_threshold, price
		FROM products
		ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory value: %w", err)
	}
	defer rows.Close()

	report := &InventoryValueReport{Lines: []InventoryValueLine{}, Total: decimal.Zero}
	for rows.Next() {
		var l InventoryValueLine
		if err := rows.Scan(&l.ProductID, &l.SKU, &l.Name, &l.ProductGroup,
			&l.Quantity, &l.MinThreshold, &l.Price); err != nil {
			return nil, fmt.Errorf("failed to scan inventory line: %w", err)
		}
		l.Value = l.Price.Mul(intDecimal(l.Quantity))
		report.Total = report.Total.Add(l.Value)
		report.Lines = append(report.Lines, l)
	}
	return report, rows.Err()
}

func (s *reportingService) OrderHistory(ctx context.Context, actor Actor, productID int) (*ProductOrderHistory, error) {
	if err := actor.Require(Role.CanViewReports, "view order history"); err != nil {
		return nil, err
	}

	h := &ProductOrderHistory{}
	if err := scanProduct(s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", productID,
	), &h.Product); err != nil {
		return nil, notFoundOr(err, "product", productID, "fetch product")
	}

	var err error
	if h.PurchaseOrders, err = s.po.ListPurchaseOrders(ctx, PurchaseOrderFilter{
		ProductID: productID, Page: Page{Limit: maxPageLimit},
	}); err != nil {
		return nil, err
	}
	if h.SalesOrders, err = s.so.ListSalesOrders(ctx, actor, SalesOrderFilter{
		ProductID: productID, Page: Page{Limit: maxPageLimit},
	}); err != nil {
		return nil, err
	}
	return h, nil
}
