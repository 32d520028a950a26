package core_test

import (
	"context"
	"errors"
	"testing"

	"inventory-service/internal/core"

	"github.com/shopspring/decimal"
)

func TestReporting_DashboardAndInventoryValue(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	inv := core.NewInventoryService(pool, nil)
	po := core.NewPurchaseOrderService(pool, inv, nil)
	so := core.NewSalesOrderService(pool, inv, nil)
	reports := core.NewReportingService(pool, po, so)

	order, err := so.CreateSalesOrder(ctx, staff, core.SalesOrderInput{CustomerID: customerID, ProductID: widgetID, Quantity: 2})
	if err != nil {
		t.Fatalf("CreateSalesOrder failed: %v", err)
	}
	cancelled, err := so.CreateSalesOrder(ctx, staff, core.SalesOrderInput{CustomerID: customerID, ProductID: widgetID, Quantity: 1})
	if err != nil {
		t.Fatalf("CreateSalesOrder failed: %v", err)
	}
	if _, err := so.CancelSalesOrder(ctx, staff, cancelled.ID); err != nil {
		t.Fatalf("CancelSalesOrder failed: %v", err)
	}
	if _, err := po.CreatePurchaseOrder(ctx, buyer, core.PurchaseOrderInput{
		ProductID: gadgetID, SupplierID: acmeID, Quantity: 10, UnitCost: decimal.NewFromInt(6),
	}); err != nil {
		t.Fatalf("CreatePurchaseOrder failed: %v", err)
	}

	stats, err := reports.DashboardStats(ctx, admin)
	if err != nil {
		t.Fatalf("DashboardStats failed: %v", err)
	}
	if stats.ProductCount != 3 || stats.LowStockCount != 2 || stats.TotalUnits != 10 {
		t.Errorf("Unexpected product stats: %+v", stats)
	}
	if stats.SupplierCount != 1 {
		t.Errorf("Expected 1 active supplier, got %d", stats.SupplierCount)
	}
	// 8 × 25.00 + 2 × 12.50 + 0 × 3.00
	if !stats.InventoryValue.Equal(decimal.NewFromInt(225)) {
		t.Errorf("Expected inventory value 225, got %s", stats.InventoryValue)
	}
	if !stats.Revenue.Equal(order.TotalAmount) {
		t.Errorf("Expected revenue %s (cancelled excluded), got %s", order.TotalAmount, stats.Revenue)
	}
	if stats.SalesOrdersByStatus[core.SOStatusConfirmed] != 1 || stats.SalesOrdersByStatus[core.SOStatusCancelled] != 1 {
		t.Errorf("Unexpected sales status counts: %v", stats.SalesOrdersByStatus)
	}
	if stats.PurchaseOrdersByStatus[core.POStatusDraft] != 1 {
		t.Errorf("Unexpected purchase status counts: %v", stats.PurchaseOrdersByStatus)
	}

	value, err := reports.InventoryValue(ctx, admin)
	if err != nil {
		t.Fatalf("InventoryValue failed: %v", err)
	}
	if len(value.Lines) != 3 || !value.Total.Equal(stats.InventoryValue) {
		t.Errorf("Expected 3 lines totalling %s, got %d lines totalling %s", stats.InventoryValue, len(value.Lines), value.Total)
	}

	history, err := reports.OrderHistory(ctx, admin, widgetID)
	if err != nil {
		t.Fatalf("OrderHistory failed: %v", err)
	}
	if len(history.SalesOrders) != 2 || len(history.PurchaseOrders) != 0 {
		t.Errorf("Expected 2 sales and 0 purchase orders for widget, got %d / %d",
			len(history.SalesOrders), len(history.PurchaseOrders))
	}
}

func TestReporting_LowStockOrderingAndAccess(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	inv := core.NewInventoryService(pool, nil)
	reports := core.NewReportingService(pool,
		core.NewPurchaseOrderService(pool, inv, nil), core.NewSalesOrderService(pool, inv, nil))

	low, err := reports.LowStock(ctx, admin)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}
	if len(low) != 2 || low[0].ID != emptyID || low[1].ID != gadgetID {
		t.Errorf("Expected empty then gadget, got %+v", low)
	}

	// Quantity equal to the threshold counts as low.
	if _, err := inv.Adjust(ctx, admin, widgetID, -5, "cycle count"); err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}
	low, err = reports.LowStock(ctx, admin)
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}
	if len(low) != 3 {
		t.Errorf("Expected widget at threshold to be low stock, got %d products", len(low))
	}

	var authErr *core.AuthorizationError
	if _, err := reports.LowStock(ctx, staff); !errors.As(err, &authErr) {
		t.Errorf("Expected AuthorizationError for staff, got %v", err)
	}
	if _, err := reports.DashboardStats(ctx, customer); !errors.As(err, &authErr) {
		t.Errorf("Expected AuthorizationError for customer, got %v", err)
	}

	var nf *core.NotFoundError
	if _, err := reports.OrderHistory(ctx, admin, 999); !errors.As(err, &nf) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}
