package core_test

import (
	"context"
	"errors"
	"testing"

	"inventory-service/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func setupSalesOrderTest(t *testing.T) (*pgxpool.Pool, core.SalesOrderService) {
	t.Helper()
	pool := setupTestDB(t)
	return pool, core.NewSalesOrderService(pool, core.NewInventoryService(pool, nil), nil)
}

// insertPendingOrder writes a Pending order directly; the service only creates Confirmed ones.
func insertPendingOrder(t *testing.T, pool *pgxpool.Pool, productID, qty int) int {
	t.Helper()
	var id int
	err := pool.QueryRow(context.Background(), `
		INSERT INTO sales_orders (customer_id, product_id, quantity, unit_price, total_amount, status)
		VALUES ($1, $2, $3, 1, $4, 'Pending') RETURNING id`,
		customerID, productID, qty, qty,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to insert pending order: %v", err)
	}
	return id
}

func TestSalesOrder_CreateAndCancelRestoresStock(t *testing.T) {
	pool, svc := setupSalesOrderTest(t)
	defer pool.Close()
	ctx := context.Background()

	so, err := svc.CreateSalesOrder(ctx, staff, core.SalesOrderInput{
		CustomerID: customerID, ProductID: widgetID, Quantity: 3,
	})
	if err != nil {
		t.Fatalf("CreateSalesOrder failed: %v", err)
	}
	if so.Status != core.SOStatusConfirmed {
		t.Errorf("Expected Confirmed, got %s", so.Status)
	}
	if !so.UnitPrice.Equal(decimal.NewFromInt(25)) || !so.TotalAmount.Equal(decimal.NewFromInt(75)) {
		t.Errorf("Expected list price 25 and total 75, got %s / %s", so.UnitPrice, so.TotalAmount)
	}
	if so.CustomerName != "alice" {
		t.Errorf("Expected customer alice, got %q", so.CustomerName)
	}
	if got := quantityOf(t, pool, widgetID); got != 7 {
		t.Errorf("Expected quantity 7 after order, got %d", got)
	}

	so, err = svc.CancelSalesOrder(ctx, staff, so.ID)
	if err != nil {
		t.Fatalf("CancelSalesOrder failed: %v", err)
	}
	if so.Status != core.SOStatusCancelled {
		t.Errorf("Expected Cancelled, got %s", so.Status)
	}
	if got := quantityOf(t, pool, widgetID); got != 10 {
		t.Errorf("Expected quantity 10 after cancel, got %d", got)
	}
	if got := logCount(t, pool, widgetID); got != 2 {
		t.Errorf("Expected 2 log rows (deduct + restore), got %d", got)
	}

	var statusErr *core.OrderStatusError
	if _, err := svc.CancelSalesOrder(ctx, staff, so.ID); !errors.As(err, &statusErr) {
		t.Errorf("Expected OrderStatusError cancelling twice, got %v", err)
	}
	if got := quantityOf(t, pool, widgetID); got != 10 {
		t.Errorf("Second cancel must not touch stock, got %d", got)
	}
}

func TestSalesOrder_InsufficientStockWritesNothing(t *testing.T) {
	pool, svc := setupSalesOrderTest(t)
	defer pool.Close()
	ctx := context.Background()

	_, err := svc.CreateSalesOrder(ctx, staff, core.SalesOrderInput{
		CustomerID: customerID, ProductID: gadgetID, Quantity: 5,
	})
	var stockErr *core.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("Expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 2 || stockErr.Requested != -5 {
		t.Errorf("Expected requested -5 / available 2, got %+v", stockErr)
	}

	var orders int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales_orders").Scan(&orders); err != nil {
		t.Fatalf("Failed to count orders: %v", err)
	}
	if orders != 0 {
		t.Errorf("Expected no order row, got %d", orders)
	}
	if got := quantityOf(t, pool, gadgetID); got != 2 {
		t.Errorf("Expected quantity 2, got %d", got)
	}
}

func TestSalesOrder_ShipAndDeliverStampDatesOnce(t *testing.T) {
	pool, svc := setupSalesOrderTest(t)
	defer pool.Close()
	ctx := context.Background()

	so, err := svc.CreateSalesOrder(ctx, staff, core.SalesOrderInput{
		CustomerID: customerID, ProductID: widgetID, Quantity: 1,
		UnitPrice: decimal.RequireFromString("19.99"),
	})
	if err != nil {
		t.Fatalf("CreateSalesOrder failed: %v", err)
	}
	if !so.TotalAmount.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("Expected override price total 19.99, got %s", so.TotalAmount)
	}

	shipped, err := svc.TransitionSalesOrder(ctx, staff, so.ID, core.SOStatusShipped)
	if err != nil {
		t.Fatalf("Transition to Shipped failed: %v", err)
	}
	if shipped.ShippedDate == nil {
		t.Fatal("Expected shipped_date to be set")
	}
	first := *shipped.ShippedDate

	var statusErr *core.OrderStatusError
	if _, err := svc.TransitionSalesOrder(ctx, staff, so.ID, core.SOStatusShipped); !errors.As(err, &statusErr) {
		t.Errorf("Expected Shipped -> Shipped to be rejected, got %v", err)
	}
	if _, err := svc.CancelSalesOrder(ctx, staff, so.ID); !errors.As(err, &statusErr) {
		t.Errorf("Expected cancelling a shipped order to be rejected, got %v", err)
	}

	delivered, err := svc.TransitionSalesOrder(ctx, staff, so.ID, core.SOStatusDelivered)
	if err != nil {
		t.Fatalf("Transition to Delivered failed: %v", err)
	}
	if delivered.DeliveredDate == nil || delivered.ShippedDate == nil || !delivered.ShippedDate.Equal(first) {
		t.Errorf("Expected delivered_date set and shipped_date unchanged, got %+v", delivered)
	}
	if got := quantityOf(t, pool, widgetID); got != 9 {
		t.Errorf("Shipping and delivery must not touch stock, got %d", got)
	}
}

func TestSalesOrder_PendingOrders(t *testing.T) {
	pool, svc := setupSalesOrderTest(t)
	defer pool.Close()
	ctx := context.Background()

	confirmID := insertPendingOrder(t, pool, widgetID, 4)
	cancelID := insertPendingOrder(t, pool, widgetID, 4)
	tooBigID := insertPendingOrder(t, pool, gadgetID, 3)

	if _, err := svc.TransitionSalesOrder(ctx, staff, confirmID, core.SOStatusConfirmed); err != nil {
		t.Fatalf("Pending -> Confirmed failed: %v", err)
	}
	if got := quantityOf(t, pool, widgetID); got != 6 {
		t.Errorf("Expected confirmation to deduct 4, got %d", got)
	}

	if _, err := svc.CancelSalesOrder(ctx, staff, cancelID); err != nil {
		t.Fatalf("Pending -> Cancelled failed: %v", err)
	}
	if got := quantityOf(t, pool, widgetID); got != 6 {
		t.Errorf("Cancelling a Pending order must not touch stock, got %d", got)
	}

	var stockErr *core.InsufficientStockError
	if _, err := svc.TransitionSalesOrder(ctx, staff, tooBigID, core.SOStatusConfirmed); !errors.As(err, &stockErr) {
		t.Fatalf("Expected InsufficientStockError confirming 3 of 2, got %v", err)
	}
	so, err := svc.GetSalesOrder(ctx, staff, tooBigID)
	if err != nil {
		t.Fatalf("GetSalesOrder failed: %v", err)
	}
	if so.Status != core.SOStatusPending {
		t.Errorf("Failed confirmation must leave the order Pending, got %s", so.Status)
	}

	var statusErr *core.OrderStatusError
	if _, err := svc.TransitionSalesOrder(ctx, staff, tooBigID, core.SOStatusShipped); !errors.As(err, &statusErr) {
		t.Errorf("Expected Pending -> Shipped to be rejected, got %v", err)
	}
}

func TestSalesOrder_CustomersSeeOnlyTheirOwnOrders(t *testing.T) {
	pool, svc := setupSalesOrderTest(t)
	defer pool.Close()
	ctx := context.Background()

	mine, err := svc.CreateSalesOrder(ctx, staff, core.SalesOrderInput{CustomerID: customerID, ProductID: widgetID, Quantity: 1})
	if err != nil {
		t.Fatalf("CreateSalesOrder failed: %v", err)
	}
	theirs, err := svc.CreateSalesOrder(ctx, staff, core.SalesOrderInput{CustomerID: buyerID, ProductID: widgetID, Quantity: 1})
	if err != nil {
		t.Fatalf("CreateSalesOrder failed: %v", err)
	}

	list, err := svc.ListSalesOrders(ctx, customer, core.SalesOrderFilter{})
	if err != nil {
		t.Fatalf("ListSalesOrders failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Errorf("Expected only the customer's own order, got %+v", list)
	}

	if _, err := svc.GetSalesOrder(ctx, customer, mine.ID); err != nil {
		t.Errorf("Customer should read own order: %v", err)
	}
	var authErr *core.AuthorizationError
	if _, err := svc.GetSalesOrder(ctx, customer, theirs.ID); !errors.As(err, &authErr) {
		t.Errorf("Expected AuthorizationError reading another customer's order, got %v", err)
	}
	if _, err := svc.CancelSalesOrder(ctx, customer, mine.ID); !errors.As(err, &authErr) {
		t.Errorf("Expected AuthorizationError for customer transition, got %v", err)
	}

	all, err := svc.ListSalesOrders(ctx, admin, core.SalesOrderFilter{Status: core.SOStatusConfirmed})
	if err != nil {
		t.Fatalf("ListSalesOrders failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected admin to see 2 orders, got %d", len(all))
	}

	var valErr *core.ValidationError
	if _, err := svc.ListSalesOrders(ctx, admin, core.SalesOrderFilter{Status: "Lost"}); !errors.As(err, &valErr) {
		t.Errorf("Expected ValidationError for unknown status, got %v", err)
	}
}

func TestSalesOrder_CreateValidation(t *testing.T) {
	pool, svc := setupSalesOrderTest(t)
	defer pool.Close()
	ctx := context.Background()

	var valErr *core.ValidationError
	if _, err := svc.CreateSalesOrder(ctx, staff, core.SalesOrderInput{CustomerID: customerID, ProductID: widgetID}); !errors.As(err, &valErr) {
		t.Errorf("Expected ValidationError for zero quantity, got %v", err)
	}

	var nf *core.NotFoundError
	if _, err := svc.CreateSalesOrder(ctx, staff, core.SalesOrderInput{CustomerID: 999, ProductID: widgetID, Quantity: 1}); !errors.As(err, &nf) || nf.Resource != "customer" {
		t.Errorf("Expected customer NotFoundError, got %v", err)
	}
	if _, err := svc.CreateSalesOrder(ctx, staff, core.SalesOrderInput{CustomerID: customerID, ProductID: 999, Quantity: 1}); !errors.As(err, &nf) || nf.Resource != "product" {
		t.Errorf("Expected product NotFoundError, got %v", err)
	}
	if _, err := svc.GetSalesOrder(ctx, admin, 999); !errors.As(err, &nf) {
		t.Errorf("Expected NotFoundError for missing order, got %v", err)
	}
}
