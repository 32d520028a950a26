package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const salesOrderSelect = `
	SELECT so.id, so.customer_id, u.username, so.product_id, p.sku, p.name,
	       so.quantity, so.unit_price, so.total_amount, so.status, so.notes, so.created_by,
	       so.shipped_date, so.delivered_date, so.created_at, so.updated_at
	FROM sales_orders so
	JOIN users u    ON u.id = so.customer_id
	JOIN products p ON p.id = so.product_id`

type salesOrderService struct {
	pool      *pgxpool.Pool
	inv       InventoryService
	observers *Observers
}

// NewSalesOrderService constructs a SalesOrderService. observers may be nil.
func NewSalesOrderService(pool *pgxpool.Pool, inv InventoryService, observers *Observers) SalesOrderService {
	return &salesOrderService{pool: pool, inv: inv, observers: observers}
}

func scanSalesOrder(row interface{ Scan(...any) error }, so *SalesOrder) error {
	return row.Scan(
		&so.ID, &so.CustomerID, &so.CustomerName, &so.ProductID, &so.ProductSKU, &so.ProductName,
		&so.Quantity, &so.UnitPrice, &so.TotalAmount, &so.Status, &so.Notes, &so.CreatedBy,
		&so.ShippedDate, &so.DeliveredDate, &so.CreatedAt, &so.UpdatedAt,
	)
}

func validateSalesOrderInput(in SalesOrderInput) error {
	if in.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be positive"}
	}
	if in.UnitPrice.IsNegative() {
		return &ValidationError{Field: "unit_price", Message: "must not be negative"}
	}
	return nil
}

// salesOrderStamp returns the SET fragment that records the date a status was first reached.
// COALESCE keeps an existing timestamp so repeated requests never move it.
func salesOrderStamp(target string) string {
	switch target {
	case SOStatusShipped:
		return ", shipped_date = COALESCE(shipped_date, NOW())"
	case SOStatusDelivered:
		return ", delivered_date = COALESCE(delivered_date, NOW())"
	}
	return ""
}

func (s *salesOrderService) CreateSalesOrder(ctx context.Context, actor Actor, in SalesOrderInput) (*SalesOrder, error) {
	if err := actor.Require(Role.CanManageSalesOrders, "create sales orders"); err != nil {
		return nil, err
	}
	if err := validateSalesOrderInput(in); err != nil {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, readCommitted)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var customerID int
	if err := tx.QueryRow(ctx, "SELECT id FROM users WHERE id = $1", in.CustomerID).Scan(&customerID); err != nil {
		return nil, notFoundOr(err, "customer", in.CustomerID, "resolve customer")
	}

	var p Product
	if err := scanProduct(tx.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1 FOR UPDATE", in.ProductID,
	), &p); err != nil {
		return nil, notFoundOr(err, "product", in.ProductID, "resolve product")
	}

	// Check availability before any row is written.
	if p.Quantity < in.Quantity {
		return nil, &InsufficientStockError{ProductID: p.ID, Requested: -in.Quantity, Available: p.Quantity}
	}

	price := p.Price
	if in.UnitPrice.IsPositive() {
		price = in.UnitPrice
	}
	total := price.Mul(intDecimal(in.Quantity))

	var id int
	if err := tx.QueryRow(ctx, `
		INSERT INTO sales_orders (customer_id, product_id, quantity, unit_price, total_amount, status, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		in.CustomerID, in.ProductID, in.Quantity, price, total, SOStatusConfirmed,
		toPtr(strings.TrimSpace(in.Notes)), actorRef(actor),
	).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to insert sales order: %w", err)
	}

	event, err := s.inv.ApplyTx(ctx, tx, in.ProductID, -in.Quantity,
		lifecycleReason(ReasonSalesOrderConfirmed, id), actor)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit sales order: %w", err)
	}

	s.inv.Publish(ctx, event)
	s.observers.orderChanged(ctx, OrderEvent{
		Kind: SalesOrderKind, OrderID: id, ProductID: in.ProductID,
		To: SOStatusConfirmed, ActorID: actor.UserID, At: time.Now().UTC(),
	})
	return s.GetSalesOrder(ctx, actor, id)
}

func (s *salesOrderService) TransitionSalesOrder(ctx context.Context, actor Actor, id int, target string) (*SalesOrder, error) {
	if err := actor.Require(Role.CanManageSalesOrders, "transition sales orders"); err != nil {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, readCommitted)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	var productID, quantity int
	if err := tx.QueryRow(ctx,
		"SELECT status, product_id, quantity FROM sales_orders WHERE id = $1 FOR UPDATE",
		id,
	).Scan(&status, &productID, &quantity); err != nil {
		return nil, notFoundOr(err, "sales order", id, "fetch sales order")
	}

	if err := CheckTransition(SalesOrderKind, status, target); err != nil {
		return nil, err
	}

	var event *ProductEvent
	switch {
	case target == SOStatusConfirmed:
		event, err = s.inv.ApplyTx(ctx, tx, productID, -quantity,
			lifecycleReason(ReasonSalesOrderConfirmed, id), actor)
	case target == SOStatusCancelled && status == SOStatusConfirmed:
		// Pending orders never deducted stock, so only Confirmed ones are credited back.
		event, err = s.inv.ApplyTx(ctx, tx, productID, quantity,
			lifecycleReason(ReasonSalesOrderCancelled, id), actor)
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		"UPDATE sales_orders SET status = $1, updated_at = NOW()"+salesOrderStamp(target)+" WHERE id = $2",
		target, id,
	); err != nil {
		return nil, fmt.Errorf("failed to update sales order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit sales order transition: %w", err)
	}

	s.inv.Publish(ctx, event)
	s.observers.orderChanged(ctx, OrderEvent{
		Kind: SalesOrderKind, OrderID: id, ProductID: productID,
		From: status, To: target, ActorID: actor.UserID, At: time.Now().UTC(),
	})
	return s.GetSalesOrder(ctx, actor, id)
}

func (s *salesOrderService) CancelSalesOrder(ctx context.Context, actor Actor, id int) (*SalesOrder, error) {
	return s.TransitionSalesOrder(ctx, actor, id, SOStatusCancelled)
}

func (s *salesOrderService) GetSalesOrder(ctx context.Context, actor Actor, id int) (*SalesOrder, error) {
	so := &SalesOrder{}
	if err := scanSalesOrder(s.pool.QueryRow(ctx, salesOrderSelect+" WHERE so.id = $1", id), so); err != nil {
		return nil, notFoundOr(err, "sales order", id, "get sales order")
	}
	if actor.Role.SeesOnlyOwnOrders() && so.CustomerID != actor.UserID {
		return nil, &AuthorizationError{Role: actor.Role, Action: "view another customer's order"}
	}
	return so, nil
}

func (s *salesOrderService) ListSalesOrders(ctx context.Context, actor Actor, f SalesOrderFilter) ([]SalesOrder, error) {
	if f.Status != "" && !IsKnownStatus(SalesOrderKind, f.Status) {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown sales order status %q", f.Status)}
	}
	if actor.Role.SeesOnlyOwnOrders() {
		f.CustomerID = actor.UserID
	}
	page := f.Page.normalize()

	rows, err := s.pool.Query(ctx, salesOrderSelect+`
		WHERE ($1 = '' OR so.status = $1)
		  AND ($2 = 0 OR so.customer_id = $2)
		  AND ($3 = 0 OR so.product_id = $3)
		ORDER BY so.created_at DESC, so.id DESC
		LIMIT $4 OFFSET $5`,
		f.Status, f.CustomerID, f.ProductID, page.Limit, page.offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales orders: %w", err)
	}
	defer rows.Close()

	orders := []SalesOrder{}
	for rows.Next() {
		var so SalesOrder
		if err := scanSalesOrder(rows, &so); err != nil {
			return nil, fmt.Errorf("failed to scan sales order: %w", err)
		}
		orders = append(orders, so)
	}
	return orders, rows.Err()
}
