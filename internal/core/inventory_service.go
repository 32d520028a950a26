package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("inventory-service/internal/core")

const maxHistoryLimit = 500

type inventoryService struct {
	pool      *pgxpool.Pool
	observers *Observers
}

// NewInventoryService constructs the stock ledger. observers may be nil.
func NewInventoryService(pool *pgxpool.Pool, observers *Observers) InventoryService {
	return &inventoryService{pool: pool, observers: observers}
}

// applyDelta computes the new on-hand quantity or refuses the change.
func applyDelta(productID, current, delta int) (int, error) {
	next := current + delta
	if next < 0 {
		return current, &InsufficientStockError{ProductID: productID, Requested: delta, Available: current}
	}
	return next, nil
}

// lifecycleReason builds the greppable reason string for an order-triggered adjustment.
func lifecycleReason(prefix string, orderID int) string {
	return fmt.Sprintf("%s:%d", prefix, orderID)
}

func validateAdjustment(delta int, reason string) error {
	if delta == 0 {
		return &ValidationError{Field: "change", Message: "must not be zero"}
	}
	if strings.TrimSpace(reason) == "" {
		return &ValidationError{Field: "reason", Message: "is required"}
	}
	return nil
}

func (s *inventoryService) ApplyTx(ctx context.Context, tx pgx.Tx, productID, delta int, reason string, actor Actor) (*ProductEvent, error) {
	ctx, span := tracer.Start(ctx, "InventoryService.ApplyTx")
	defer span.End()
	span.SetAttributes(attribute.Int("product.id", productID), attribute.Int("stock.delta", delta))

	if err := validateAdjustment(delta, reason); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)

	// Lock the product row so concurrent adjustments serialize on it.
	var current int
	err := tx.QueryRow(ctx,
		"SELECT quantity FROM products WHERE id = $1 FOR UPDATE", productID,
	).Scan(&current)
	if err != nil {
		return nil, notFoundOr(err, "product", productID, "lock product")
	}

	next, err := applyDelta(productID, current, delta)
	if err != nil {
		return nil, err
	}

	var p Product
	err = tx.QueryRow(ctx, `
		UPDATE products SET quantity = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, sku, name, description, price, quantity, min_threshold, product_group, created_at, updated_at
	`, next, productID).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Quantity,
		&p.MinThreshold, &p.ProductGroup, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update product quantity: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO stock_change_logs (product_id, change, quantity_after, reason, changed_by)
		VALUES ($1, $2, $3, $4, $5)
	`, productID, delta, next, reason, actorRef(actor))
	if err != nil {
		return nil, fmt.Errorf("failed to insert stock change log: %w", err)
	}

	return &ProductEvent{Kind: ProductStockChanged, Product: p, Change: delta, Reason: reason}, nil
}

func (s *inventoryService) Publish(ctx context.Context, events ...*ProductEvent) {
	for _, e := range events {
		if e != nil {
			s.observers.productChanged(ctx, *e)
		}
	}
}

func (s *inventoryService) Adjust(ctx context.Context, actor Actor, productID, delta int, reason string) (*Product, error) {
	if err := actor.Require(Role.CanAdjustStock, "adjust stock"); err != nil {
		return nil, err
	}
	if err := validateAdjustment(delta, reason); err != nil {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, readCommitted)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	event, err := s.ApplyTx(ctx, tx, productID, delta, reason, actor)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock adjustment: %w", err)
	}

	s.Publish(ctx, event)
	p := event.Product
	return &p, nil
}

func (s *inventoryService) History(ctx context.Context, actor Actor, productID, limit int) ([]StockChangeLog, error) {
	if err := actor.Require(Role.CanViewStockHistory, "view stock history"); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)", productID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return nil, &NotFoundError{Resource: "product", ID: productID}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT l.id, l.product_id, l.change, l.quantity_after, l.reason, l.changed_by,
		       COALESCE(u.username, ''), l.created_at
		FROM stock_change_logs l
		LEFT JOIN users u ON u.id = l.changed_by
		WHERE l.product_id = $1
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $2
	`, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock history: %w", err)
	}
	defer rows.Close()

	var logs []StockChangeLog
	for rows.Next() {
		var l StockChangeLog
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Change, &l.QuantityAfter, &l.Reason,
			&l.ChangedBy, &l.ChangedByName, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock change log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
