package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const purchaseOrderSelect = `
	SELECT po.id, po.product_id, p.sku, p.name, po.supplier_id, s.name,
	       po.quantity, po.unit_cost, po.total_cost, po.status, po.notes, po.created_by,
	       po.sent_at, po.received_at, po.closed_at, po.created_at, po.updated_at
	FROM purchase_orders po
	JOIN products p  ON p.id = po.product_id
	JOIN suppliers s ON s.id = po.supplier_id`

type purchaseOrderService struct {
	pool      *pgxpool.Pool
	inv       InventoryService
	observers *Observers
}

// NewPurchaseOrderService constructs a PurchaseOrderService. observers may be nil.
func NewPurchaseOrderService(pool *pgxpool.Pool, inv InventoryService, observers *Observers) PurchaseOrderService {
	return &purchaseOrderService{pool: pool, inv: inv, observers: observers}
}

func scanPurchaseOrder(row interface{ Scan(...any) error }, po *PurchaseOrder) error {
	return row.Scan(
		&po.ID, &po.ProductID, &po.ProductSKU, &po.ProductName, &po.SupplierID, &po.SupplierName,
		&po.Quantity, &po.UnitCost, &po.TotalCost, &po.Status, &po.Notes, &po.CreatedBy,
		&po.SentAt, &po.ReceivedAt, &po.ClosedAt, &po.CreatedAt, &po.UpdatedAt,
	)
}

func validatePurchaseOrderInput(in PurchaseOrderInput) error {
	if in.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be positive"}
	}
	if !in.UnitCost.IsPositive() {
		return &ValidationError{Field: "unit_cost", Message: "must be positive"}
	}
	return nil
}

func (s *purchaseOrderService) CreatePurchaseOrder(ctx context.Context, actor Actor, in PurchaseOrderInput) (*PurchaseOrder, error) {
	if err := actor.Require(Role.CanManagePurchaseOrders, "create purchase orders"); err != nil {
		return nil, err
	}
	if err := validatePurchaseOrderInput(in); err != nil {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, readCommitted)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var productID int
	if err := tx.QueryRow(ctx, "SELECT id FROM products WHERE id = $1", in.ProductID).Scan(&productID); err != nil {
		return nil, notFoundOr(err, "product", in.ProductID, "fetch product")
	}

	var supplierActive bool
	if err := tx.QueryRow(ctx, "SELECT is_active FROM suppliers WHERE id = $1", in.SupplierID).Scan(&supplierActive); err != nil {
		return nil, notFoundOr(err, "supplier", in.SupplierID, "fetch supplier")
	}
	if !supplierActive {
		return nil, &BusinessRuleError{Message: fmt.Sprintf("supplier %d is inactive", in.SupplierID)}
	}

	total := in.UnitCost.Mul(intDecimal(in.Quantity))

	var id int
	if err := tx.QueryRow(ctx, `
		INSERT INTO purchase_orders (product_id, supplier_id, quantity, unit_cost, total_cost, status, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		in.ProductID, in.SupplierID, in.Quantity, in.UnitCost, total, POStatusDraft,
		toPtr(strings.TrimSpace(in.Notes)), actorRef(actor),
	).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert purchase order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.observers.orderChanged(ctx, OrderEvent{
		Kind: PurchaseOrderKind, OrderID: id, ProductID: in.ProductID,
		To: POStatusDraft, ActorID: actor.UserID, At: time.Now().UTC(),
	})
	return s.GetPurchaseOrder(ctx, id)
}

func (s *purchaseOrderService) TransitionPurchaseOrder(ctx context.Context, actor Actor, id int, target string) (*PurchaseOrder, error) {
	if err := actor.Require(Role.CanManagePurchaseOrders, "transition purchase orders"); err != nil {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, readCommitted)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	var productID, quantity int
	if err := tx.QueryRow(ctx,
		"SELECT status, product_id, quantity FROM purchase_orders WHERE id = $1 FOR UPDATE",
		id,
	).Scan(&status, &productID, &quantity); err != nil {
		return nil, notFoundOr(err, "purchase order", id, "fetch purchase order")
	}

	if err := CheckTransition(PurchaseOrderKind, status, target); err != nil {
		return nil, err
	}

	var event *ProductEvent
	var stampColumn string
	switch target {
	case POStatusSent:
		stampColumn = "sent_at"
	case POStatusReceived:
		stampColumn = "received_at"
		event, err = s.inv.ApplyTx(ctx, tx, productID, quantity,
			lifecycleReason(ReasonPurchaseOrderReceived, id), actor)
		if err != nil {
			return nil, fmt.Errorf("receive purchase order %d: %w", id, err)
		}
	case POStatusClosed:
		stampColumn = "closed_at"
	}

	if _, err := tx.Exec(ctx,
		"UPDATE purchase_orders SET status = $1, "+stampColumn+" = NOW(), updated_at = NOW() WHERE id = $2",
		target, id,
	); err != nil {
		return nil, fmt.Errorf("update purchase order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.inv.Publish(ctx, event)
	s.observers.orderChanged(ctx, OrderEvent{
		Kind: PurchaseOrderKind, OrderID: id, ProductID: productID,
		From: status, To: target, ActorID: actor.UserID, At: time.Now().UTC(),
	})
	return s.GetPurchaseOrder(ctx, id)
}

func (s *purchaseOrderService) DeletePurchaseOrder(ctx context.Context, actor Actor, id int) error {
	if err := actor.Require(Role.CanManagePurchaseOrders, "delete purchase orders"); err != nil {
		return err
	}

	tx, err := s.pool.BeginTx(ctx, readCommitted)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx, "SELECT status FROM purchase_orders WHERE id = $1 FOR UPDATE", id).Scan(&status); err != nil {
		return notFoundOr(err, "purchase order", id, "fetch purchase order")
	}
	if status != POStatusDraft {
		return &BusinessRuleError{Message: fmt.Sprintf("purchase order %d is %s; only Draft orders can be deleted", id, status)}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM purchase_orders WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete purchase order %d: %w", id, err)
	}
	return tx.Commit(ctx)
}

func (s *purchaseOrderService) GetPurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {
	po := &PurchaseOrder{}
	if err := scanPurchaseOrder(s.pool.QueryRow(ctx, purchaseOrderSelect+" WHERE po.id = $1", id), po); err != nil {
		return nil, notFoundOr(err, "purchase order", id, "get purchase order")
	}
	return po, nil
}

func (s *purchaseOrderService) ListPurchaseOrders(ctx context.Context, f PurchaseOrderFilter) ([]PurchaseOrder, error) {
	if f.Status != "" && !IsKnownStatus(PurchaseOrderKind, f.Status) {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown purchase order status %q", f.Status)}
	}
	page := f.Page.normalize()

	rows, err := s.pool.Query(ctx, purchaseOrderSelect+`
		WHERE ($1 = '' OR po.status = $1)
		  AND ($2 = 0 OR po.supplier_id = $2)
		  AND ($3 = 0 OR po.product_id = $3)
		ORDER BY po.created_at DESC, po.id DESC
		LIMIT $4 OFFSET $5`,
		f.Status, f.SupplierID, f.ProductID, page.Limit, page.offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("query purchase orders: %w", err)
	}
	defer rows.Close()

	orders := []PurchaseOrder{}
	for rows.Next() {
		var po PurchaseOrder
		if err := scanPurchaseOrder(rows, &po); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}
