package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyDelta(t *testing.T) {
	next, err := applyDelta(1, 10, -3)
	require.NoError(t, err)
	require.Equal(t, 7, next)

	next, err = applyDelta(1, 7, 5)
	require.NoError(t, err)
	require.Equal(t, 12, next)

	next, err = applyDelta(1, 4, -4)
	require.NoError(t, err)
	require.Zero(t, next)
}

func TestApplyDeltaRejectsNegativeResult(t *testing.T) {
	next, err := applyDelta(42, 2, -5)
	require.Equal(t, 2, next)

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	require.Equal(t, 42, stockErr.ProductID)
	require.Equal(t, -5, stockErr.Requested)
	require.Equal(t, 2, stockErr.Available)
}

func TestApplyDeltaSequenceNeverGoesNegative(t *testing.T) {
	qty := 10
	for _, delta := range []int{-4, -4, -4, +3, -6, -1} {
		next, err := applyDelta(1, qty, delta)
		if err != nil {
			require.Equal(t, qty, next)
			continue
		}
		qty = next
		require.GreaterOrEqual(t, qty, 0)
	}
	// 10 -4 -4 (-4 refused) +3 (-6 refused) -1
	require.Equal(t, 4, qty)
}

func TestValidateAdjustment(t *testing.T) {
	require.NoError(t, validateAdjustment(5, "cycle count"))

	var valErr *ValidationError
	require.True(t, errors.As(validateAdjustment(0, "noop"), &valErr))
	require.Equal(t, "change", valErr.Field)

	require.True(t, errors.As(validateAdjustment(3, "   "), &valErr))
	require.Equal(t, "reason", valErr.Field)
}

func TestLifecycleReasons(t *testing.T) {
	require.Equal(t, "purchase-order-received:12", lifecycleReason(ReasonPurchaseOrderReceived, 12))
	require.Equal(t, "sales-order-confirmed:3", lifecycleReason(ReasonSalesOrderConfirmed, 3))
	require.Equal(t, "sales-order-cancelled:3", lifecycleReason(ReasonSalesOrderCancelled, 3))
}

type recordingObserver struct {
	products []ProductEvent
	orders   []OrderEvent
}

func (r *recordingObserver) ProductChanged(_ context.Context, e ProductEvent) {
	r.products = append(r.products, e)
}

func (r *recordingObserver) OrderStatusChanged(_ context.Context, e OrderEvent) {
	r.orders = append(r.orders, e)
}

func TestPublishSkipsNilEventsAndFansOut(t *testing.T) {
	a, b := &recordingObserver{}, &recordingObserver{}
	svc := &inventoryService{observers: &Observers{Products: []ProductObserver{a, b}}}

	svc.Publish(context.Background(), nil, &ProductEvent{Kind: ProductStockChanged, Change: -2}, nil)

	require.Len(t, a.products, 1)
	require.Len(t, b.products, 1)
	require.Equal(t, -2, a.products[0].Change)
}

func TestNilObserversAreSafe(t *testing.T) {
	var obs *Observers
	obs.productChanged(context.Background(), ProductEvent{})
	obs.orderChanged(context.Background(), OrderEvent{})

	svc := &inventoryService{}
	svc.Publish(context.Background(), &ProductEvent{})
}

func TestErrorMessagesCarryDetails(t *testing.T) {
	require.Equal(t, `sales_order cannot transition from "Shipped" to "Cancelled"`,
		(&OrderStatusError{Kind: SalesOrderKind, Current: SOStatusShipped, Target: SOStatusCancelled}).Error())
	require.Equal(t, "insufficient stock for product 9: requested -5, available 2",
		(&InsufficientStockError{ProductID: 9, Requested: -5, Available: 2}).Error())
	require.Equal(t, "product 4 not found", (&NotFoundError{Resource: "product", ID: 4}).Error())

	wrapped := fmt.Errorf("receive purchase order 1: %w", &InsufficientStockError{ProductID: 1})
	var stockErr *InsufficientStockError
	require.True(t, errors.As(wrapped, &stockErr))
}
