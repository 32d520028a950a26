// Package notify delivers committed stock and order events to operators and downstream systems.
package notify

import (
	"context"

	"inventory-service/internal/core"

	"go.uber.org/zap"
)

// LogNotifier writes low-stock alerts and order status changes to the structured log.
type LogNotifier struct {
	log *zap.Logger
}

var (
	_ core.ProductObserver = (*LogNotifier)(nil)
	_ core.OrderObserver   = (*LogNotifier)(nil)
)

// NewLogNotifier returns a notifier writing to log.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log.Named("notify")}
}

// ProductChanged warns when a stock change leaves a product at or below its reorder point.
func (n *LogNotifier) ProductChanged(_ context.Context, e core.ProductEvent) {
	if e.Kind != core.ProductStockChanged || !e.Product.IsLowStock() {
		return
	}
	n.log.Warn("low stock",
		zap.Int("product_id", e.Product.ID),
		zap.String("sku", e.Product.SKU),
		zap.Int("quantity", e.Product.Quantity),
		zap.Int("min_threshold", e.Product.MinThreshold),
		zap.Int("change", e.Change),
		zap.String("reason", e.Reason),
	)
}

func (n *LogNotifier) OrderStatusChanged(_ context.Context, e core.OrderEvent) {
	n.log.Info("order status changed",
		zap.String("kind", string(e.Kind)),
		zap.Int("order_id", e.OrderID),
		zap.Int("product_id", e.ProductID),
		zap.String("from", e.From),
		zap.String("to", e.To),
		zap.Int("actor_id", e.ActorID),
	)
}
