package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"

	"inventory-service/internal/core"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
)

// LowStockMessage is the payload published when a stock change leaves a product low.
type LowStockMessage struct {
	ProductID    int    `json:"product_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	MinThreshold int    `json:"min_threshold"`
	Change       int    `json:"change"`
	Reason       string `json:"reason"`
}

// PubSubPublisher publishes low-stock alerts and order status changes to Pub/Sub topics.
// Publishing is asynchronous; delivery failures are logged, never returned to the committing caller.
type PubSubPublisher struct {
	stock   *pubsub.Topic
	orders  *pubsub.Topic
	marshal func(any) ([]byte, error)
	log     *zap.Logger
	wg      sync.WaitGroup
}

var (
	_ core.ProductObserver = (*PubSubPublisher)(nil)
	_ core.OrderObserver   = (*PubSubPublisher)(nil)
)

// NewPubSubPublisher constructs a publisher. Either topic may be nil to skip that stream, not both.
func NewPubSubPublisher(stock, orders *pubsub.Topic, log *zap.Logger) (*PubSubPublisher, error) {
	if stock == nil && orders == nil {
		return nil, errors.New("pubsub publisher: at least one topic is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PubSubPublisher{
		stock:   stock,
		orders:  orders,
		marshal: json.Marshal,
		log:     log.Named("pubsub"),
	}, nil
}

func (p *PubSubPublisher) ProductChanged(ctx context.Context, e core.ProductEvent) {
	if p.stock == nil || e.Kind != core.ProductStockChanged || !e.Product.IsLowStock() {
		return
	}
	msg := LowStockMessage{
		ProductID:    e.Product.ID,
		SKU:          e.Product.SKU,
		Name:         e.Product.Name,
		Quantity:     e.Product.Quantity,
		MinThreshold: e.Product.MinThreshold,
		Change:       e.Change,
		Reason:       e.Reason,
	}
	p.publish(ctx, p.stock, msg, map[string]string{
		"event":     "low_stock",
		"productId": strconv.Itoa(e.Product.ID),
		"sku":       e.Product.SKU,
	})
}

func (p *PubSubPublisher) OrderStatusChanged(ctx context.Context, e core.OrderEvent) {
	if p.orders == nil {
		return
	}
	p.publish(ctx, p.orders, e, map[string]string{
		"event":   "order_status_changed",
		"kind":    string(e.Kind),
		"orderId": strconv.Itoa(e.OrderID),
		"status":  e.To,
	})
}

func (p *PubSubPublisher) publish(ctx context.Context, topic *pubsub.Topic, payload any, attrs map[string]string) {
	data, err := p.marshal(payload)
	if err != nil {
		p.log.Error("marshal event", zap.String("topic", topic.ID()), zap.Error(err))
		return
	}

	// The request context ends when the handler returns; the publish must outlive it.
	ctx = context.WithoutCancel(ctx)
	result := topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		id, err := result.Get(ctx)
		if err != nil {
			p.log.Error("publish event", zap.String("topic", topic.ID()), zap.Any("attributes", attrs), zap.Error(err))
			return
		}
		p.log.Debug("published event", zap.String("topic", topic.ID()), zap.String("message_id", id))
	}()
}

// Close flushes pending messages and stops the topics' background goroutines.
func (p *PubSubPublisher) Close() {
	for _, t := range []*pubsub.Topic{p.stock, p.orders} {
		if t != nil {
			t.Stop()
		}
	}
	p.wg.Wait()
}
