package core

import (
	"context"
	"time"
)

// ProductEventKind describes why a ProductEvent was emitted.
type ProductEventKind string

const (
	ProductStockChanged ProductEventKind = "stock_changed"
	ProductUpdated      ProductEventKind = "updated"
	ProductDeleted      ProductEventKind = "deleted"
)

// ProductEvent reports a product row as it stood after a committed change.
type ProductEvent struct {
	Kind    ProductEventKind `json:"kind"`
	Product Product          `json:"product"`
	Change  int              `json:"change,omitempty"`
	Reason  string           `json:"reason,omitempty"`
}

// OrderEvent reports a committed order status change. From is empty for creation.
type OrderEvent struct {
	Kind      OrderKind `json:"kind"`
	OrderID   int       `json:"order_id"`
	ProductID int       `json:"product_id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	ActorID   int       `json:"actor_id"`
	At        time.Time `json:"at"`
}

// ProductObserver is notified after a transaction that changed a product commits.
// Implementations must not block; a failure is theirs to log.
type ProductObserver interface {
	ProductChanged(ctx context.Context, e ProductEvent)
}

// OrderObserver is notified after an order status change commits.
type OrderObserver interface {
	OrderStatusChanged(ctx context.Context, e OrderEvent)
}

// Observers fans committed events out to every registered observer.
// The zero value has no observers and is ready to use.
type Observers struct {
	Products []ProductObserver
	Orders   []OrderObserver
}

func (o *Observers) productChanged(ctx context.Context, events ...ProductEvent) {
	if o == nil {
		return
	}
	for _, e := range events {
		for _, obs := range o.Products {
			obs.ProductChanged(ctx, e)
		}
	}
}

func (o *Observers) orderChanged(ctx context.Context, e OrderEvent) {
	if o == nil {
		return
	}
	for _, obs := range o.Orders {
		obs.OrderStatusChanged(ctx, e)
	}
}
