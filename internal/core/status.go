package core

// OrderKind distinguishes the two order lifecycles.
type OrderKind string

const (
	PurchaseOrderKind OrderKind = "purchase_order"
	SalesOrderKind    OrderKind = "sales_order"
)

// Purchase order statuses.
//
//	Draft → Sent → Received → Closed
const (
	POStatusDraft    = "Draft"
	POStatusSent     = "Sent"
	POStatusReceived = "Received"
	POStatusClosed   = "Closed"
)

// Sales order statuses.
//
//	Pending → Confirmed → Shipped → Delivered
//	Pending | Confirmed → Cancelled
const (
	SOStatusPending   = "Pending"
	SOStatusConfirmed = "Confirmed"
	SOStatusShipped   = "Shipped"
	SOStatusDelivered = "Delivered"
	SOStatusCancelled = "Cancelled"
)

var purchaseOrderTransitions = map[string][]string{
	POStatusDraft:    {POStatusSent},
	POStatusSent:     {POStatusReceived},
	POStatusReceived: {POStatusClosed},
	POStatusClosed:   nil,
}

var salesOrderTransitions = map[string][]string{
	SOStatusPending:   {SOStatusConfirmed, SOStatusCancelled},
	SOStatusConfirmed: {SOStatusShipped, SOStatusCancelled},
	SOStatusShipped:   {SOStatusDelivered},
	SOStatusDelivered: nil,
	SOStatusCancelled: nil,
}

func transitionsFor(kind OrderKind) map[string][]string {
	switch kind {
	case PurchaseOrderKind:
		return purchaseOrderTransitions
	case SalesOrderKind:
		return salesOrderTransitions
	}
	return nil
}

// CanTransition reports whether current → target is a legal edge for kind.
// Same-status requests and unknown statuses are never legal.
func CanTransition(kind OrderKind, current, target string) bool {
	for _, next := range transitionsFor(kind)[current] {
		if next == target {
			return true
		}
	}
	return false
}

// CheckTransition returns an *OrderStatusError when current → target is not a legal edge.
func CheckTransition(kind OrderKind, current, target string) error {
	if !CanTransition(kind, current, target) {
		return &OrderStatusError{Kind: kind, Current: current, Target: target}
	}
	return nil
}

// NextStatuses lists the statuses reachable from current in one step.
func NextStatuses(kind OrderKind, current string) []string {
	next := transitionsFor(kind)[current]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether status has no outgoing edges. Unknown statuses are not terminal.
func IsTerminal(kind OrderKind, status string) bool {
	next, ok := transitionsFor(kind)[status]
	return ok && len(next) == 0
}

// IsKnownStatus reports whether status belongs to kind's state machine.
func IsKnownStatus(kind OrderKind, status string) bool {
	_, ok := transitionsFor(kind)[status]
	return ok
}

// Statuses lists every status of kind in lifecycle order.
func Statuses(kind OrderKind) []string {
	switch kind {
	case PurchaseOrderKind:
		return []string{POStatusDraft, POStatusSent, POStatusReceived, POStatusClosed}
	case SalesOrderKind:
		return []string{SOStatusPending, SOStatusConfirmed, SOStatusShipped, SOStatusDelivered, SOStatusCancelled}
	}
	return nil
}
