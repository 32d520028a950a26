package app

import "inventory-service/internal/core"

// UserSession is returned by AuthenticateUser.
type UserSession struct {
	UserID   int       `json:"user_id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
	Role     core.Role `json:"role"`
}

// Actor returns the identity used to authorize the session's requests.
func (s *UserSession) Actor() core.Actor {
	return core.Actor{UserID: s.UserID, Role: s.Role}
}

// StockHistoryResult is returned by StockHistory.
type StockHistoryResult struct {
	Product core.Product          `json:"product"`
	Entries []core.StockChangeLog `json:"entries"`
}

// PurchaseOrderResult is returned by purchase order lifecycle operations.
type PurchaseOrderResult struct {
	Order        *core.PurchaseOrder `json:"order"`
	NextStatuses []string            `json:"next_statuses"`
}

// SalesOrderResult is returned by sales order lifecycle operations.
type SalesOrderResult struct {
	Order        *core.SalesOrder `json:"order"`
	NextStatuses []string         `json:"next_statuses"`
}

func purchaseOrderResult(po *core.PurchaseOrder) *PurchaseOrderResult {
	return &PurchaseOrderResult{Order: po, NextStatuses: core.NextStatuses(core.PurchaseOrderKind, po.Status)}
}

func salesOrderResult(so *core.SalesOrder) *SalesOrderResult {
	return &SalesOrderResult{Order: so, NextStatuses: core.NextStatuses(core.SalesOrderKind, so.Status)}
}
