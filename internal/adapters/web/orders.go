package web

import (
	"net/http"

	"inventory-service/internal/app"
	"inventory-service/internal/core"

	"github.com/shopspring/decimal"
)

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ── Purchase orders ───────────────────────────────────────────────────────────

// listPurchaseOrders handles GET /api/purchase-orders.
func (h *Handler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	f := core.PurchaseOrderFilter{
		Status:     q.string("status"),
		SupplierID: q.int("supplier_id"),
		ProductID:  q.int("product_id"),
		Page:       q.page(),
	}
	if q.err != nil {
		writeServiceError(w, r, q.err)
		return
	}
	orders, err := h.svc.ListPurchaseOrders(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, orders)
}

// getPurchaseOrder handles GET /api/purchase-orders/{id}.
func (h *Handler) getPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

type createPurchaseOrderRequest struct {
	ProductID  int             `json:"product_id" validate:"required_without=SKU"`
	SKU        string          `json:"sku" validate:"required_without=ProductID"`
	SupplierID int             `json:"supplier_id" validate:"required"`
	Quantity   int             `json:"quantity" validate:"required,gt=0"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Notes      string          `json:"notes" validate:"max=1000"`
}

// createPurchaseOrder handles POST /api/purchase-orders. New orders start in Draft.
func (h *Handler) createPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.svc.CreatePurchaseOrder(r.Context(), actorFrom(r), app.CreatePurchaseOrderRequest{
		ProductID:  req.ProductID,
		SKU:        req.SKU,
		SupplierID: req.SupplierID,
		Quantity:   req.Quantity,
		UnitCost:   req.UnitCost,
		Notes:      req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

// advancePurchaseOrder handles POST /api/purchase-orders/{id}/status.
func (h *Handler) advancePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.svc.AdvancePurchaseOrder(r.Context(), actorFrom(r), id, req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// deletePurchaseOrder handles DELETE /api/purchase-orders/{id}. Only Draft orders can be deleted.
func (h *Handler) deletePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePurchaseOrder(r.Context(), actorFrom(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Sales orders ──────────────────────────────────────────────────────────────

// listSalesOrders handles GET /api/sales-orders. Customers only see their own orders.
func (h *Handler) listSalesOrders(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	f := core.SalesOrderFilter{
		Status:     q.string("status"),
		CustomerID: q.int("customer_id"),
		ProductID:  q.int("product_id"),
		Page:       q.page(),
	}
	if q.err != nil {
		writeServiceError(w, r, q.err)
		return
	}
	orders, err := h.svc.ListSalesOrders(r.Context(), actorFrom(r), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, orders)
}

// getSalesOrder handles GET /api/sales-orders/{id}.
func (h *Handler) getSalesOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.GetSalesOrder(r.Context(), actorFrom(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

type createSalesOrderRequest struct {
	CustomerID int             `json:"customer_id" validate:"gte=0"`
	ProductID  int             `json:"product_id" validate:"required_without=SKU"`
	SKU        string          `json:"sku" validate:"required_without=ProductID"`
	Quantity   int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Notes      string          `json:"notes" validate:"max=1000"`
}

// createSalesOrder handles POST /api/sales-orders. The order is confirmed and stock
// deducted in the same request.
func (h *Handler) createSalesOrder(w http.ResponseWriter, r *http.Request) {
	var req createSalesOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.svc.CreateSalesOrder(r.Context(), actorFrom(r), app.CreateSalesOrderRequest{
		CustomerID: req.CustomerID,
		ProductID:  req.ProductID,
		SKU:        req.SKU,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		Notes:      req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

// advanceSalesOrder handles POST /api/sales-orders/{id}/status.
func (h *Handler) advanceSalesOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	res, err := h.svc.AdvanceSalesOrder(r.Context(), actorFrom(r), id, req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// cancelSalesOrder handles POST /api/sales-orders/{id}/cancel.
func (h *Handler) cancelSalesOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.CancelSalesOrder(r.Context(), actorFrom(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}
