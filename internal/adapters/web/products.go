package web

import (
	"net/http"

	"inventory-service/internal/app"
	"inventory-service/internal/core"

	"github.com/shopspring/decimal"
)

const defaultHistoryLimit = 50

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	f := core.ProductFilter{
		Search:   q.string("search"),
		MinPrice: q.decimal("min_price"),
		MaxPrice: q.decimal("max_price"),
		LowStock: q.bool("low_stock"),
		SortBy:   q.string("sort_by"),
		Page:     q.page(),
	}
	if q.err != nil {
		writeServiceError(w, r, q.err)
		return
	}
	list, err := h.svc.ListProducts(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, list)
}

// getProduct handles GET /api/products/{id}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

type createProductRequest struct {
	SKU          string          `json:"sku" validate:"required,max=64"`
	Name         string          `json:"name" validate:"required,max=255"`
	Description  string          `json:"description" validate:"max=2000"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity" validate:"gte=0"`
	MinThreshold *int            `json:"min_threshold" validate:"omitempty,gte=0"`
	ProductGroup string          `json:"product_group" validate:"max=100"`
}

// createProduct handles POST /api/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), actorFrom(r), app.CreateProductRequest{
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Quantity:     req.Quantity,
		MinThreshold: req.MinThreshold,
		ProductGroup: req.ProductGroup,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, p)
}

// updateProductRequest decodes sku and quantity only to reject them.
type updateProductRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description  *string          `json:"description" validate:"omitempty,max=2000"`
	Price        *decimal.Decimal `json:"price"`
	MinThreshold *int             `json:"min_threshold" validate:"omitempty,gte=0"`
	ProductGroup *string          `json:"product_group" validate:"omitempty,max=100"`
	SKU          *string          `json:"sku"`
	Quantity     *int             `json:"quantity"`
}

// updateProduct handles PATCH /api/products/{id}.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Quantity != nil {
		writeServiceError(w, r, &core.ValidationError{Field: "quantity", Message: "is changed only through stock adjustments"})
		return
	}
	if req.SKU != nil {
		writeServiceError(w, r, &core.ValidationError{Field: "sku", Message: "cannot be changed"})
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), actorFrom(r), id, core.ProductUpdate{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		MinThreshold: req.MinThreshold,
		ProductGroup: req.ProductGroup,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// deleteProduct handles DELETE /api/products/{id}.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), actorFrom(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type adjustStockRequest struct {
	Change int    `json:"change" validate:"required"`
	Reason string `json:"reason" validate:"required,max=255"`
}

// adjustStock handles POST /api/products/{id}/adjust-stock.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req adjustStockRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := h.svc.AdjustStock(r.Context(), actorFrom(r), app.AdjustStockRequest{
		ProductID: id,
		Change:    req.Change,
		Reason:    req.Reason,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// stockHistory handles GET /api/products/{id}/stock-history.
func (h *Handler) stockHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q := newQueryParser(r)
	limit := q.int("limit")
	if q.err != nil {
		writeServiceError(w, r, q.err)
		return
	}
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	res, err := h.svc.StockHistory(r.Context(), actorFrom(r), id, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}
