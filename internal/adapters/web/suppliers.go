package web

import (
	"net/http"

	"inventory-service/internal/core"

	"github.com/shopspring/decimal"
)

// listSuppliers handles GET /api/suppliers. ?active=true hides deactivated suppliers.
func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	activeOnly := q.bool("active")
	if q.err != nil {
		writeServiceError(w, r, q.err)
		return
	}
	suppliers, err := h.svc.ListSuppliers(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, suppliers)
}

// getSupplier handles GET /api/suppliers/{id}.
func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s, err := h.svc.GetSupplier(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, s)
}

type createSupplierRequest struct {
	Name                 string           `json:"name" validate:"required,max=255"`
	ContactPerson        string           `json:"contact_person" validate:"max=255"`
	Email                string           `json:"email" validate:"omitempty,email"`
	Phone                string           `json:"phone" validate:"max=50"`
	Address              string           `json:"address" validate:"max=1000"`
	DeliveryLeadTimeDays int              `json:"delivery_lead_time_days" validate:"gte=0"`
	Rating               *decimal.Decimal `json:"rating"`
}

// createSupplier handles POST /api/suppliers.
func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req createSupplierRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	s, err := h.svc.CreateSupplier(r.Context(), actorFrom(r), core.SupplierInput{
		Name:                 req.Name,
		ContactPerson:        req.ContactPerson,
		Email:                req.Email,
		Phone:                req.Phone,
		Address:              req.Address,
		DeliveryLeadTimeDays: req.DeliveryLeadTimeDays,
		Rating:               req.Rating,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, s)
}

type updateSupplierRequest struct {
	Name                 *string          `json:"name" validate:"omitempty,min=1,max=255"`
	ContactPerson        *string          `json:"contact_person" validate:"omitempty,max=255"`
	Email                *string          `json:"email" validate:"omitempty,email"`
	Phone                *string          `json:"phone" validate:"omitempty,max=50"`
	Address              *string          `json:"address" validate:"omitempty,max=1000"`
	DeliveryLeadTimeDays *int             `json:"delivery_lead_time_days" validate:"omitempty,gte=0"`
	IsActive             *bool            `json:"is_active"`
	Rating               *decimal.Decimal `json:"rating"`
}

// updateSupplier handles PATCH /api/suppliers/{id}.
func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateSupplierRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	s, err := h.svc.UpdateSupplier(r.Context(), actorFrom(r), id, core.SupplierUpdate{
		Name:                 req.Name,
		ContactPerson:        req.ContactPerson,
		Email:                req.Email,
		Phone:                req.Phone,
		Address:              req.Address,
		DeliveryLeadTimeDays: req.DeliveryLeadTimeDays,
		IsActive:             req.IsActive,
		Rating:               req.Rating,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, s)
}

// deleteSupplier handles DELETE /api/suppliers/{id}.
func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteSupplier(r.Context(), actorFrom(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
