package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDeliveryLeadTimeDays applies when a supplier is created without a lead time.
const DefaultDeliveryLeadTimeDays = 7

// Supplier is a vendor purchase orders are placed with.
type Supplier struct {
	ID                   int              `json:"id"`
	Name                 string           `json:"name"`
	ContactPerson        *string          `json:"contact_person,omitempty"`
	Email                *string          `json:"email,omitempty"`
	Phone                *string          `json:"phone,omitempty"`
	Address              *string          `json:"address,omitempty"`
	DeliveryLeadTimeDays int              `json:"delivery_lead_time_days"`
	IsActive             bool             `json:"is_active"`
	Rating               *decimal.Decimal `json:"rating,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// SupplierInput holds the fields required to create a supplier.
type SupplierInput struct {
	Name                 string
	ContactPerson        string
	Email                string
	Phone                string
	Address              string
	DeliveryLeadTimeDays int
	Rating               *decimal.Decimal
}

// SupplierUpdate carries the mutable supplier fields; nil means unchanged.
type SupplierUpdate struct {
	Name                 *string
	ContactPerson        *string
	Email                *string
	Phone                *string
	Address              *string
	DeliveryLeadTimeDays *int
	IsActive             *bool
	Rating               *decimal.Decimal
}

// SupplierService provides supplier master data operations.
type SupplierService interface {
	CreateSupplier(ctx context.Context, actor Actor, in SupplierInput) (*Supplier, error)
	GetSupplier(ctx context.Context, id int) (*Supplier, error)
	// ListSuppliers returns suppliers ordered by name; activeOnly hides deactivated rows.
	ListSuppliers(ctx context.Context, activeOnly bool) ([]Supplier, error)
	UpdateSupplier(ctx context.Context, actor Actor, id int, upd SupplierUpdate) (*Supplier, error)
	// DeleteSupplier removes a supplier with no purchase orders.
	DeleteSupplier(ctx context.Context, actor Actor, id int) error
}
