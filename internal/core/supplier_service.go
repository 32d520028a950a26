package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const supplierColumns = `id, name, contact_person, email, phone, address,
	delivery_lead_time_days, is_active, rating, created_at, updated_at`

type supplierService struct {
	pool *pgxpool.Pool
}

// NewSupplierService constructs a SupplierService backed by PostgreSQL.
func NewSupplierService(pool *pgxpool.Pool) SupplierService {
	return &supplierService{pool: pool}
}

func scanSupplier(row interface{ Scan(...any) error }, v *Supplier) error {
	return row.Scan(
		&v.ID, &v.Name, &v.ContactPerson, &v.Email, &v.Phone, &v.Address,
		&v.DeliveryLeadTimeDays, &v.IsActive, &v.Rating, &v.CreatedAt, &v.UpdatedAt,
	)
}

// toPtr converts an empty string to nil so optional columns store NULL.
func toPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func validateRating(r *decimal.Decimal) error {
	if r == nil {
		return nil
	}
	if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(5)) {
		return &ValidationError{Field: "rating", Message: "must be between 0 and 5"}
	}
	return nil
}

func (s *supplierService) CreateSupplier(ctx context.Context, actor Actor, in SupplierInput) (*Supplier, error) {
	if err := actor.Require(Role.CanManageSuppliers, "create suppliers"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	if in.DeliveryLeadTimeDays < 0 {
		return nil, &ValidationError{Field: "delivery_lead_time_days", Message: "must not be negative"}
	}
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}
	leadTime := in.DeliveryLeadTimeDays
	if leadTime == 0 {
		leadTime = DefaultDeliveryLeadTimeDays
	}

	v := &Supplier{}
	err := scanSupplier(s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name, contact_person, email, phone, address, delivery_lead_time_days, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+supplierColumns,
		strings.TrimSpace(in.Name), toPtr(in.ContactPerson), toPtr(in.Email),
		toPtr(in.Phone), toPtr(in.Address), leadTime, in.Rating,
	), v)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &DuplicateError{Resource: "supplier", Field: "name", Value: in.Name}
		}
		return nil, fmt.Errorf("create supplier %q: %w", in.Name, err)
	}
	return v, nil
}

func (s *supplierService) GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	v := &Supplier{}
	err := scanSupplier(s.pool.QueryRow(ctx, "SELECT "+supplierColumns+" FROM suppliers WHERE id = $1", id), v)
	if err != nil {
		return nil, notFoundOr(err, "supplier", id, "get supplier")
	}
	return v, nil
}

func (s *supplierService) ListSuppliers(ctx context.Context, activeOnly bool) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE ($1 = false OR is_active = true)
		ORDER BY name`,
		activeOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("get suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := []Supplier{}
	for rows.Next() {
		var v Supplier
		if err := scanSupplier(rows, &v); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, v)
	}
	return suppliers, rows.Err()
}

func (s *supplierService) UpdateSupplier(ctx context.Context, actor Actor, id int, upd SupplierUpdate) (*Supplier, error) {
	if err := actor.Require(Role.CanManageSuppliers, "update suppliers"); err != nil {
		return nil, err
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if upd.DeliveryLeadTimeDays != nil && *upd.DeliveryLeadTimeDays < 0 {
		return nil, &ValidationError{Field: "delivery_lead_time_days", Message: "must not be negative"}
	}
	if err := validateRating(upd.Rating); err != nil {
		return nil, err
	}

	v := &Supplier{}
	err := scanSupplier(s.pool.QueryRow(ctx, `
		UPDATE suppliers SET
			name                    = COALESCE($2, name),
			contact_person          = COALESCE($3, contact_person),
			email                   = COALESCE($4, email),
			phone                   = COALESCE($5, phone),
			address                 = COALESCE($6, address),
			delivery_lead_time_days = COALESCE($7, delivery_lead_time_days),
			is_active               = COALESCE($8, is_active),
			rating                  = COALESCE($9, rating),
			updated_at              = NOW()
		WHERE id = $1
		RETURNING `+supplierColumns,
		id, upd.Name, upd.ContactPerson, upd.Email, upd.Phone, upd.Address,
		upd.DeliveryLeadTimeDays, upd.IsActive, upd.Rating,
	), v)
	if err != nil {
		if isUniqueViolation(err) && upd.Name != nil {
			return nil, &DuplicateError{Resource: "supplier", Field: "name", Value: *upd.Name}
		}
		return nil, notFoundOr(err, "supplier", id, "update supplier")
	}
	return v, nil
}

func (s *supplierService) DeleteSupplier(ctx context.Context, actor Actor, id int) error {
	if err := actor.Require(Role.CanDeleteRecords, "delete suppliers"); err != nil {
		return err
	}

	tx, err := s.pool.BeginTx(ctx, readCommitted)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked int
	if err := tx.QueryRow(ctx, "SELECT id FROM suppliers WHERE id = $1 FOR UPDATE", id).Scan(&locked); err != nil {
		return notFoundOr(err, "supplier", id, "lock supplier")
	}

	var orders int
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM purchase_orders WHERE supplier_id = $1", id).Scan(&orders); err != nil {
		return fmt.Errorf("failed to count supplier purchase orders: %w", err)
	}
	if orders > 0 {
		return &BusinessRuleError{Message: fmt.Sprintf("supplier %d has %d purchase orders; deactivate it instead", id, orders)}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM suppliers WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete supplier %d: %w", id, err)
	}
	return tx.Commit(ctx)
}
