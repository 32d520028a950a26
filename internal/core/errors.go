package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

// ValidationError reports a malformed or out-of-range input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// OrderStatusError is returned for every disallowed lifecycle transition.
// Current and Target are always populated so callers can report both.
type OrderStatusError struct {
	Kind    OrderKind
	Current string
	Target  string
}

func (e *OrderStatusError) Error() string {
	return fmt.Sprintf("%s cannot transition from %q to %q", e.Kind, e.Current, e.Target)
}

// InsufficientStockError is returned when an adjustment would drive a product's
// quantity below zero. Requested is the signed delta that was refused.
type InsufficientStockError struct {
	ProductID int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// AuthorizationError is returned when the actor's role lacks a capability.
type AuthorizationError struct {
	Role   Role
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %q is not permitted to %s", e.Role, e.Action)
}

// BusinessRuleError is returned when a request is well-formed but violates a business rule,
// such as deleting a purchase order that has already been sent.
type BusinessRuleError struct {
	Message string
}

func (e *BusinessRuleError) Error() string { return e.Message }

// DuplicateError is returned when a unique business key is already taken.
type DuplicateError struct {
	Resource string
	Field    string
	Value    string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Resource, e.Field, e.Value)
}

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// notFoundOr maps pgx.ErrNoRows to a NotFoundError and wraps anything else.
func notFoundOr(err error, resource string, id any, action string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
