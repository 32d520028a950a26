package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Page selects a window of a list query. Page numbers start at 1.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// normalize clamps p to sane bounds.
func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

func (p Page) offset() int {
	p = p.normalize()
	return (p.Page - 1) * p.Limit
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// actorRef returns the user id to store for audit columns; operator tooling has no user row.
func actorRef(a Actor) *int {
	if a.UserID <= 0 {
		return nil
	}
	id := a.UserID
	return &id
}

// readCommitted is the isolation level every lifecycle transaction runs at.
var readCommitted = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

func intDecimal(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
