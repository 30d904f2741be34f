// Package db is the hand-written Postgres query layer. It exposes a Querier
// interface so handlers, the store, and the worker depend on an interface and
// tests can inject in-memory stubs.
//
// Queries here are single statements only. Multi-step atomic writes live in
// internal/store, which scopes a Queries value to a transaction via WithTx.
package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every query method works
// inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries is the concrete Querier backed by a live connection or transaction.
type Queries struct {
	db DBTX
}

// New returns a Queries bound to the given connection pool or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries scoped to tx. The receiver is unchanged.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}
