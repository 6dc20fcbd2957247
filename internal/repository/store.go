package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Querier is the subset of *sql.DB and *sql.Tx the repositories need, so the
// same repository code runs inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repositories groups the catalog store repositories bound to one Querier
type Repositories struct {
	Products  ProductRepository
	Variants  VariantRepository
	Customers CustomerRepository
	Orders    OrderRepository

	// tx is set when the repositories run inside WithinTx
	tx Querier
}

// Optional runs fn so that its failure does not poison the surrounding
// transaction. Inside WithinTx it is wrapped in a savepoint that is rolled
// back when fn fails; outside a transaction fn runs as is. fn's error is
// returned either way.
func (r Repositories) Optional(ctx context.Context, name string, fn func(repos Repositories) error) error {
	if r.tx == nil {
		return fn(r)
	}

	if _, err := r.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint %s: %w", name, err)
	}

	if err := fn(r); err != nil {
		if _, rbErr := r.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("%w (rollback to savepoint failed: %v)", err, rbErr)
		}
		return err
	}

	if _, err := r.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint %s: %w", name, err)
	}
	return nil
}

// Store hands out repositories and runs units of work
type Store interface {
	Repositories() Repositories
	// WithinTx runs fn with repositories bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}

type store struct {
	db *sql.DB
}

// NewStore creates a Store backed by a connection pool
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

func newRepositories(q Querier) Repositories {
	return Repositories{
		Products:  NewProductRepository(q),
		Variants:  NewVariantRepository(q),
		Customers: NewCustomerRepository(q),
		Orders:    NewOrderRepository(q),
	}
}

func (s *store) Repositories() Repositories {
	return newRepositories(s.db)
}

func (s *store) WithinTx(ctx context.Context, fn func(repos Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	repos := newRepositories(tx)
	repos.tx = tx

	if err := fn(repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
