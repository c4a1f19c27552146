package store

import (
	"context"
	"database/sql"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// TransactionManager runs a function inside a database transaction.
// The transaction commits when f returns nil and rolls back otherwise.
type TransactionManager interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
}

// Transactor is the default TransactionManager over a bun database
type Transactor struct {
	db *bun.DB
}

var _ repository.TransactionManager = (*Transactor)(nil)

func NewTransactor(db *bun.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return t.db.RunInTx(ctx, opts, f)
	}
}

// SupportsRowLocks reports whether SELECT ... FOR UPDATE is available
func SupportsRowLocks(db bun.IDB) bool {
	return db.Dialect().Name() == dialect.PG
}

// IsNotFound reports whether err means a query matched no rows
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return goerrors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err)
}

// IsUniqueViolation reports whether err was raised by a unique constraint
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if goerrors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsCheckViolation reports whether err was raised by a CHECK constraint
func IsCheckViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if goerrors.As(err, &pgErr) {
		return pgErr.Code == "23514"
	}

	return strings.Contains(err.Error(), "CHECK constraint failed")
}
