package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx used by repositories. It is satisfied by
// *pgxpool.Pool, pgx.Tx, and the Session wrapper, so the same repository
// code runs inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Session is an open transaction handle. It must be terminated with exactly
// one Commit or Rollback before control returns to the caller.
type Session interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxStarter opens transactional sessions against the store.
type TxStarter interface {
	Begin(ctx context.Context, opts TxOptions) (Session, error)
}

// TxOptions mirrors the isolation/durability knobs bulk mutations care
// about. The zero value maps to serializable read-write.
type TxOptions struct {
	IsoLevel   pgx.TxIsoLevel
	AccessMode pgx.TxAccessMode
}

// ErrTransactionsUnsupported signals a structural incapability of the
// deployment rather than a transient failure. Callers fall back to
// non-transactional execution instead of surfacing it.
var ErrTransactionsUnsupported = errors.New("store does not support transactions")

// Postgres error codes used for classification.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeFeatureNotSupported  = "0A000"
)

// IsTransientTxError reports whether err is a store-signaled conflict that
// is safe to retry with a fresh transaction.
func IsTransientTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}
	return false
}

type pgxStarter struct {
	pool *pgxpool.Pool
}

// NewTxStarter adapts a pgx pool to the TxStarter interface.
func NewTxStarter(pool *pgxpool.Pool) TxStarter {
	return &pgxStarter{pool: pool}
}

func (s *pgxStarter) Begin(ctx context.Context, opts TxOptions) (Session, error) {
	iso := opts.IsoLevel
	if iso == "" {
		iso = pgx.Serializable
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: iso, AccessMode: opts.AccessMode})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeFeatureNotSupported {
			return nil, ErrTransactionsUnsupported
		}
		return nil, err
	}
	return pgxSession{tx: tx}, nil
}

type pgxSession struct {
	tx pgx.Tx
}

func (s pgxSession) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.tx.Exec(ctx, sql, args...)
}

func (s pgxSession) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return s.tx.Query(ctx, sql, args...)
}

func (s pgxSession) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.tx.QueryRow(ctx, sql, args...)
}

func (s pgxSession) Commit(ctx context.Context) error {
	return s.tx.Commit(ctx)
}

func (s pgxSession) Rollback(ctx context.Context) error {
	return s.tx.Rollback(ctx)
}
