// Package database holds the postgres plumbing shared by the stores:
// connection setup, a squirrel statement builder, transactions and the
// mapping of driver errors onto domain errors.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	werrors "github.com/wrale/wrale-proof/internal/wproofd/errors"
)

// Builder builds postgres statements with $n placeholders
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// serializationRetries is how often a transaction that lost a
// serialization conflict is run again
const serializationRetries = 3

// Pool sizes the connection pool
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// Open connects to postgres and verifies the connection
func Open(ctx context.Context, dsn string, pool Pool) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(pool.MaxIdle)
	db.SetConnMaxLifetime(pool.MaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return db, nil
}

// Tx is a transaction whose statements are built with Builder
type Tx struct {
	*sql.Tx
}

// Builder returns a statement builder that runs against the transaction
func (tx *Tx) Builder() sq.StatementBuilderType {
	return Builder.RunWith(tx.Tx)
}

// TxOptions selects isolation and access mode. A nil *TxOptions means the
// driver defaults.
type TxOptions struct {
	Isolation sql.IsolationLevel
	ReadOnly  bool
}

func (o *TxOptions) sql() *sql.TxOptions {
	if o == nil {
		return nil
	}
	return &sql.TxOptions{Isolation: o.Isolation, ReadOnly: o.ReadOnly}
}

// RunInTx runs fn in a transaction, committing when it returns nil. Work
// that loses a serialization conflict is retried from scratch, so fn must
// not have side effects outside the transaction.
func RunInTx(ctx context.Context, db *sql.DB, opts *TxOptions, fn func(*Tx) error) error {
	var err error
	for attempt := 0; attempt <= serializationRetries; attempt++ {
		err = runOnce(ctx, db, opts, fn)
		if !isSerializationFailure(err) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func runOnce(ctx context.Context, db *sql.DB, opts *TxOptions, fn func(*Tx) error) error {
	tx, err := db.BeginTx(ctx, opts.sql())
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	if err := fn(&Tx{Tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "40001"
}

// MapError converts driver errors to domain errors. Errors that already
// carry a domain code pass through unchanged.
func MapError(err error, op string) error {
	if err == nil || werrors.CodeOf(err) != "" {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return werrors.NewError("NOT_FOUND", "resource not found", op, werrors.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return werrors.NewError("CONFLICT", "resource already exists", op, werrors.ErrConflict)
		case "foreign_key_violation":
			return werrors.NewError("NOT_FOUND", "referenced resource not found", op, werrors.ErrNotFound)
		case "check_violation":
			return werrors.NewError("INVALID_INPUT", pqErr.Message, op, werrors.ErrInvalidInput)
		case "serialization_failure":
			return werrors.NewError("CONFLICT", "concurrent update, retry", op, werrors.ErrConflict)
		}
	}

	return werrors.NewError("INTERNAL", "internal database error", op, err)
}
