package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/aulaflow/progress-service/internal/metrics"
	"go.uber.org/zap"
)

// Executor is the query surface shared by *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// WithTx returns a context carrying tx. Repositories called with it run inside tx.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction carried by ctx, if any
func TxFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok && tx != nil
}

// Conn returns the transaction carried by ctx, or db outside a transaction
func Conn(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}

// TxOptions configures a TxRunner
type TxOptions struct {
	Isolation   sql.IsolationLevel
	MaxAttempts int
	RetryDelay  time.Duration
}

// TxRunner runs a unit of work in a single transaction and re-runs the whole unit
// when the store aborts it with a retryable conflict.
type TxRunner struct {
	db     *sql.DB
	opts   TxOptions
	logger *zap.Logger
}

// NewTxRunner creates a new transaction runner
func NewTxRunner(db *sql.DB, opts TxOptions, logger *zap.Logger) *TxRunner {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &TxRunner{db: db, opts: opts, logger: logger}
}

// WithinTx runs fn inside a transaction. fn receives a context carrying the transaction
// and may be called more than once, so it must not have side effects outside the store.
// When ctx already carries a transaction fn joins it and no retry happens here.
func (r *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	var err error
	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}

		code, retryable := RetryCode(err)
		if !retryable || attempt == r.opts.MaxAttempts {
			return err
		}

		metrics.TxRetries.WithLabelValues(strconv.Itoa(int(code))).Inc()
		r.logger.Warn("transaction conflict, retrying",
			zap.Uint16("mysql_error", code),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * r.opts.RetryDelay):
		}
	}

	return err
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: r.opts.Isolation})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
