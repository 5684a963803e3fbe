package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pitwall/internal/database"
	"pitwall/pkg/logger"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	maxTransactionAttempts = 3
	retryBackoff           = 25 * time.Millisecond
)

// Transactor runs a unit of work atomically
type Transactor interface {
	Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error
}

// TransactionService runs a unit of work inside one database transaction.
// Rating writes lock the race row, so two writers touching the same pair of
// races can deadlock; those attempts are retried from the start.
type TransactionService struct {
	db      database.DB
	log     logger.Logger
	backoff time.Duration
}

func NewTransactionService(db database.DB) *TransactionService {
	return &TransactionService{
		db:      db,
		log:     logger.New("services").File("transaction.service"),
		backoff: retryBackoff,
	}
}

// Execute runs fn inside a transaction. A returned error or a panic rolls the
// whole unit back. fn may be called more than once and must only assign to
// captured variables.
func (ts *TransactionService) Execute(
	ctx context.Context,
	fn func(context.Context, *gorm.DB) error,
) error {
	log := ts.log.TraceFromContext(ctx).Function("Execute")

	var err error
	for attempt := 1; attempt <= maxTransactionAttempts; attempt++ {
		err = ts.attempt(ctx, log, fn)
		if err == nil || !isRetryable(err) || attempt == maxTransactionAttempts {
			return err
		}

		log.Warn("transaction conflict, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ts.backoff * time.Duration(attempt)):
		}
	}
	return err
}

func (ts *TransactionService) attempt(
	ctx context.Context,
	log logger.Logger,
	fn func(context.Context, *gorm.DB) error,
) (err error) {
	tx := ts.db.SQLWithContext(ctx).Begin()
	if tx.Error != nil {
		return log.Err("failed to begin transaction", tx.Error)
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}

		if rollbackErr := tx.Rollback().Error; rollbackErr != nil {
			log.Er("rollback after panic failed", rollbackErr, "panic", r)
			panic(fmt.Sprintf("transaction rollback failed: %v (panic: %v)", rollbackErr, r))
		}
		err = log.ErrMsg(fmt.Sprintf("panic during transaction: %v", r))
	}()

	if err = fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback().Error; rollbackErr != nil {
			log.Er("rollback failed", rollbackErr, "originalError", err)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return log.Err("failed to commit transaction", err)
	}

	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}
