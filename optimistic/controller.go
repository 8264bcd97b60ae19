// Package optimistic implements the versioned-update primitive every mutable
// entity goes through. A single read-check-write transaction detects
// competing edits via the record version; transient persistence contention is
// retried with exponential backoff, a genuine version conflict never is.
package optimistic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/Rouva01/competition-system/repositories"
)

// Versioned is implemented by every record that carries a monotonic version.
type Versioned interface {
	CurrentVersion() int
}

// Accessor adapts one entity's repository to the controller. FindByID must
// wrap repositories.ErrNotFound for absent records, and UpdateIfVersion must
// wrap repositories.ErrVersionMismatch when the guard fails.
type Accessor[T Versioned] interface {
	FindByID(ctx context.Context, exec repositories.SQLExecutor, id int) (T, error)
	UpdateIfVersion(ctx context.Context, exec repositories.SQLExecutor, id, expectedVersion int, record T) error
}

// VersionConflictError reports a competing edit. Current carries the
// authoritative stored version so the caller can re-fetch and resubmit.
type VersionConflictError struct {
	ID       int
	Expected int
	Current  int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict on record %d: expected %d, current %d", e.ID, e.Expected, e.Current)
}

// ErrRetriesExhausted wraps the last transient failure once the retry budget
// is spent.
var ErrRetriesExhausted = errors.New("transient write failures exhausted retry budget")

// RetryOptions bound the internal retry loop for transient persistence
// failures. Zero values take the defaults.
type RetryOptions struct {
	MaxRetries int           // default 3
	BaseDelay  time.Duration // default 100ms
	MaxDelay   time.Duration // default 1s
}

func (o *RetryOptions) fillDefaults() {
	if o.MaxRetries == 0 {
		o.MaxRetries = 3
	}
	if o.BaseDelay == 0 {
		o.BaseDelay = 100 * time.Millisecond
	}
	if o.MaxDelay == 0 {
		o.MaxDelay = time.Second
	}
}

type Controller[T Versioned] struct {
	db       *sql.DB
	accessor Accessor[T]
	opts     RetryOptions

	// runTx and sleep are swapped out in tests.
	runTx func(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
	sleep func(ctx context.Context, d time.Duration) error
}

func NewController[T Versioned](db *sql.DB, accessor Accessor[T], opts RetryOptions) *Controller[T] {
	opts.fillDefaults()
	return &Controller[T]{
		db:       db,
		accessor: accessor,
		opts:     opts,
		runTx: func(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
			return repositories.WithTransaction(ctx, db, func(tx *sql.Tx) error {
				return fn(tx)
			})
		},
		sleep: sleepContext,
	}
}

// Result describes a successful versioned update.
type Result struct {
	OldVersion int
	NewVersion int
}

// Update applies mutate to the record identified by id, guarded by
// expectedVersion, inside one transaction. On success the stored version is
// exactly expectedVersion+1. A stored version that differs from the expected
// one surfaces as *VersionConflictError and is never retried; only transient
// persistence contention consumes the retry budget.
func (c *Controller[T]) Update(ctx context.Context, id, expectedVersion int, mutate func(record T) error) (*Result, error) {
	var lastErr error

	for attempt := 0; ; attempt++ {
		err := c.runTx(ctx, func(exec repositories.SQLExecutor) error {
			record, err := c.accessor.FindByID(ctx, exec, id)
			if err != nil {
				return err
			}
			if current := record.CurrentVersion(); current != expectedVersion {
				return &VersionConflictError{ID: id, Expected: expectedVersion, Current: current}
			}
			if err := mutate(record); err != nil {
				return err
			}
			return c.accessor.UpdateIfVersion(ctx, exec, id, expectedVersion, record)
		})
		if err == nil {
			return &Result{OldVersion: expectedVersion, NewVersion: expectedVersion + 1}, nil
		}

		// A guard failure inside our own transaction means a competing
		// writer committed between our read and write. Report it with
		// the authoritative version instead of retrying stale data.
		if errors.Is(err, repositories.ErrVersionMismatch) {
			current, verr := c.currentVersion(ctx, id)
			if verr != nil {
				return nil, verr
			}
			return nil, &VersionConflictError{ID: id, Expected: expectedVersion, Current: current}
		}

		var conflict *VersionConflictError
		if errors.As(err, &conflict) {
			return nil, conflict
		}
		if !repositories.IsTransient(err) {
			return nil, err
		}

		lastErr = err
		if attempt >= c.opts.MaxRetries {
			return nil, fmt.Errorf("%w: %v", ErrRetriesExhausted, lastErr)
		}

		delay := c.backoffDelay(attempt)
		log.Printf("transient write failure on record %d (attempt %d/%d), retrying in %v: %v",
			id, attempt+1, c.opts.MaxRetries, delay, err)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// backoffDelay doubles the base per attempt up to the cap, plus random jitter
// proportional to the base delay so competing retriers desynchronize.
func (c *Controller[T]) backoffDelay(attempt int) time.Duration {
	delay := c.opts.BaseDelay << uint(attempt)
	if delay > c.opts.MaxDelay {
		delay = c.opts.MaxDelay
	}
	jitter := time.Duration(rand.Float64() * float64(c.opts.BaseDelay))
	return delay + jitter
}

func (c *Controller[T]) currentVersion(ctx context.Context, id int) (int, error) {
	record, err := c.accessor.FindByID(ctx, c.db, id)
	if err != nil {
		return 0, err
	}
	return record.CurrentVersion(), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
