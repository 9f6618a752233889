// Package engine executes deposits, withdrawals and transfers as atomic,
// serialized units against the ledger store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"money_transfer/internal/account"
	"money_transfer/internal/domain"
	"money_transfer/internal/ledger"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultListLimit is used when ListTransactions is called without a limit
const DefaultListLimit = 50

// Limits bound the amount of a single operation. Zero disables a bound.
type Limits struct {
	MaxDeposit      int64
	MinWithdrawal   int64
	MinTransfer     int64
	MaxTransfer     int64
	MaxAdminDeposit int64
}

// DefaultLimits returns the platform's standard per-operation limits
func DefaultLimits() Limits {
	return Limits{
		MaxDeposit:      10_000_000,
		MinWithdrawal:   500,
		MinTransfer:     100,
		MaxTransfer:     5_000_000,
		MaxAdminDeposit: 50_000_000,
	}
}

// Engine is the only component that creates transactions and moves their
// status.
type Engine struct {
	accounts *account.Manager
	store    *ledger.Store
	platform domain.PlatformHandle
	limits   Limits

	maxRetries   int
	retryInitial time.Duration
	retryMax     time.Duration

	log *logrus.Entry
}

// Option configures an Engine
type Option func(*Engine)

// WithLimits replaces the default amount limits
func WithLimits(l Limits) Option {
	return func(e *Engine) { e.limits = l }
}

// WithMaxRetries bounds how often a unit is retried after a concurrency
// conflict before the conflict is returned to the caller.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

// WithRetryBackoff sets the first and the longest pause between retries
func WithRetryBackoff(initial, max time.Duration) Option {
	return func(e *Engine) {
		e.retryInitial = initial
		e.retryMax = max
	}
}

// WithLogger sets the logger entry
func WithLogger(l *logrus.Entry) Option {
	return func(e *Engine) { e.log = l }
}

// New returns an engine. platform must come from account.Manager.EnsurePlatform.
func New(accounts *account.Manager, platform domain.PlatformHandle, opts ...Option) *Engine {
	e := &Engine{
		accounts:     accounts,
		store:        accounts.Store(),
		platform:     platform,
		limits:       DefaultLimits(),
		maxRetries:   3,
		retryInitial: 20 * time.Millisecond,
		retryMax:     250 * time.Millisecond,
		log:          logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithField("component", "engine")
	return e
}

// Platform returns the handle of the platform fee account
func (e *Engine) Platform() domain.PlatformHandle {
	return e.platform
}

// atomic runs fn as one database transaction, retrying it with exponential
// backoff while it fails with domain.ErrConcurrencyConflict. The work is
// detached from ctx cancellation: once submitted it runs to an outcome.
func (e *Engine) atomic(ctx context.Context, fn func(tx *ledger.Store) error) error {
	ctx = context.WithoutCancel(ctx)

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = e.retryInitial
	eb.MaxInterval = e.retryMax
	eb.MaxElapsedTime = 0
	eb.Reset()

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := e.store.Atomic(ctx, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return backoff.Permanent(err)
		}
		e.log.WithFields(logrus.Fields{"attempt": attempt, "error": err.Error()}).Warn("Concurrency conflict, retrying")
		return err
	}, backoff.WithMaxRetries(eb, uint64(e.maxRetries)))
}

// finalize marks the stored record successful. A record that is no longer
// pending means the ledger is corrupt, so it aborts.
func finalize(tx *ledger.Store, t *domain.Transaction) error {
	err := tx.FinalizeTransaction(t.Reference(), domain.StatusSuccess)
	if errors.Is(err, domain.ErrInvariantViolation) {
		panic(err)
	}
	return err
}

// committed moves the in-memory record to SUCCESS after its unit committed
func committed(t *domain.Transaction) *domain.Transaction {
	if err := t.Finalize(domain.StatusSuccess); err != nil {
		panic(err)
	}
	return t
}

// recordFailure stores t as FAILED. The unit that produced it was rolled
// back, so no balance reflects it.
func (e *Engine) recordFailure(ctx context.Context, t *domain.Transaction, cause error) {
	if t == nil {
		return
	}
	if err := t.Finalize(domain.StatusFailed); err != nil {
		panic(err)
	}
	fields := logrus.Fields{
		"reference": t.Reference().String(),
		"type":      t.Type(),
		"amount":    t.Amount(),
		"cause":     cause.Error(),
	}
	if err := e.store.WithContext(context.WithoutCancel(ctx)).InsertTransaction(t); err != nil {
		fields["error"] = err.Error()
		e.log.WithFields(fields).Error("Failed to record failed transaction")
		return
	}
	e.log.WithFields(fields).Warn("Transaction recorded as failed")
}

func validateAmount(amount, min, max int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidAmount)
	}
	if min > 0 && amount < min {
		return fmt.Errorf("%w: minimum is %d", domain.ErrInvalidAmount, min)
	}
	if max > 0 && amount > max {
		return fmt.Errorf("%w: maximum is %d", domain.ErrInvalidAmount, max)
	}
	return nil
}

// GetBalance returns the owner's balance, 0 when the owner has no account
func (e *Engine) GetBalance(ctx context.Context, owner domain.OwnerRef) int64 {
	return e.accounts.GetBalance(ctx, owner)
}

// GetTransactionByReference looks up a single record
func (e *Engine) GetTransactionByReference(ctx context.Context, ref uuid.UUID) (*domain.Transaction, bool) {
	t, found, err := e.store.WithContext(ctx).FindTransaction(ref)
	if err != nil {
		e.log.WithFields(logrus.Fields{"reference": ref.String(), "error": err.Error()}).Error("Transaction lookup failed")
		return nil, false
	}
	return t, found
}

// ListTransactions returns the owner's records, newest first. An owner
// without an account has no records.
func (e *Engine) ListTransactions(ctx context.Context, owner domain.OwnerRef, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	a, found, err := e.accounts.FindAccount(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !found {
		return []*domain.Transaction{}, nil
	}
	return e.store.WithContext(ctx).ListTransactions(a.ID, limit)
}
