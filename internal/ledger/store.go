// Package ledger persists account balances and the append-only transaction
// log. It exposes no way to delete a transaction or to change one beyond its
// single status transition.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"money_transfer/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the gorm-backed ledger. Inside Atomic the callback receives a
// Store bound to the open database transaction.
type Store struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// New returns a store over db. Lock waits inside Atomic are bounded by
// lockTimeout when the dialect supports it.
func New(db *gorm.DB, lockTimeout time.Duration) *Store {
	return &Store{db: db, lockTimeout: lockTimeout}
}

// DB returns the underlying handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithContext returns a store whose queries run with ctx
func (s *Store) WithContext(ctx context.Context) *Store {
	return &Store{db: s.db.WithContext(ctx), lockTimeout: s.lockTimeout}
}

// Atomic runs fn in a single database transaction. Everything fn writes is
// committed together or rolled back together. Lock timeouts, deadlocks and
// serialization failures come back wrapped in domain.ErrConcurrencyConflict.
func (s *Store) Atomic(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyLockTimeout(tx, s.lockTimeout); err != nil {
			return err
		}
		return fn(&Store{db: tx, lockTimeout: s.lockTimeout})
	})
	if err != nil && IsRetryable(err) && !errors.Is(err, domain.ErrConcurrencyConflict) {
		return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
	}
	return err
}

func applyLockTimeout(tx *gorm.DB, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	switch tx.Dialector.Name() {
	case "postgres":
		return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", d.Milliseconds())).Error
	case "mysql":
		secs := int64(d / time.Second) // InnoDB counts whole seconds
		if secs < 1 {
			secs = 1
		}
		return tx.Exec(fmt.Sprintf("SET SESSION innodb_lock_wait_timeout = %d", secs)).Error
	default:
		// sqlite serializes writers; the wait is bounded by _busy_timeout
		return nil
	}
}

// CreateAccount inserts a new account. A second account for the same owner
// fails with domain.ErrDuplicateAccount.
func (s *Store) CreateAccount(a *domain.Account) error {
	if err := s.db.Create(a).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateAccount, a.Owner())
		}
		return err
	}
	return nil
}

// FindAccountByOwner returns the owner's account or domain.ErrAccountNotFound
func (s *Store) FindAccountByOwner(owner domain.OwnerRef) (*domain.Account, error) {
	var a domain.Account
	err := s.db.Where("owner_kind = ? AND owner_id = ?", owner.Kind, owner.ID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindAccount returns the account with the given id
func (s *Store) FindAccount(id uint) (*domain.Account, error) {
	var a domain.Account
	err := s.db.First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// LockAccounts reads the given accounts with SELECT ... FOR UPDATE, always
// in ascending id order so that two units touching the same pair of
// accounts can never wait on each other in a cycle.
func (s *Store) LockAccounts(ids ...uint) (map[uint]*domain.Account, error) {
	ordered := slices.Clone(ids)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	locked := make(map[uint]*domain.Account, len(ordered))
	for _, id := range ordered {
		var a domain.Account
		err := s.db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).First(&a, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrAccountNotFound, id)
		}
		if err != nil {
			return nil, err
		}
		locked[id] = &a
	}
	return locked, nil
}

// Credit adds amount to the account balance relative to its stored value
func (s *Store) Credit(accountID uint, amount int64) error {
	res := s.db.Model(&domain.Account{}).
		Where("id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrAccountNotFound, accountID)
	}
	return nil
}

// Debit subtracts amount from the account balance. The update only matches
// while the balance covers amount, so it can never drive a balance negative.
func (s *Store) Debit(accountID uint, amount int64) error {
	res := s.db.Model(&domain.Account{}).
		Where("id = ? AND balance >= ?", accountID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: account %d cannot cover %d", domain.ErrInsufficientFunds, accountID, amount)
	}
	return nil
}

// SetAccountActive flips the account's active flag
func (s *Store) SetAccountActive(accountID uint, active bool) error {
	return s.db.Model(&domain.Account{}).Where("id = ?", accountID).Update("is_active", active).Error
}

// Balance reads the stored balance of an account
func (s *Store) Balance(accountID uint) (int64, error) {
	var balance int64
	err := s.db.Model(&domain.Account{}).Where("id = ?", accountID).Select("balance").Scan(&balance).Error
	return balance, err
}
