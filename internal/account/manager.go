// Package account manages the lifecycle of virtual accounts and answers the
// balance and eligibility questions the transaction engine asks.
package account

import (
	"context"
	"errors"
	"fmt"

	"money_transfer/internal/domain"
	"money_transfer/internal/ledger"

	"github.com/sirupsen/logrus"
)

// Eligibility refusal reasons
const (
	ReasonSuspended  = "your account is suspended, contact an administrator"
	ReasonPending    = "your account is awaiting validation"
	ReasonUnverified = "please verify your account before making transactions"
	ReasonNoAccount  = "no virtual account found"
	ReasonInactive   = "your virtual account is inactive"
	ReasonNoUser     = "no registered user found"
	ReasonFeeAccount = "the platform fee account cannot withdraw"
)

// Manager owns Account.Balance and Account.IsActive writes
type Manager struct {
	store *ledger.Store
	log   *logrus.Entry
}

// NewManager returns a manager over store
func NewManager(store *ledger.Store, log *logrus.Entry) *Manager {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{store: store, log: log.WithField("component", "account")}
}

// Store returns the ledger store the manager writes to
func (m *Manager) Store() *ledger.Store {
	return m.store
}

// CreateAccount opens the single account of owner. User accounts start
// inactive until the user is validated; the platform account starts active.
func (m *Manager) CreateAccount(ctx context.Context, owner domain.OwnerRef) (*domain.Account, error) {
	if !owner.Valid() {
		return nil, fmt.Errorf("invalid owner %s", owner)
	}
	var created *domain.Account
	err := m.store.Atomic(ctx, func(tx *ledger.Store) error {
		if _, err := tx.FindAccountByOwner(owner); err == nil {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateAccount, owner)
		} else if !errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}
		if owner.Kind == domain.OwnerUser {
			if _, err := tx.FindUser(owner.ID); err != nil {
				return err
			}
		}
		a := &domain.Account{
			OwnerKind: owner.Kind,
			OwnerID:   owner.ID,
			Balance:   0,
			IsActive:  owner.Kind == domain.OwnerPlatform,
		}
		if err := tx.CreateAccount(a); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			m.log.WithField("owner", owner.String()).Warn("Attempt to create an existing account")
		}
		return nil, err
	}
	m.log.WithFields(logrus.Fields{
		"owner":      owner.String(),
		"account_id": created.ID,
	}).Info("Account created")
	return created, nil
}

// FindAccount returns the owner's account; found is false when the owner
// has none.
func (m *Manager) FindAccount(ctx context.Context, owner domain.OwnerRef) (acct *domain.Account, found bool, err error) {
	a, err := m.store.WithContext(ctx).FindAccountByOwner(owner)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// GetBalance returns the owner's balance, 0 when there is no account. It
// never fails; read errors are logged.
func (m *Manager) GetBalance(ctx context.Context, owner domain.OwnerRef) int64 {
	a, found, err := m.FindAccount(ctx, owner)
	if err != nil {
		m.log.WithFields(logrus.Fields{"owner": owner.String(), "error": err.Error()}).Error("Balance lookup failed")
		return 0
	}
	if !found {
		return 0
	}
	return a.Balance
}

// CanTransact is the composite eligibility check: a user must be active,
// verified and hold an active account; the platform only needs an active
// account. The reason explains a refusal.
func (m *Manager) CanTransact(ctx context.Context, owner domain.OwnerRef) (bool, string) {
	_, reason, err := m.eligibleAccount(m.store.WithContext(ctx), owner)
	if err != nil {
		m.log.WithFields(logrus.Fields{"owner": owner.String(), "error": err.Error()}).Error("Eligibility check failed")
		return false, "eligibility could not be checked"
	}
	return reason == "", reason
}

// EligibleAccount runs the eligibility check with tx and returns the owner's
// account. A refusal comes back as a domain.IneligibleError.
func (m *Manager) EligibleAccount(tx *ledger.Store, owner domain.OwnerRef) (*domain.Account, error) {
	a, reason, err := m.eligibleAccount(tx, owner)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return nil, domain.Ineligible(reason)
	}
	return a, nil
}

func (m *Manager) eligibleAccount(tx *ledger.Store, owner domain.OwnerRef) (*domain.Account, string, error) {
	if owner.Kind == domain.OwnerUser {
		u, err := tx.FindUser(owner.ID)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ReasonNoUser, nil
		}
		if err != nil {
			return nil, "", err
		}
		if reason := userReason(u); reason != "" {
			return nil, reason, nil
		}
	}
	a, err := tx.FindAccountByOwner(owner)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, ReasonNoAccount, nil
	}
	if err != nil {
		return nil, "", err
	}
	if !a.IsActive {
		return nil, ReasonInactive, nil
	}
	return a, "", nil
}

func userReason(u *domain.User) string {
	switch {
	case u.Status == domain.UserSuspended:
		return ReasonSuspended
	case u.Status == domain.UserPending:
		return ReasonPending
	case !u.IsVerified:
		return ReasonUnverified
	}
	return ""
}

// CheckSufficientFunds reports whether a covers amount
func (m *Manager) CheckSufficientFunds(a *domain.Account, amount int64) (bool, string) {
	if a.Balance < amount {
		return false, fmt.Sprintf("insufficient balance, current balance: %d", a.Balance)
	}
	return true, ""
}

// ResolveUserByEmail finds the account owner registered under email
func (m *Manager) ResolveUserByEmail(tx *ledger.Store, email string) (domain.OwnerRef, error) {
	u, err := tx.FindUserByEmail(email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.OwnerRef{}, fmt.Errorf("%w: %s", domain.ErrReceiverNotFound, email)
	}
	if err != nil {
		return domain.OwnerRef{}, err
	}
	return domain.UserOwner(u.ID), nil
}

// Credit raises the account balance by amount within tx
func (m *Manager) Credit(tx *ledger.Store, accountID uint, amount int64) error {
	return tx.Credit(accountID, amount)
}

// Debit lowers the account balance by amount within tx. It fails with
// domain.ErrInsufficientFunds rather than leave a negative balance.
func (m *Manager) Debit(tx *ledger.Store, accountID uint, amount int64) error {
	return tx.Debit(accountID, amount)
}
