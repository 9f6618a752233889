package account

import (
	"context"
	"errors"
	"fmt"

	"money_transfer/internal/domain"
	"money_transfer/internal/ledger"

	"github.com/sirupsen/logrus"
)

// Activate enables the user's account once the user has been validated, and
// marks the user active and verified.
func (m *Manager) Activate(ctx context.Context, userID uint) error {
	verified := true
	err := m.setUserState(ctx, userID, domain.UserActive, &verified, true)
	if err != nil {
		m.log.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Account activation failed")
		return err
	}
	m.log.WithField("user_id", userID).Info("Account activated")
	return nil
}

// Suspend disables the user's account. Suspending a suspended account
// returns domain.ErrAlreadySuspended and changes nothing.
func (m *Manager) Suspend(ctx context.Context, userID uint, reason string) error {
	err := m.store.Atomic(ctx, func(tx *ledger.Store) error {
		u, err := tx.FindUser(userID)
		if err != nil {
			return err
		}
		a, err := tx.FindAccountByOwner(domain.UserOwner(userID))
		if err != nil {
			return err
		}
		if u.Status == domain.UserSuspended && !a.IsActive {
			return domain.ErrAlreadySuspended
		}
		if err := tx.SetAccountActive(a.ID, false); err != nil {
			return err
		}
		return tx.UpdateUserStatus(userID, domain.UserSuspended, nil)
	})
	if err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"user_id": userID, "reason": reason}).Warn("Account suspended")
	return nil
}

// Reactivate lifts a suspension
func (m *Manager) Reactivate(ctx context.Context, userID uint) error {
	if err := m.setUserState(ctx, userID, domain.UserActive, nil, true); err != nil {
		m.log.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Account reactivation failed")
		return err
	}
	m.log.WithField("user_id", userID).Info("Account reactivated")
	return nil
}

func (m *Manager) setUserState(ctx context.Context, userID uint, status domain.UserStatus, verified *bool, active bool) error {
	return m.store.Atomic(ctx, func(tx *ledger.Store) error {
		a, err := tx.FindAccountByOwner(domain.UserOwner(userID))
		if err != nil {
			return err
		}
		if err := tx.SetAccountActive(a.ID, active); err != nil {
			return err
		}
		return tx.UpdateUserStatus(userID, status, verified)
	})
}

// EnsurePlatform loads the platform and its fee account, creating both on
// first start. It is meant to run once at startup; the returned handle is
// handed to the transaction engine.
func (m *Manager) EnsurePlatform(ctx context.Context, name string, feeRate int) (domain.PlatformHandle, error) {
	if name == "" {
		name = domain.DefaultPlatformName
	}
	if !domain.ValidFeeRate(feeRate) {
		return domain.PlatformHandle{}, domain.ErrInvalidFeeRate
	}
	var handle domain.PlatformHandle
	err := m.store.Atomic(ctx, func(tx *ledger.Store) error {
		p, found, err := tx.FirstPlatform()
		if err != nil {
			return err
		}
		if !found {
			p = &domain.Platform{Name: name, FeeRate: feeRate}
			if err := tx.CreatePlatform(p); err != nil {
				return fmt.Errorf("create platform: %w", err)
			}
			m.log.WithFields(logrus.Fields{"name": p.Name, "fee_rate": p.FeeRate}).Info("Platform created")
		}
		a, err := tx.FindAccountByOwner(domain.PlatformOwner(p.ID))
		if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}
		if a == nil {
			a = &domain.Account{OwnerKind: domain.OwnerPlatform, OwnerID: p.ID, IsActive: true}
			if err := tx.CreateAccount(a); err != nil {
				return fmt.Errorf("create platform account: %w", err)
			}
			m.log.WithField("account_id", a.ID).Info("Platform fee account created")
		}
		handle = domain.PlatformHandle{PlatformID: p.ID, AccountID: a.ID}
		return nil
	})
	return handle, err
}

// Platform returns the platform row behind handle
func (m *Manager) Platform(ctx context.Context, handle domain.PlatformHandle) (*domain.Platform, error) {
	return m.store.WithContext(ctx).FindPlatform(handle.PlatformID)
}

// SetFeeRate changes the withdrawal fee rate. Withdrawals already in flight
// keep the rate they read.
func (m *Manager) SetFeeRate(ctx context.Context, handle domain.PlatformHandle, rate int) error {
	if err := m.store.WithContext(ctx).UpdateFeeRate(handle.PlatformID, rate); err != nil {
		return err
	}
	m.log.WithField("fee_rate", rate).Info("Platform fee rate updated")
	return nil
}
