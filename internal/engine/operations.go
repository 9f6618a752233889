package engine

import (
	"context"
	"errors"
	"fmt"

	"money_transfer/internal/account"
	"money_transfer/internal/domain"
	"money_transfer/internal/ledger"

	"github.com/sirupsen/logrus"
)

// Deposit credits amount to the owner's account
func (e *Engine) Deposit(ctx context.Context, owner domain.OwnerRef, amount int64) (*domain.Transaction, error) {
	return e.deposit(ctx, owner, amount, e.limits.MaxDeposit, "")
}

// AdminCredit is a deposit made by an administrator on the owner's behalf.
// It allows larger amounts and records the reason in the description.
func (e *Engine) AdminCredit(ctx context.Context, owner domain.OwnerRef, amount int64, reason string) (*domain.Transaction, error) {
	return e.deposit(ctx, owner, amount, e.limits.MaxAdminDeposit, fmt.Sprintf("Admin credit of %d: %s", amount, reason))
}

func (e *Engine) deposit(ctx context.Context, owner domain.OwnerRef, amount, max int64, description string) (*domain.Transaction, error) {
	if err := validateAmount(amount, 0, max); err != nil {
		return nil, err
	}
	var txn *domain.Transaction
	err := e.atomic(ctx, func(tx *ledger.Store) error {
		txn = nil
		acct, err := e.accounts.EligibleAccount(tx, owner)
		if err != nil {
			return err
		}
		txn = domain.NewDeposit(acct.ID, amount, description)
		if err := tx.InsertTransaction(txn); err != nil {
			return err
		}
		if err := e.accounts.Credit(tx, acct.ID, amount); err != nil {
			return err
		}
		return finalize(tx, txn)
	})
	if err != nil {
		e.recordFailure(ctx, txn, err)
		e.log.WithFields(logrus.Fields{
			"owner":  owner.String(),
			"amount": amount,
			"error":  err.Error(),
		}).Error("Deposit failed")
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"owner":     owner.String(),
		"amount":    amount,
		"reference": txn.Reference().String(),
	}).Info("Deposit transaction")
	return committed(txn), nil
}

// Withdraw takes amount out of the system. The whole gross amount leaves the
// owner's account; the platform fee account receives the fee and the owner
// gets the net.
func (e *Engine) Withdraw(ctx context.Context, owner domain.OwnerRef, amount int64) (*domain.Transaction, error) {
	if err := validateAmount(amount, e.limits.MinWithdrawal, 0); err != nil {
		return nil, err
	}
	var txn *domain.Transaction
	err := e.atomic(ctx, func(tx *ledger.Store) error {
		txn = nil
		acct, err := e.accounts.EligibleAccount(tx, owner)
		if err != nil {
			return err
		}
		if acct.ID == e.platform.AccountID {
			return domain.Ineligible(account.ReasonFeeAccount) // Fees are never charged to the platform itself
		}
		locked, err := tx.LockAccounts(acct.ID, e.platform.AccountID)
		if err != nil {
			return err
		}
		if !locked[acct.ID].IsActive {
			return domain.Ineligible(account.ReasonInactive) // Suspended while waiting for the lock
		}
		platform, err := tx.FindPlatform(e.platform.PlatformID)
		if err != nil {
			return fmt.Errorf("load platform: %w", err)
		}
		fee := domain.WithdrawalFee(amount, platform.FeeRate)
		if ok, reason := e.accounts.CheckSufficientFunds(locked[acct.ID], amount); !ok {
			return fmt.Errorf("%w: %s", domain.ErrInsufficientFunds, reason)
		}

		txn = domain.NewWithdrawal(acct.ID, amount, fee)
		if err := tx.InsertTransaction(txn); err != nil {
			return err
		}
		if err := e.accounts.Debit(tx, acct.ID, amount); err != nil {
			return err
		}
		if fee > 0 {
			feeTxn := domain.NewFee(acct.ID, e.platform.AccountID, fee, platform.FeeRate)
			if err := tx.InsertTransaction(feeTxn); err != nil {
				return err
			}
			if err := e.accounts.Credit(tx, e.platform.AccountID, fee); err != nil {
				return err
			}
		}
		return finalize(tx, txn)
	})
	if err != nil {
		e.recordFailure(ctx, txn, err)
		e.log.WithFields(logrus.Fields{
			"owner":  owner.String(),
			"amount": amount,
			"error":  err.Error(),
		}).Error("Withdrawal failed")
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"owner":     owner.String(),
		"amount":    amount,
		"fee":       txn.Fee(),
		"net":       txn.NetAmount(),
		"reference": txn.Reference().String(),
	}).Info("Withdrawal transaction")
	return committed(txn), nil
}

// Transfer moves amount from sender's account to receiver's account
func (e *Engine) Transfer(ctx context.Context, sender, receiver domain.OwnerRef, amount int64) (*domain.Transaction, error) {
	return e.transfer(ctx, sender, amount, func(*ledger.Store) (domain.OwnerRef, error) {
		return receiver, nil
	})
}

// TransferToEmail moves amount to the user registered under email
func (e *Engine) TransferToEmail(ctx context.Context, sender domain.OwnerRef, email string, amount int64) (*domain.Transaction, error) {
	return e.transfer(ctx, sender, amount, func(tx *ledger.Store) (domain.OwnerRef, error) {
		return e.accounts.ResolveUserByEmail(tx, email)
	})
}

func (e *Engine) transfer(ctx context.Context, sender domain.OwnerRef, amount int64, resolve func(*ledger.Store) (domain.OwnerRef, error)) (*domain.Transaction, error) {
	if err := validateAmount(amount, e.limits.MinTransfer, e.limits.MaxTransfer); err != nil {
		return nil, err
	}
	var (
		txn      *domain.Transaction
		receiver domain.OwnerRef
	)
	err := e.atomic(ctx, func(tx *ledger.Store) error {
		txn = nil
		from, err := e.accounts.EligibleAccount(tx, sender)
		if err != nil {
			return err
		}
		receiver, err = resolve(tx)
		if err != nil {
			return err
		}
		if receiver == sender {
			return domain.ErrSelfTransferNotAllowed
		}
		to, err := e.accounts.EligibleAccount(tx, receiver)
		if err != nil {
			return receiverError(receiver, err)
		}
		if to.ID == from.ID {
			return domain.ErrSelfTransferNotAllowed
		}

		locked, err := tx.LockAccounts(from.ID, to.ID)
		if err != nil {
			return err
		}
		if !locked[from.ID].IsActive {
			return domain.Ineligible(account.ReasonInactive)
		}
		if !locked[to.ID].IsActive {
			return domain.ReceiverIneligible(account.ReasonInactive)
		}
		if ok, reason := e.accounts.CheckSufficientFunds(locked[from.ID], amount); !ok {
			return fmt.Errorf("%w: %s", domain.ErrInsufficientFunds, reason)
		}

		txn = domain.NewTransfer(from.ID, to.ID, amount)
		if err := tx.InsertTransaction(txn); err != nil {
			return err
		}
		if err := e.accounts.Debit(tx, from.ID, amount); err != nil {
			return err
		}
		if err := e.accounts.Credit(tx, to.ID, amount); err != nil {
			return err
		}
		return finalize(tx, txn)
	})
	if err != nil {
		e.recordFailure(ctx, txn, err)
		e.log.WithFields(logrus.Fields{
			"from":   sender.String(),
			"to":     receiver.String(),
			"amount": amount,
			"error":  err.Error(),
		}).Error("Transfer failed")
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"from":      sender.String(),
		"to":        receiver.String(),
		"amount":    amount,
		"reference": txn.Reference().String(),
	}).Info("Transfer transaction")
	return committed(txn), nil
}

// receiverError turns an eligibility failure of the receiver into the
// receiver-specific error kinds.
func receiverError(receiver domain.OwnerRef, err error) error {
	var inel *domain.IneligibleError
	switch {
	case errors.As(err, &inel) && inel.Reason == account.ReasonNoUser:
		return fmt.Errorf("%w: %s", domain.ErrReceiverNotFound, receiver)
	case errors.As(err, &inel):
		return domain.ReceiverIneligible(inel.Reason)
	case errors.Is(err, domain.ErrUserNotFound):
		return fmt.Errorf("%w: %s", domain.ErrReceiverNotFound, receiver)
	}
	return err
}
