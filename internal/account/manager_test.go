package account_test

import (
	"context"
	"errors"
	"testing"

	"money_transfer/internal/account"
	"money_transfer/internal/domain"
	"money_transfer/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount_StartsInactiveWithZeroBalance(t *testing.T) {
	m, _ := testutil.NewManager(t, 2)
	_, a := testutil.CreateUser(t, m, "alice@example.com")

	assert.False(t, a.IsActive)
	assert.Equal(t, int64(0), a.Balance)
	assert.Equal(t, domain.OwnerUser, a.OwnerKind)
}

func TestCreateAccount_OnePerOwner(t *testing.T) {
	ctx := context.Background()
	m, _ := testutil.NewManager(t, 2)
	u, _ := testutil.CreateUser(t, m, "alice@example.com")

	_, err := m.CreateAccount(ctx, domain.UserOwner(u.ID))
	assert.ErrorIs(t, err, domain.ErrDuplicateAccount)

	_, err = m.CreateAccount(ctx, domain.UserOwner(999))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = m.CreateAccount(ctx, domain.OwnerRef{})
	assert.Error(t, err)
}

func TestGetBalance(t *testing.T) {
	ctx := context.Background()
	m, _ := testutil.NewManager(t, 2)
	u, _ := testutil.ActiveUser(t, m, "alice@example.com", 1500)

	assert.Equal(t, int64(1500), m.GetBalance(ctx, domain.UserOwner(u.ID)))
	assert.Equal(t, int64(0), m.GetBalance(ctx, domain.UserOwner(999)), "no account means zero")
}

func TestCanTransact_Reasons(t *testing.T) {
	ctx := context.Background()
	m, handle := testutil.NewManager(t, 2)

	pending, _ := testutil.CreateUser(t, m, "pending@example.com")
	ok, reason := m.CanTransact(ctx, domain.UserOwner(pending.ID))
	assert.False(t, ok)
	assert.Equal(t, account.ReasonPending, reason)

	active, _ := testutil.ActiveUser(t, m, "active@example.com", 0)
	ok, reason = m.CanTransact(ctx, domain.UserOwner(active.ID))
	assert.True(t, ok)
	assert.Empty(t, reason)

	require.NoError(t, m.Suspend(ctx, active.ID, "fraud review"))
	ok, reason = m.CanTransact(ctx, domain.UserOwner(active.ID))
	assert.False(t, ok)
	assert.Equal(t, account.ReasonSuspended, reason)

	// Active but never verified
	unverified := &domain.User{Email: "unverified@example.com", Status: domain.UserActive, Role: "user"}
	require.NoError(t, m.Store().CreateUser(unverified))
	ok, reason = m.CanTransact(ctx, domain.UserOwner(unverified.ID))
	assert.False(t, ok)
	assert.Equal(t, account.ReasonUnverified, reason)

	// Validated user who never got an account
	verified := true
	noAccount := &domain.User{Email: "noaccount@example.com", Role: "user"}
	require.NoError(t, m.Store().CreateUser(noAccount))
	require.NoError(t, m.Store().UpdateUserStatus(noAccount.ID, domain.UserActive, &verified))
	ok, reason = m.CanTransact(ctx, domain.UserOwner(noAccount.ID))
	assert.False(t, ok)
	assert.Equal(t, account.ReasonNoAccount, reason)

	ok, reason = m.CanTransact(ctx, domain.UserOwner(999))
	assert.False(t, ok)
	assert.Equal(t, account.ReasonNoUser, reason)

	ok, _ = m.CanTransact(ctx, domain.PlatformOwner(handle.PlatformID))
	assert.True(t, ok, "the platform account is active from the start")
}

func TestEligibleAccount_ReturnsIneligibleError(t *testing.T) {
	m, _ := testutil.NewManager(t, 2)
	u, _ := testutil.CreateUser(t, m, "pending@example.com")

	_, err := m.EligibleAccount(m.Store(), domain.UserOwner(u.ID))
	assert.ErrorIs(t, err, domain.ErrIneligibleAccount)
	var inel *domain.IneligibleError
	require.True(t, errors.As(err, &inel))
	assert.Equal(t, account.ReasonPending, inel.Reason)

	_, err = m.EligibleAccount(m.Store(), domain.UserOwner(999))
	assert.ErrorIs(t, err, domain.ErrIneligibleAccount)
	assert.NotErrorIs(t, err, domain.ErrUserNotFound)
	require.True(t, errors.As(err, &inel))
	assert.Equal(t, account.ReasonNoUser, inel.Reason)
}

func TestSuspendAndReactivate(t *testing.T) {
	ctx := context.Background()
	m, _ := testutil.NewManager(t, 2)
	u, a := testutil.ActiveUser(t, m, "alice@example.com", 0)

	require.NoError(t, m.Suspend(ctx, u.ID, "chargeback"))
	assert.ErrorIs(t, m.Suspend(ctx, u.ID, "again"), domain.ErrAlreadySuspended)

	stored, err := m.Store().FindAccount(a.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	require.NoError(t, m.Reactivate(ctx, u.ID))
	ok, _ := m.CanTransact(ctx, domain.UserOwner(u.ID))
	assert.True(t, ok)

	assert.ErrorIs(t, m.Activate(ctx, 999), domain.ErrAccountNotFound)
}

func TestCheckSufficientFunds(t *testing.T) {
	m, _ := testutil.NewManager(t, 2)
	a := &domain.Account{Balance: 1000}

	ok, _ := m.CheckSufficientFunds(a, 1000)
	assert.True(t, ok)
	ok, reason := m.CheckSufficientFunds(a, 1001)
	assert.False(t, ok)
	assert.Contains(t, reason, "1000")
}

func TestResolveUserByEmail(t *testing.T) {
	m, _ := testutil.NewManager(t, 2)
	u, _ := testutil.CreateUser(t, m, "bob@example.com")

	owner, err := m.ResolveUserByEmail(m.Store(), "Bob@Example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.UserOwner(u.ID), owner)

	_, err = m.ResolveUserByEmail(m.Store(), "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrReceiverNotFound)
}

func TestEnsurePlatform_Idempotent(t *testing.T) {
	ctx := context.Background()
	m, first := testutil.NewManager(t, 2)

	second, err := m.EnsurePlatform(ctx, "ignored on second start", 7)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	p, err := m.Platform(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPlatformName, p.Name)
	assert.Equal(t, 2, p.FeeRate, "existing configuration wins")

	_, err = m.EnsurePlatform(ctx, "", 101)
	assert.ErrorIs(t, err, domain.ErrInvalidFeeRate)
}

func TestSetFeeRate(t *testing.T) {
	ctx := context.Background()
	m, handle := testutil.NewManager(t, 2)

	require.NoError(t, m.SetFeeRate(ctx, handle, 5))
	assert.ErrorIs(t, m.SetFeeRate(ctx, handle, 101), domain.ErrInvalidFeeRate)

	p, err := m.Platform(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, 5, p.FeeRate)
}
