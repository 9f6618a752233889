package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithdrawal_NetAmount(t *testing.T) {
	txn := NewWithdrawal(7, 10000, 500)

	assert.Equal(t, TypeWithdrawal, txn.Type())
	assert.Equal(t, StatusPending, txn.Status())
	assert.Equal(t, int64(10000), txn.Amount())
	assert.Equal(t, int64(500), txn.Fee())
	assert.Equal(t, int64(9500), txn.NetAmount())
	_, hasReceiver := txn.ReceiverAccountID()
	assert.False(t, hasReceiver, "withdrawn funds leave the system")
}

func TestNewDeposit_DefaultDescription(t *testing.T) {
	txn := NewDeposit(3, 2500, "")
	assert.Equal(t, "Deposit of 2500", txn.Description())

	receiver, ok := txn.ReceiverAccountID()
	require.True(t, ok)
	assert.Equal(t, uint(3), receiver)
	assert.Equal(t, uint(3), txn.SenderAccountID())

	custom := NewDeposit(3, 2500, "Admin credit")
	assert.Equal(t, "Admin credit", custom.Description())
}

func TestNewFee_IsSuccessfulOnCreation(t *testing.T) {
	txn := NewFee(1, 2, 200, 2)
	assert.Equal(t, TypeFee, txn.Type())
	assert.Equal(t, StatusSuccess, txn.Status())
	assert.Equal(t, "Withdrawal fee (2%)", txn.Description())
}

func TestFinalize_OnlyOnceFromPending(t *testing.T) {
	txn := NewTransfer(1, 2, 5000)
	require.NoError(t, txn.Finalize(StatusSuccess))
	assert.Equal(t, StatusSuccess, txn.Status())

	err := txn.Finalize(StatusFailed)
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Equal(t, StatusSuccess, txn.Status(), "terminal status must not change")
}

func TestFinalize_RejectsPendingTarget(t *testing.T) {
	txn := NewTransfer(1, 2, 5000)
	assert.ErrorIs(t, txn.Finalize(StatusPending), ErrInvariantViolation)
	assert.Equal(t, StatusPending, txn.Status())
}

func TestReferencesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := NewDeposit(1, 100, "").Reference().String()
		assert.False(t, seen[ref])
		seen[ref] = true
	}
}

func TestView_CopiesReceiver(t *testing.T) {
	txn := NewTransfer(1, 2, 5000)
	v := txn.View()
	require.NotNil(t, v.ReceiverAccountID)
	*v.ReceiverAccountID = 99

	receiver, _ := txn.ReceiverAccountID()
	assert.Equal(t, uint(2), receiver)
}

func TestWithdrawalFee(t *testing.T) {
	cases := []struct {
		amount int64
		rate   int
		fee    int64
	}{
		{10000, 5, 500},
		{10000, 2, 200},
		{999, 2, 19},  // floor(19.98)
		{49, 2, 0},    // floor(0.98)
		{150, 33, 49}, // floor(49.5)
		{10000, 0, 0},
		{10000, 100, 10000},
		{1<<62 + 99, 100, 1<<62 + 99},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.fee, WithdrawalFee(tc.amount, tc.rate), "amount=%d rate=%d", tc.amount, tc.rate)
	}
}

func TestValidFeeRate(t *testing.T) {
	assert.True(t, ValidFeeRate(0))
	assert.True(t, ValidFeeRate(100))
	assert.False(t, ValidFeeRate(-1))
	assert.False(t, ValidFeeRate(101))
}

func TestIneligibleError(t *testing.T) {
	err := Ineligible("your account is suspended")
	assert.True(t, errors.Is(err, ErrIneligibleAccount))
	assert.False(t, errors.Is(err, ErrReceiverIneligible))

	var inel *IneligibleError
	require.True(t, errors.As(err, &inel))
	assert.Equal(t, "your account is suspended", inel.Reason)

	assert.ErrorIs(t, ReceiverIneligible("inactive"), ErrReceiverIneligible)
}

func TestOwnerRef(t *testing.T) {
	assert.True(t, UserOwner(4).Valid())
	assert.True(t, PlatformOwner(1).Valid())
	assert.False(t, UserOwner(0).Valid())
	assert.False(t, OwnerRef{Kind: "BANK", ID: 1}.Valid())
	assert.Equal(t, "USER:4", UserOwner(4).String())
}
