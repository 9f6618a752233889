// Package testutil builds in-memory ledgers for tests.
package testutil

import (
	"context"
	"io"
	"testing"
	"time"

	"money_transfer/internal/account"
	"money_transfer/internal/db"
	"money_transfer/internal/domain"
	"money_transfer/internal/ledger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

// NewStore returns a migrated ledger store over a private in-memory sqlite
// database that lives as long as the test.
func NewStore(t *testing.T) *ledger.Store {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000"
	gdb, err := db.OpenWith(sqlite.Open(dsn), true)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return ledger.New(gdb, time.Second)
}

// QuietLogger discards everything logged through it
func QuietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// NewManager returns an account manager and its platform handle
func NewManager(t *testing.T, feeRate int) (*account.Manager, domain.PlatformHandle) {
	t.Helper()
	m := account.NewManager(NewStore(t), QuietLogger())
	handle, err := m.EnsurePlatform(context.Background(), domain.DefaultPlatformName, feeRate)
	require.NoError(t, err)
	return m, handle
}

// CreateUser registers a pending user with an inactive account
func CreateUser(t *testing.T, m *account.Manager, email string) (*domain.User, *domain.Account) {
	t.Helper()
	u := &domain.User{Email: email, Role: "user"}
	require.NoError(t, m.Store().CreateUser(u))
	a, err := m.CreateAccount(context.Background(), domain.UserOwner(u.ID))
	require.NoError(t, err)
	return u, a
}

// ActiveUser registers a validated user whose account holds balance
func ActiveUser(t *testing.T, m *account.Manager, email string, balance int64) (*domain.User, *domain.Account) {
	t.Helper()
	u, a := CreateUser(t, m, email)
	require.NoError(t, m.Activate(context.Background(), u.ID))
	if balance > 0 {
		require.NoError(t, m.Store().Credit(a.ID, balance))
	}
	a.IsActive = true
	a.Balance = balance
	return u, a
}
