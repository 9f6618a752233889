package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type cachedBalance struct {
	Balance int64 `json:"balance"`
}

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupTestRedis(t)

	require.NoError(t, SetCache(ctx, rdb, BalanceKey(7), cachedBalance{Balance: 1500}, time.Minute))
	assert.True(t, mr.Exists("wallet:user:7"))

	var got cachedBalance
	found, err := GetCache(ctx, rdb, BalanceKey(7), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(1500), got.Balance)

	found, err = GetCache(ctx, rdb, BalanceKey(8), &got)
	require.NoError(t, err)
	assert.False(t, found)

	mr.FastForward(2 * time.Minute)
	found, err = GetCache(ctx, rdb, BalanceKey(7), &got)
	require.NoError(t, err)
	assert.False(t, found, "entry expired")
}

func TestCache_NilClientDisablesCaching(t *testing.T) {
	ctx := context.Background()
	var got cachedBalance
	found, err := GetCache(ctx, nil, "k", &got)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetCache(ctx, nil, "k", got, time.Minute))
	assert.NoError(t, DeleteCache(ctx, nil, "k"))
	assert.NoError(t, InvalidateUser(ctx, nil, 1))
}

func TestInvalidateUser(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupTestRedis(t)

	for _, key := range []string{BalanceKey(1), HistoryKey(1, 10), HistoryKey(1, 50), BalanceKey(2), HistoryKey(2, 10)} {
		require.NoError(t, SetCache(ctx, rdb, key, cachedBalance{}, time.Minute))
	}
	// Prefix of another user's key must survive
	require.NoError(t, SetCache(ctx, rdb, HistoryKey(11, 10), cachedBalance{}, time.Minute))

	require.NoError(t, InvalidateUser(ctx, rdb, 1))

	assert.False(t, mr.Exists(BalanceKey(1)))
	assert.False(t, mr.Exists(HistoryKey(1, 10)))
	assert.False(t, mr.Exists(HistoryKey(1, 50)))
	assert.True(t, mr.Exists(BalanceKey(2)))
	assert.True(t, mr.Exists(HistoryKey(2, 10)))
	assert.True(t, mr.Exists(HistoryKey(11, 10)))

	require.NoError(t, DeleteCache(ctx, rdb, BalanceKey(2)))
	assert.False(t, mr.Exists(BalanceKey(2)))
}

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestJWT_Rejections(t *testing.T) {
	expired, err := GenerateJWT(42, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	anonymous, err := GenerateJWT(0, "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(anonymous, "secret")
	assert.Error(t, err)

	// No expiry claim
	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 42})
	signed, err := noExp.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseJWT(signed, "secret")
	assert.Error(t, err)

	// Wrong algorithm
	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID:           42,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err = hs512.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseJWT(signed, "secret")
	assert.Error(t, err)
}
