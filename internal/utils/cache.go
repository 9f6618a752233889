package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Key formatting
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// BalanceKey is the cache key of a user's balance response
func BalanceKey(userID uint) string {
	return "wallet:user:" + strconv.FormatUint(uint64(userID), 10)
}

// HistoryKey is the cache key of one page of a user's transaction history
func HistoryKey(userID uint, limit int) string {
	return historyPrefix(userID) + ":limit:" + strconv.Itoa(limit)
}

func historyPrefix(userID uint) string {
	return "txhistory:user:" + strconv.FormatUint(uint64(userID), 10)
}

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil // Caching disabled
	}
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes a key from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, key).Err() // Delete key from Redis
}

// InvalidateUser drops the cached balance and every cached history page of
// the given users.
func InvalidateUser(ctx context.Context, rdb *redis.Client, userIDs ...uint) error {
	if rdb == nil {
		return nil
	}
	for _, id := range userIDs {
		keys := []string{BalanceKey(id)}
		iter := rdb.Scan(ctx, 0, historyPrefix(id)+":*", 100).Iterator() // Every history page
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if err := rdb.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return nil
}
