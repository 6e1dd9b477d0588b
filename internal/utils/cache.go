package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"fmt"
	"time" // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// GetCache retrieves a value from Redis and unmarshals it into dest.
// A nil client is a cache miss, so callers and tests can run without Redis.
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
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

// DeleteCache deletes keys from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}

// DashboardKey is the cache key of a user's dashboard summary.
func DashboardKey(userID uint) string {
	return fmt.Sprintf("dashboard:user:%d", userID)
}

// ReportKey is the cache key of one user's monthly report.
func ReportKey(userID uint, year int, month int) string {
	return fmt.Sprintf("report:user:%d:%04d-%02d", userID, year, month)
}

// InvalidateUser drops the cached dashboard and the report of the month a
// write touched. Called on every transaction/income/budget/category mutation.
func InvalidateUser(ctx context.Context, rdb *redis.Client, userID uint, at time.Time) {
	_ = DeleteCache(ctx, rdb,
		DashboardKey(userID),
		ReportKey(userID, at.Year(), int(at.Month())),
	)
}
