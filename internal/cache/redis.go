package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckedInSuppliersKey caches the on-site supplier list between refreshes
const CheckedInSuppliersKey = "suppliers:checked-in"

var client *redis.Client

// Init initializes the Redis connection. The cache is optional: on failure
// the client stays nil and every helper degrades to a no-op.
func Init() error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client (nil when the cache is unavailable)
func GetClient() *redis.Client {
	return client
}

// hashCredentials creates a hash of email+password for the auth cache key
func hashCredentials(email, password string) string {
	h := sha256.New()
	h.Write([]byte(email + ":" + password))
	return "auth:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// GetCachedAuth checks if credentials are cached and valid
func GetCachedAuth(ctx context.Context, email, password string) (int64, bool) {
	if client == nil {
		return 0, false
	}
	userID, err := client.Get(ctx, hashCredentials(email, password)).Int64()
	if err != nil {
		return 0, false
	}
	return userID, true
}

// CacheAuth caches valid credentials for 15 minutes
func CacheAuth(ctx context.Context, email, password string, userID int64) {
	if client == nil {
		return
	}
	client.Set(ctx, hashCredentials(email, password), userID, 15*time.Minute)
}

// GetCachedCheckedInSuppliers returns the cached on-site supplier payload
func GetCachedCheckedInSuppliers(ctx context.Context) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, CheckedInSuppliersKey).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CacheCheckedInSuppliers caches the on-site supplier payload for 30 seconds
func CacheCheckedInSuppliers(ctx context.Context, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, CheckedInSuppliersKey, data, 30*time.Second)
}

// InvalidateCheckedInSuppliers drops the cached on-site supplier payload.
// Called after any visit status transition.
func InvalidateCheckedInSuppliers(ctx context.Context) {
	if client == nil {
		return
	}
	client.Del(ctx, CheckedInSuppliersKey)
}
