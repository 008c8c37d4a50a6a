// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"meetpoint/config"

	"github.com/go-redis/redis/v8"
)

// ReadinessCacheClient is the dedicated client for readiness state and
// idempotency keys.
var ReadinessCacheClient *redis.Client

// InitReadinessCache initializes the Redis client for readiness state
// (using DB from AppConfig).
func InitReadinessCache() {
	ReadinessCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReadinessDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := ReadinessCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Readiness): %v", err)
	}
}

// GetReadinessCacheClient returns the readiness cache client.
func GetReadinessCacheClient() *redis.Client {
	if ReadinessCacheClient == nil {
		InitReadinessCache()
	}
	return ReadinessCacheClient
}
