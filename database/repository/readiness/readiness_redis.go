package readinessRepo

import (
	"context"
	"fmt"
	"time"

	"meetpoint/models"
	"meetpoint/utils"

	"github.com/go-redis/redis/v8"
)

// RedisReadinessStore implements Store on Redis. Each session's flags live
// in one hash and a flag write touches only its own party's fields, so
// concurrent SetFlag calls from the two parties (or from multiple service
// instances) can never overwrite each other.
type RedisReadinessStore struct {
	client *redis.Client
}

// NewRedisReadinessStore constructs the store over the given client.
func NewRedisReadinessStore(client *redis.Client) *RedisReadinessStore {
	return &RedisReadinessStore{client: client}
}

func key(sessionID string) string {
	return utils.ReadinessKeyPrefix + sessionID
}

// Hash field names within a session's readiness entry.
const (
	fieldRequesterReady   = "requesterReady"
	fieldProviderReady    = "providerReady"
	fieldRequesterReadyAt = "requesterReadyAt"
	fieldProviderReadyAt  = "providerReadyAt"
)

func (s *RedisReadinessStore) Get(ctx context.Context, sessionID string) (*models.ReadinessState, error) {
	fields, err := s.client.HGetAll(ctx, key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch readiness state: %w", err)
	}

	// A missing entry comes back as an empty map: the zero state.
	state := &models.ReadinessState{SessionID: sessionID}
	state.RequesterReady = fields[fieldRequesterReady] == "1"
	state.ProviderReady = fields[fieldProviderReady] == "1"
	if raw := fields[fieldRequesterReadyAt]; raw != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			state.RequesterReadyAt = &ts
		}
	}
	if raw := fields[fieldProviderReadyAt]; raw != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			state.ProviderReadyAt = &ts
		}
	}
	return state, nil
}

func (s *RedisReadinessStore) SetFlag(ctx context.Context, sessionID, role string, ready bool, ttl time.Duration) (*models.ReadinessState, error) {
	var readyField, atField string
	switch role {
	case models.RoleRequester:
		readyField, atField = fieldRequesterReady, fieldRequesterReadyAt
	case models.RoleProvider:
		readyField, atField = fieldProviderReady, fieldProviderReadyAt
	default:
		return nil, fmt.Errorf("unknown party role %q", role)
	}

	readyVal, atVal := "0", ""
	if ready {
		readyVal = "1"
		atVal = time.Now().UTC().Format(time.RFC3339Nano)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key(sessionID), readyField, readyVal, atField, atVal)
	pipe.Expire(ctx, key(sessionID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to store readiness flag: %w", err)
	}
	return s.Get(ctx, sessionID)
}

func (s *RedisReadinessStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete readiness state: %w", err)
	}
	return nil
}

func (s *RedisReadinessStore) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set idempotency key: %w", err)
	}
	return ok, nil
}
