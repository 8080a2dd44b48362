package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orderdesk/backend/internal/domain/shared"
)

// RedisSendRecordStore implements shared.IdempotencyStore using Redis,
// recording which orders have already been sent to the CRM. Suitable for
// deployments where multiple instances serve sync requests for the same
// accounts.
type RedisSendRecordStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisSendRecordStore creates a new Redis-backed send record store
func NewRedisSendRecordStore(cfg RedisConfig) (*RedisSendRecordStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSendRecordStore{
		client:    client,
		keyPrefix: "crm:sent:",
	}, nil
}

// NewRedisSendRecordStoreWithClient creates a store with an existing Redis
// client. Useful for testing or when sharing a client across components.
func NewRedisSendRecordStoreWithClient(client *redis.Client, keyPrefix string) *RedisSendRecordStore {
	if keyPrefix == "" {
		keyPrefix = "crm:sent:"
	}
	return &RedisSendRecordStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkProcessed records a sent order with a TTL.
// Returns true if the key was newly marked, false if it already existed.
// Uses SETNX so concurrent batches cannot both claim the same order.
func (s *RedisSendRecordStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark order as sent: %w", err)
	}
	return result, nil
}

// IsProcessed checks whether an order was already sent within the TTL window
func (s *RedisSendRecordStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check sent order: %w", err)
	}
	return exists > 0, nil
}

// Close closes the Redis client
func (s *RedisSendRecordStore) Close() error {
	return s.client.Close()
}

// Ensure RedisSendRecordStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*RedisSendRecordStore)(nil)
