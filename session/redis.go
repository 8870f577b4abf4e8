package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ZaguanLabs/formlingo"
)

// DefaultKeyPrefix namespaces session keys in Redis.
const DefaultKeyPrefix = "formlingo:session:"

// RedisStore is a Redis-backed Store.
type RedisStore struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string        // Redis connection URL (e.g., "redis://localhost:6379")
	TTL       time.Duration // Snapshot lifetime (0 = no expiration)
	KeyPrefix string        // Prefix for all keys (default: "formlingo:session:")
}

// NewRedisStore creates a new Redis store and checks the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisStoreFromClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing Redis client.
func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}

	return &RedisStore{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// Load retrieves a snapshot from Redis.
func (s *RedisStore) Load(ctx context.Context, id string) (formlingo.State, bool, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return formlingo.State{}, false, nil
	}
	if err != nil {
		return formlingo.State{}, false, err
	}

	state, err := decode(data)
	if err != nil {
		return formlingo.State{}, false, err
	}
	return state, true, nil
}

// Save stores a snapshot in Redis.
func (s *RedisStore) Save(ctx context.Context, id string, state formlingo.State) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.keyPrefix+id, data, s.ttl).Err()
}

// Delete removes a snapshot from Redis.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.keyPrefix+id).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Verify RedisStore implements Store
var _ Store = (*RedisStore)(nil)
