package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of go-redis client methods used by RedisStore.
// Keeping it as an interface enables mocking in tests.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetXX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisConfig holds the connection settings for RedisStore.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// RedisStore keeps sessions in Redis, one key per session with a TTL.
type RedisStore struct {
	cfg    RedisConfig
	client RedisClient
}

// OpenRedisStore connects to Redis and verifies the connection with PING.
func OpenRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	opts := &redis.Options{
		Addr: cfg.Address,
		DB:   cfg.DB,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session redis %s: ping failed: %w", cfg.Address, err)
	}
	return NewRedisStoreWithClient(cfg, client), nil
}

// NewRedisStoreWithClient creates a RedisStore backed by a pre-built client.
func NewRedisStoreWithClient(cfg RedisConfig, client RedisClient) *RedisStore {
	if cfg.Prefix == "" {
		cfg.Prefix = "console:session:"
	}
	return &RedisStore{cfg: cfg, client: client}
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session redis get: %w", err)
	}
	return decode(id, val)
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if !s.Stored() {
		if err := r.client.Set(ctx, r.key(s.ID), b, r.cfg.TTL).Err(); err != nil {
			return fmt.Errorf("session redis set: %w", err)
		}
		return nil
	}

	// SET ... XX: only replace a key that still exists.
	ok, err := r.client.SetXX(ctx, r.key(s.ID), b, r.cfg.TTL).Result()
	if err != nil {
		return fmt.Errorf("session redis set xx: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStore) Touch(ctx context.Context, id string) error {
	var (
		ok  bool
		err error
	)
	if r.cfg.TTL > 0 {
		ok, err = r.client.Expire(ctx, r.key(id), r.cfg.TTL).Result()
	} else {
		var n int64
		n, err = r.client.Exists(ctx, r.key(id)).Result()
		ok = n > 0
	}
	if err != nil {
		return fmt.Errorf("session redis expire: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("session redis del: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) key(id string) string {
	return r.cfg.Prefix + id
}
