package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"
	"time"

	"enova_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

const (
	dataField           = "data"
	slidingExpiryField  = "sldexp"
	noSlidingExpiration = int64(-1)
)

// RedisStore keeps entries as hashes holding the payload and the sliding
// window in seconds, so reads can restart the window without the caller
// knowing it.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient builds a client from the configured REDIS_URL.
func NewRedisClient(cfg config.CacheConfig) (*redis.Client, error) {
	opt, err := ParseRedisURL(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// ParseRedisURL parses a redis:// or rediss:// URL, optionally relaxing TLS verification.
func ParseRedisURL(redisURL string, tlsInsecure bool) (*redis.Options, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		opt.TLSConfig = clone
	} else if tlsInsecure {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return opt, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis hgetall %q: %w", key, err)
	}

	data, ok := fields[dataField]
	if !ok {
		return nil, false, nil
	}

	if window := parseSlidingWindow(fields[slidingExpiryField]); window > 0 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return nil, false, fmt.Errorf("redis refresh %q: %w", key, err)
		}
	}

	return []byte(data), true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, opts EntryOptions) error {
	window := noSlidingExpiration
	if opts.SlidingExpiration > 0 {
		window = int64(opts.SlidingExpiration / time.Second)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, dataField, value, slidingExpiryField, window)
		if opts.SlidingExpiration > 0 {
			pipe.Expire(ctx, key, opts.SlidingExpiration)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Ping implements Store.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func parseSlidingWindow(raw string) time.Duration {
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

var _ Store = (*RedisStore)(nil)
