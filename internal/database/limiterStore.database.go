package database

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"
)

const limiterHash = "ratelimit"

// LimiterStore backs the fiber rate limiter with the general cache so request
// counts are shared between API instances. It satisfies fiber.Storage.
type LimiterStore struct {
	cache   CacheClient
	timeout time.Duration
}

func NewLimiterStore(cache CacheClient) *LimiterStore {
	return &LimiterStore{cache: cache, timeout: 2 * time.Second}
}

func (s *LimiterStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	val, err := s.cache.Do(ctx, s.cache.B().Get().Key(limiterKey(key)).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, nil
	}
	return val, err
}

func (s *LimiterStore) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	set := s.cache.B().Set().Key(limiterKey(key)).Value(valkey.BinaryString(val))
	if exp > 0 {
		return s.cache.Do(ctx, set.Ex(exp).Build()).Error()
	}
	return s.cache.Do(ctx, set.Build()).Error()
}

func (s *LimiterStore) Delete(key string) error {
	if key == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return s.cache.Do(ctx, s.cache.B().Del().Key(limiterKey(key)).Build()).Error()
}

// Reset flushes the whole general database; nothing else lives there.
func (s *LimiterStore) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return s.cache.Do(ctx, s.cache.B().Flushdb().Build()).Error()
}

// Close is a no-op, the client is owned by DB.
func (s *LimiterStore) Close() error {
	return nil
}

func limiterKey(key string) string {
	return limiterHash + ":" + key
}
