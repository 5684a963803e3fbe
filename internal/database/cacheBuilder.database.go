package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

type KeyType interface {
	string | uuid.UUID
}

// CacheBuilder assembles a single valkey command against one key
type CacheBuilder struct {
	cache      valkey.Client
	key        string
	value      string
	ttl        time.Duration
	ctx        context.Context
	ctxTimeout time.Duration
	err        error
}

func NewCacheBuilder[K KeyType](cache valkey.Client, key K) *CacheBuilder {
	cacheBuilder := CacheBuilder{
		cache:      cache,
		ttl:        1 * time.Hour,
		ctxTimeout: 5 * time.Second,
		ctx:        context.Background(),
	}

	switch k := any(key).(type) {
	case string:
		cacheBuilder.key = k
	case uuid.UUID:
		cacheBuilder.key = k.String()
	}

	if cache == nil {
		cacheBuilder.err = fmt.Errorf("cache client is nil")
	}

	return &cacheBuilder
}

func (cb *CacheBuilder) WithValue(value string) *CacheBuilder {
	cb.value = value
	return cb
}

func (cb *CacheBuilder) WithHash(hash string) *CacheBuilder {
	if hash != "" {
		cb.key = fmt.Sprintf("%s:%s", hash, cb.key)
	}

	return cb
}

func (cb *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	cb.ttl = ttl
	return cb
}

func (cb *CacheBuilder) WithContext(ctx context.Context) *CacheBuilder {
	cb.ctx = ctx
	return cb
}

func (cb *CacheBuilder) WithTimeout(timeout time.Duration) *CacheBuilder {
	cb.ctxTimeout = timeout
	return cb
}

// Key returns the fully qualified key, including any hash prefix
func (cb *CacheBuilder) Key() string {
	return cb.key
}

func (cb *CacheBuilder) validate(requireValue bool) error {
	if cb.err != nil {
		return cb.err
	}
	if cb.key == "" {
		return fmt.Errorf("key is required")
	}
	if requireValue && cb.value == "" {
		return fmt.Errorf("value is required")
	}
	if requireValue && cb.ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	return nil
}

func (cb *CacheBuilder) Set() error {
	if err := cb.validate(true); err != nil {
		return err
	}

	ctx, cancel := cb.createTimeoutContext()
	defer cancel()

	return cb.cache.Do(ctx, cb.cache.B().Set().Key(cb.key).Value(cb.value).Ex(cb.ttl).Build()).
		Error()
}

func (cb *CacheBuilder) Exists() (bool, error) {
	if err := cb.validate(false); err != nil {
		return false, err
	}

	ctx, cancel := cb.createTimeoutContext()
	defer cancel()

	count, err := cb.cache.Do(ctx, cb.cache.B().Exists().Key(cb.key).Build()).AsInt64()
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (cb *CacheBuilder) Delete() error {
	if err := cb.validate(false); err != nil {
		return err
	}

	ctx, cancel := cb.createTimeoutContext()
	defer cancel()

	return cb.cache.Do(ctx, cb.cache.B().Del().Key(cb.key).Build()).Error()
}

func (cb *CacheBuilder) createTimeoutContext() (context.Context, context.CancelFunc) {
	if deadline, ok := cb.ctx.Deadline(); ok {
		if time.Until(deadline) < cb.ctxTimeout {
			return context.WithCancel(cb.ctx)
		}
	}
	return context.WithTimeout(cb.ctx, cb.ctxTimeout)
}
