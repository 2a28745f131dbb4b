package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTTL is how long a result stays readable after it is written.
const DefaultTTL = 5 * time.Minute

// ResultCache maps correlation tokens to JSON-encoded results.
type ResultCache struct {
	store     Store
	ttl       time.Duration
	namespace string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewResultCache wraps store; a non-positive ttl falls back to DefaultTTL.
func NewResultCache(store Store, ttl time.Duration) *ResultCache {
	if store == nil {
		panic("cache store cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResultCache{
		store:     store,
		ttl:       ttl,
		namespace: DefaultNamespace,
		now:       time.Now,
		logger:    log.With().Str("component", "result-cache").Logger(),
	}
}

// TTL returns the standard time-to-live applied by Put.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// SetClock replaces the time source used to stamp entries (for testing).
func (c *ResultCache) SetClock(now func() time.Time) {
	c.now = now
}

// Put stores value under token with the standard TTL, overwriting any
// previous value.
func (c *ResultCache) Put(ctx context.Context, token string, value any) error {
	return c.PutWithTTL(ctx, token, value, c.ttl)
}

// PutWithTTL stores value under token for ttl.
func (c *ResultCache) PutWithTTL(ctx context.Context, token string, value any, ttl time.Duration) error {
	if token == "" {
		return fmt.Errorf("correlation id cannot be empty")
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	data, err := json.Marshal(value)
	if err != nil {
		CacheErrors.WithLabelValues("encode").Inc()
		return fmt.Errorf("encode result: %w", err)
	}

	key := c.key(token)
	if err := c.store.Set(ctx, key, NewEntry(data, c.now(), ttl)); err != nil {
		return fmt.Errorf("store result %s: %w", key, err)
	}

	c.logger.Debug().
		Str("correlation_id", token).
		Dur("ttl", ttl).
		Int("bytes", len(data)).
		Msg("Cached result")

	return nil
}

// Get decodes the value stored under token into dst.
// Returns ErrCacheMiss if nothing readable is stored.
func (c *ResultCache) Get(ctx context.Context, token string, dst any) error {
	entry, err := c.store.Get(ctx, c.key(token))
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			c.logger.Debug().Str("correlation_id", token).Msg("Cache miss")
		}
		return err
	}

	if err := json.Unmarshal(entry.Data, dst); err != nil {
		CacheErrors.WithLabelValues("decode").Inc()
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	c.logger.Debug().Str("correlation_id", token).Msg("Cache hit")
	return nil
}

func (c *ResultCache) key(token string) ResultKey {
	return ResultKey{Namespace: c.namespace, CorrelationID: token}
}
