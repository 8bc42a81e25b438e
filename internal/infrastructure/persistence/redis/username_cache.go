package redis

import (
	"context"
	"errors"
	"time"

	"github.com/mindgym/mindgym-hub/internal/domain/user"
	"github.com/mindgym/mindgym-hub/pkg/circuitbreaker"
	"github.com/mindgym/mindgym-hub/pkg/logger"
)

// StringStore is the subset of Cache the username cache needs.
type StringStore interface {
	GetString(ctx context.Context, key string) (string, error)
	MGet(ctx context.Context, keys ...string) (map[string]string, error)
	MSet(ctx context.Context, pairs map[string]string, ttl time.Duration) error
}

// CachedIdentityLookup resolves usernames through Redis before hitting the
// backing lookup. A cache failure is logged and treated as a miss, so Redis
// being down never fails a request the database can still serve. After
// repeated failures the breaker opens and Redis is skipped entirely.
type CachedIdentityLookup struct {
	cache   StringStore
	next    user.IdentityLookup
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
	logger  *logger.Logger
}

// NewCachedIdentityLookup wraps next with a read-through cache.
func NewCachedIdentityLookup(cache StringStore, next user.IdentityLookup, ttl time.Duration, log *logger.Logger) *CachedIdentityLookup {
	if ttl <= 0 {
		ttl = TTLUsername
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.Component("username_cache"))

	return &CachedIdentityLookup{
		cache: cache,
		next:  next,
		ttl:   ttl,
		breaker: circuitbreaker.New("redis",
			circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
				log.Warn("cache circuit state changed",
					logger.String("breaker", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
			}),
		),
		logger: log,
	}
}

// Username resolves one display name.
func (c *CachedIdentityLookup) Username(ctx context.Context, id string) (string, error) {
	var name string
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		name, err = c.cache.GetString(ctx, UsernameKey(id))
		if errors.Is(err, ErrCacheMiss) {
			return nil
		}
		return err
	})
	if err == nil && name != "" {
		return name, nil
	}
	if err != nil {
		c.readFailed(err, logger.UserID(id))
	}

	name, err = c.next.Username(ctx, id)
	if err != nil {
		return "", err
	}

	c.store(ctx, map[string]string{id: name})
	return name, nil
}

// Usernames resolves display names in bulk. Only cache misses reach next.
func (c *CachedIdentityLookup) Usernames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = UsernameKey(id)
	}

	var cached map[string]string
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		cached, err = c.cache.MGet(ctx, keys...)
		return err
	})
	if err != nil {
		c.readFailed(err, logger.Int("ids", len(ids)))
		cached = nil
	}

	var missing []string
	for i, id := range ids {
		if name, ok := cached[keys[i]]; ok && name != "" {
			out[id] = name
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return out, nil
	}

	resolved, err := c.next.Usernames(ctx, missing)
	if err != nil {
		return nil, err
	}

	for id, name := range resolved {
		out[id] = name
	}
	c.store(ctx, resolved)

	return out, nil
}

func (c *CachedIdentityLookup) store(ctx context.Context, names map[string]string) {
	if len(names) == 0 {
		return
	}
	pairs := make(map[string]string, len(names))
	for id, name := range names {
		pairs[UsernameKey(id)] = name
	}
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.cache.MSet(ctx, pairs, c.ttl)
	})
	if err != nil && !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		c.logger.Warn("username cache write failed", logger.Int("ids", len(names)), logger.Err(err))
	}
}

// readFailed logs a cache read error. An open circuit is expected and silent.
func (c *CachedIdentityLookup) readFailed(err error, field logger.Field) {
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return
	}
	c.logger.Warn("username cache read failed", field, logger.Err(err))
}

var (
	_ user.IdentityLookup = (*CachedIdentityLookup)(nil)
	_ StringStore         = (*Cache)(nil)
)
