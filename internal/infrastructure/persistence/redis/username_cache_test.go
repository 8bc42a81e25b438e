package redis

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindgym/mindgym-hub/internal/domain/shared"
)

// fakeStore is an in-process StringStore.
type fakeStore struct {
	data  map[string]string
	err   error
	ttls  []time.Duration
	calls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) GetString(_ context.Context, key string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (f *fakeStore) MGet(_ context.Context, keys ...string) (map[string]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := f.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (f *fakeStore) MSet(_ context.Context, pairs map[string]string, ttl time.Duration) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	for k, v := range pairs {
		f.data[k] = v
	}
	f.ttls = append(f.ttls, ttl)
	return nil
}

// fakeLookup records which ids reached the backing lookup.
type fakeLookup struct {
	names map[string]string
	err   error
	asked [][]string
}

func (f *fakeLookup) Username(_ context.Context, id string) (string, error) {
	f.asked = append(f.asked, []string{id})
	if f.err != nil {
		return "", f.err
	}
	name, ok := f.names[id]
	if !ok {
		return "", shared.ErrUserNotFound
	}
	return name, nil
}

func (f *fakeLookup) Usernames(_ context.Context, ids []string) (map[string]string, error) {
	asked := append([]string(nil), ids...)
	sort.Strings(asked)
	f.asked = append(f.asked, asked)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string)
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func TestUsernameKey(t *testing.T) {
	assert.Equal(t, "mindgym:username:abc", UsernameKey("abc"))
}

func TestCachedIdentityLookup_ReadThrough(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.data[UsernameKey("a")] = "alice"
	backing := &fakeLookup{names: map[string]string{"a": "alice", "b": "bob"}}
	lookup := NewCachedIdentityLookup(store, backing, time.Minute, nil)

	got, err := lookup.Usernames(ctx, []string{"a", "b", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "alice", "b": "bob"}, got)
	assert.Equal(t, [][]string{{"b", "ghost"}}, backing.asked)
	assert.Equal(t, "bob", store.data[UsernameKey("b")])
	assert.Equal(t, []time.Duration{time.Minute}, store.ttls)

	got, err = lookup.Usernames(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, backing.asked, 1)
}

func TestCachedIdentityLookup_CacheDownFallsThrough(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	backing := &fakeLookup{names: map[string]string{"a": "alice"}}
	lookup := NewCachedIdentityLookup(store, backing, 0, nil)

	got, err := lookup.Usernames(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "alice"}, got)

	name, err := lookup.Username(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
}

func TestCachedIdentityLookup_BreakerSkipsDeadCache(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.err = errors.New("i/o timeout")
	backing := &fakeLookup{names: map[string]string{"a": "alice"}}
	lookup := NewCachedIdentityLookup(store, backing, 0, nil)

	// MGet and MSet fail, then GetString opens the circuit.
	_, err := lookup.Usernames(ctx, []string{"a"})
	require.NoError(t, err)
	_, err = lookup.Username(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, 3, store.calls)

	for i := 0; i < 5; i++ {
		got, err := lookup.Usernames(ctx, []string{"a"})
		require.NoError(t, err)
		assert.Equal(t, "alice", got["a"])
	}
	assert.Equal(t, 3, store.calls)
}

func TestCachedIdentityLookup_MissDoesNotTripBreaker(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	backing := &fakeLookup{names: map[string]string{"a": "alice"}}
	lookup := NewCachedIdentityLookup(store, backing, time.Minute, nil)

	for i := 0; i < 5; i++ {
		delete(store.data, UsernameKey("a"))
		name, err := lookup.Username(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "alice", name)
	}
	assert.Equal(t, 10, store.calls)
}

func TestCachedIdentityLookup_BackingErrorPropagates(t *testing.T) {
	backing := &fakeLookup{err: errors.New("db down")}
	lookup := NewCachedIdentityLookup(newFakeStore(), backing, 0, nil)

	_, err := lookup.Usernames(context.Background(), []string{"a"})
	assert.Error(t, err)
}

func TestCachedIdentityLookup_UsernameNotFound(t *testing.T) {
	backing := &fakeLookup{names: map[string]string{}}
	lookup := NewCachedIdentityLookup(newFakeStore(), backing, 0, nil)

	_, err := lookup.Username(context.Background(), "ghost")
	assert.True(t, shared.IsNotFound(err))
}

func TestConfig_Options(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = "redis://:secret@cache.internal:6380/2"

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 10, opts.PoolSize)

	_, err = Config{URL: "http://nope"}.Options()
	assert.Error(t, err)
}
