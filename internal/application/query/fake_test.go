package query

import (
	"context"

	"github.com/mindgym/mindgym-hub/internal/domain/session"
	"github.com/mindgym/mindgym-hub/internal/infrastructure/persistence/memory"
)

// ------------------------
// Fake Session Store
// ------------------------

// FakeSessionStore delegates to an in-memory store unless a Func is set.
type FakeSessionStore struct {
	*memory.SessionStore
	trace []string

	ScanFunc            func(ctx context.Context, f session.Filter, fn func(*session.Record) error) error
	FindFunc            func(ctx context.Context, q session.ListQuery) ([]*session.Record, error)
	CountFunc           func(ctx context.Context, f session.Filter) (int, error)
	MaxScoreFunc        func(ctx context.Context, f session.Filter) (int, bool, error)
	CountUsersAboveFunc func(ctx context.Context, c session.Category, score int) (int, error)
}

func NewFakeSessionStore() *FakeSessionStore {
	return &FakeSessionStore{SessionStore: memory.NewSessionStore()}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeSessionStore) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeSessionStore) Scan(ctx context.Context, flt session.Filter, fn func(*session.Record) error) error {
	f.trace = append(f.trace, "Scan")
	if f.ScanFunc != nil {
		return f.ScanFunc(ctx, flt, fn)
	}
	return f.SessionStore.Scan(ctx, flt, fn)
}

func (f *FakeSessionStore) Find(ctx context.Context, q session.ListQuery) ([]*session.Record, error) {
	f.trace = append(f.trace, "Find")
	if f.FindFunc != nil {
		return f.FindFunc(ctx, q)
	}
	return f.SessionStore.Find(ctx, q)
}

func (f *FakeSessionStore) Count(ctx context.Context, flt session.Filter) (int, error) {
	f.trace = append(f.trace, "Count")
	if f.CountFunc != nil {
		return f.CountFunc(ctx, flt)
	}
	return f.SessionStore.Count(ctx, flt)
}

func (f *FakeSessionStore) MaxScore(ctx context.Context, flt session.Filter) (int, bool, error) {
	f.trace = append(f.trace, "MaxScore")
	if f.MaxScoreFunc != nil {
		return f.MaxScoreFunc(ctx, flt)
	}
	return f.SessionStore.MaxScore(ctx, flt)
}

func (f *FakeSessionStore) CountUsersAbove(ctx context.Context, c session.Category, score int) (int, error) {
	f.trace = append(f.trace, "CountUsersAbove")
	if f.CountUsersAboveFunc != nil {
		return f.CountUsersAboveFunc(ctx, c, score)
	}
	return f.SessionStore.CountUsersAbove(ctx, c, score)
}

// ------------------------
// Fake Identity Lookup
// ------------------------

// FakeIdentityLookup resolves names from a static map unless a Func is set.
type FakeIdentityLookup struct {
	Names map[string]string

	UsernamesFunc func(ctx context.Context, ids []string) (map[string]string, error)
	calls         [][]string
}

func (f *FakeIdentityLookup) Username(ctx context.Context, id string) (string, error) {
	names, err := f.Usernames(ctx, []string{id})
	if err != nil {
		return "", err
	}
	return names[id], nil
}

func (f *FakeIdentityLookup) Usernames(ctx context.Context, ids []string) (map[string]string, error) {
	f.calls = append(f.calls, append([]string(nil), ids...))
	if f.UsernamesFunc != nil {
		return f.UsernamesFunc(ctx, ids)
	}
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if name, ok := f.Names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}
