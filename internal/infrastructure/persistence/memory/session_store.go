// Package memory provides in-process implementations of the domain stores.
// They back the API when no database is configured and serve as realistic
// fixtures in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mindgym/mindgym-hub/internal/domain/leaderboard"
	"github.com/mindgym/mindgym-hub/internal/domain/session"
	"github.com/mindgym/mindgym-hub/internal/domain/shared"
)

// SessionStore keeps game sessions in memory. Safe for concurrent use.
type SessionStore struct {
	mu      sync.RWMutex
	records []entry
	seq     uint64
}

// entry remembers insertion order so sessions created at the same instant
// still list deterministically.
type entry struct {
	record *session.Record
	seq    uint64
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Append stores a copy of the record.
func (s *SessionStore) Append(ctx context.Context, record *session.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record == nil {
		return shared.NewDomainError("session", "Append", shared.ErrInvalidInput, "record is nil")
	}

	cp := *record

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.records = append(s.records, entry{record: &cp, seq: s.seq})
	return nil
}

// Find returns one page of matching sessions, newest first.
func (s *SessionStore) Find(ctx context.Context, q session.ListQuery) ([]*session.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q = q.Normalize()

	s.mu.RLock()
	matched := make([]entry, 0, len(s.records))
	for _, e := range s.records {
		if q.Filter.Matches(e.record) {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.record.CreatedAt.Equal(b.record.CreatedAt) {
			return a.record.CreatedAt.After(b.record.CreatedAt)
		}
		return a.seq > b.seq
	})

	offset := q.Offset()
	if offset >= len(matched) {
		return []*session.Record{}, nil
	}
	end := offset + q.Limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*session.Record, 0, end-offset)
	for _, e := range matched[offset:end] {
		cp := *e.record
		out = append(out, &cp)
	}
	return out, nil
}

// Count returns the number of matching sessions.
func (s *SessionStore) Count(ctx context.Context, f session.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.records {
		if f.Matches(e.record) {
			n++
		}
	}
	return n, nil
}

// Scan calls fn for every matching session in insertion order.
// fn receives copies and runs without the store lock held.
func (s *SessionStore) Scan(ctx context.Context, f session.Filter, fn func(*session.Record) error) error {
	for _, r := range s.snapshot(f) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

// MaxScore returns the best score among matching sessions.
func (s *SessionStore) MaxScore(ctx context.Context, f session.Filter) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	best, found := 0, false
	for _, e := range s.records {
		if !f.Matches(e.record) {
			continue
		}
		if !found || e.record.Score > best {
			best = e.record.Score
			found = true
		}
	}
	return best, found, nil
}

// CountUsersAbove counts users whose best score in category c exceeds score.
func (s *SessionStore) CountUsersAbove(ctx context.Context, c session.Category, score int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	best := leaderboard.BestScores(s.snapshot(session.Filter{}.WithCategory(c)), session.Filter{})
	return leaderboard.CountAbove(best, score), nil
}

// Len returns the total number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *SessionStore) snapshot(f session.Filter) []*session.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*session.Record, 0, len(s.records))
	for _, e := range s.records {
		if f.Matches(e.record) {
			cp := *e.record
			out = append(out, &cp)
		}
	}
	return out
}

var _ session.Store = (*SessionStore)(nil)
