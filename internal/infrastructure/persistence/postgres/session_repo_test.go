package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindgym/mindgym-hub/internal/domain/session"
)

func TestBuildSessionWhere(t *testing.T) {
	tests := []struct {
		name      string
		filter    session.Filter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "empty",
			filter:    session.Filter{},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "user only",
			filter:    session.ForUser("u1"),
			wantWhere: "WHERE user_id = $1",
			wantArgs:  []any{"u1"},
		},
		{
			name:      "category only",
			filter:    session.Filter{}.WithCategory(session.CategoryLogic),
			wantWhere: "WHERE category = $1",
			wantArgs:  []any{"logic"},
		},
		{
			name:      "user and category",
			filter:    session.ForUser("u1").WithCategory(session.CategoryFocus),
			wantWhere: "WHERE user_id = $1 AND category = $2",
			wantArgs:  []any{"u1", "focus"},
		},
		{
			name:      "invalid category ignored",
			filter:    session.Filter{UserID: "u1", Category: "chess"},
			wantWhere: "WHERE user_id = $1",
			wantArgs:  []any{"u1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildSessionWhere(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestGetMigrations_Ordered(t *testing.T) {
	migs := GetMigrations()
	for i, m := range migs {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.UpSQL)
		assert.NotEmpty(t, m.DownSQL)
	}
}

// recordingQuerier captures the last statement and answers QueryRow with row.
type recordingQuerier struct {
	sql  string
	args []any
	row  fakeRow
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.sql, q.args = sql, args
	return pgconn.CommandTag{}, nil
}

func (q *recordingQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql, q.args = sql, args
	return nil, errors.New("not supported")
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql, q.args = sql, args
	return q.row
}

type fakeRow struct {
	ScanFunc func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	return r.ScanFunc(dest...)
}

func scanInt(v *int) fakeRow {
	return fakeRow{ScanFunc: func(dest ...any) error {
		switch d := dest[0].(type) {
		case **int:
			*d = v
		case *int:
			*d = *v
		}
		return nil
	}}
}

func intPtr(v int) *int { return &v }

func TestSessionRepository_MaxScore(t *testing.T) {
	q := &recordingQuerier{row: scanInt(intPtr(80))}
	repo := NewSessionRepository(q)

	best, found, err := repo.MaxScore(context.Background(), session.ForUser("u1").WithCategory(session.CategoryMemory))

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 80, best)
	assert.Equal(t, "SELECT MAX(score) FROM game_sessions WHERE user_id = $1 AND category = $2", q.sql)
	assert.Equal(t, []any{"u1", "memory"}, q.args)
}

func TestSessionRepository_MaxScore_NoSessions(t *testing.T) {
	q := &recordingQuerier{row: scanInt(nil)}

	best, found, err := NewSessionRepository(q).MaxScore(context.Background(), session.ForUser("u1"))

	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, best)
}

func TestSessionRepository_CountUsersAbove(t *testing.T) {
	tests := []struct {
		name     string
		category session.Category
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "all categories",
			category: session.CategoryAny,
			wantSQL:  "SELECT COUNT(DISTINCT user_id) FROM game_sessions WHERE score > $1",
			wantArgs: []any{70},
		},
		{
			name:     "one category",
			category: session.CategoryLogic,
			wantSQL:  "SELECT COUNT(DISTINCT user_id) FROM game_sessions WHERE category = $1 AND score > $2",
			wantArgs: []any{"logic", 70},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &recordingQuerier{row: scanInt(intPtr(2))}

			n, err := NewSessionRepository(q).CountUsersAbove(context.Background(), tt.category, 70)

			require.NoError(t, err)
			assert.Equal(t, 2, n)
			assert.Equal(t, tt.wantSQL, q.sql)
			assert.Equal(t, tt.wantArgs, q.args)
		})
	}
}

func TestSessionRepository_CountUsersAbove_Error(t *testing.T) {
	down := errors.New("conn closed")
	q := &recordingQuerier{row: fakeRow{ScanFunc: func(...any) error { return down }}}

	_, err := NewSessionRepository(q).CountUsersAbove(context.Background(), session.CategoryAny, 1)

	assert.ErrorIs(t, err, down)
}
