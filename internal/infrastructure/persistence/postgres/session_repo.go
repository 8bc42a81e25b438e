package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mindgym/mindgym-hub/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const sessionColumns = `id, user_id, score, level, time_spent_seconds, category, completed, created_at`

// SessionRepository implements session.Store for PostgreSQL.
type SessionRepository struct {
	conn Querier
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(conn Querier) *SessionRepository {
	return &SessionRepository{conn: conn}
}

// Append inserts a new session row.
func (r *SessionRepository) Append(ctx context.Context, rec *session.Record) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO game_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		rec.ID,
		rec.UserID,
		rec.Score,
		rec.Level,
		rec.TimeSpentSeconds,
		string(rec.Category),
		rec.Completed,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Find returns one page of sessions, newest first.
func (r *SessionRepository) Find(ctx context.Context, q session.ListQuery) ([]*session.Record, error) {
	q = q.Normalize()
	where, args := buildSessionWhere(q.Filter)

	query := fmt.Sprintf(`
		SELECT %s FROM game_sessions
		%s
		ORDER BY created_at DESC, seq DESC
		LIMIT $%d OFFSET $%d
	`, sessionColumns, where, len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset())

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	records := make([]*session.Record, 0, q.Limit)
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Count returns the number of matching sessions.
func (r *SessionRepository) Count(ctx context.Context, f session.Filter) (int, error) {
	where, args := buildSessionWhere(f)

	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM game_sessions "+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// Scan streams matching sessions in insertion order.
func (r *SessionRepository) Scan(ctx context.Context, f session.Filter, fn func(*session.Record) error) error {
	where, args := buildSessionWhere(f)

	rows, err := r.conn.Query(ctx, fmt.Sprintf("SELECT %s FROM game_sessions %s ORDER BY seq", sessionColumns, where), args...)
	if err != nil {
		return fmt.Errorf("failed to scan sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}

	return rows.Err()
}

// MaxScore returns the best score among matching sessions.
func (r *SessionRepository) MaxScore(ctx context.Context, f session.Filter) (int, bool, error) {
	where, args := buildSessionWhere(f)

	var best *int
	err := r.conn.QueryRow(ctx, "SELECT MAX(score) FROM game_sessions "+where, args...).Scan(&best)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get max score: %w", err)
	}
	if best == nil {
		return 0, false, nil
	}
	return *best, true, nil
}

// CountUsersAbove counts distinct users having at least one session scoring above score.
func (r *SessionRepository) CountUsersAbove(ctx context.Context, c session.Category, score int) (int, error) {
	where, args := buildSessionWhere(session.Filter{}.WithCategory(c))
	args = append(args, score)
	cond := fmt.Sprintf("score > $%d", len(args))
	if where == "" {
		where = "WHERE " + cond
	} else {
		where += " AND " + cond
	}

	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(DISTINCT user_id) FROM game_sessions "+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users above: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// HELPERS
// ─────────────────────────────────────────────────────────────────────────────

// buildSessionWhere renders a filter as a WHERE clause with positional args.
// An empty filter renders as an empty string.
func buildSessionWhere(f session.Filter) (string, []any) {
	var conds []string
	var args []any

	if f.UserID != "" {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Category.IsValid() {
		args = append(args, string(f.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func scanSession(row pgx.Row) (*session.Record, error) {
	var rec session.Record
	var category string

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Score,
		&rec.Level,
		&rec.TimeSpentSeconds,
		&category,
		&rec.Completed,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	rec.Category = session.Category(category)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

var _ session.Store = (*SessionRepository)(nil)
