package query

import (
	"context"
	"errors"
	"strings"

	"github.com/mindgym/mindgym-hub/internal/domain/session"
	"github.com/mindgym/mindgym-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET USER STATS QUERY
// Пожизненная статистика пользователя по всем его сессиям.
// Пользователь без сессий получает нулевую статистику, а не ошибку.
// ══════════════════════════════════════════════════════════════════════════════

// GetUserStatsQuery содержит параметры запроса статистики.
type GetUserStatsQuery struct {
	// UserID - внутренний ID пользователя.
	UserID string
}

// Validate проверяет корректность параметров запроса.
func (q *GetUserStatsQuery) Validate() error {
	q.UserID = strings.TrimSpace(q.UserID)
	if q.UserID == "" {
		return errors.New("user_id is required")
	}
	return nil
}

// GetUserStatsHandler обрабатывает запросы статистики.
type GetUserStatsHandler struct {
	sessions session.Store
}

// NewGetUserStatsHandler создаёт новый обработчик.
func NewGetUserStatsHandler(sessions session.Store) *GetUserStatsHandler {
	return &GetUserStatsHandler{sessions: sessions}
}

// Handle выполняет запрос.
func (h *GetUserStatsHandler) Handle(ctx context.Context, query GetUserStatsQuery) (*session.Summary, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetUserStats", shared.ErrValidation, err.Error(), err)
	}

	b := session.NewSummaryBuilder(query.UserID)
	err := h.sessions.Scan(ctx, session.ForUser(query.UserID), func(r *session.Record) error {
		b.Add(r)
		return nil
	})
	if err != nil {
		return nil, shared.WrapError("query", "GetUserStats", shared.ErrDependencyUnavailable, "failed to scan sessions", err)
	}

	summary := b.Build()
	return &summary, nil
}
