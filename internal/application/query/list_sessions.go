package query

import (
	"context"
	"errors"
	"strings"

	"github.com/mindgym/mindgym-hub/internal/domain/session"
	"github.com/mindgym/mindgym-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST SESSIONS QUERY
// История игр пользователя постранично, от новых к старым.
// ══════════════════════════════════════════════════════════════════════════════

// ListSessionsQuery содержит параметры выборки.
type ListSessionsQuery struct {
	UserID string

	// Page - номер страницы (<= 0 означает 1).
	Page int

	// Limit - размер страницы (<= 0 означает 10).
	Limit int

	// Category - фильтр по категории (пустая или неизвестная = все).
	Category string
}

// Validate проверяет параметры и приводит пагинацию к значениям по умолчанию.
func (q *ListSessionsQuery) Validate() error {
	q.UserID = strings.TrimSpace(q.UserID)
	if q.UserID == "" {
		return errors.New("user_id is required")
	}
	if q.Page < 1 {
		q.Page = session.DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = session.DefaultLimit
	}
	return nil
}

// ListSessionsResult - страница сессий с метаданными.
type ListSessionsResult struct {
	Sessions   []*session.Record  `json:"sessions"`
	Pagination session.Pagination `json:"pagination"`
}

// ListSessionsHandler обрабатывает запросы истории игр.
type ListSessionsHandler struct {
	sessions session.Store
}

// NewListSessionsHandler создаёт новый обработчик.
func NewListSessionsHandler(sessions session.Store) *ListSessionsHandler {
	return &ListSessionsHandler{sessions: sessions}
}

// Handle выполняет запрос. Страница за пределами данных - пустой список.
func (h *ListSessionsHandler) Handle(ctx context.Context, query ListSessionsQuery) (*ListSessionsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListSessions", shared.ErrValidation, err.Error(), err)
	}

	lq := session.ListQuery{
		Filter: session.ForUser(query.UserID).WithCategory(session.ParseCategoryFilter(query.Category)),
		Page:   query.Page,
		Limit:  query.Limit,
	}

	records, err := h.sessions.Find(ctx, lq)
	if err != nil {
		return nil, shared.WrapError("query", "ListSessions", shared.ErrDependencyUnavailable, "failed to list sessions", err)
	}

	total, err := h.sessions.Count(ctx, lq.Filter)
	if err != nil {
		return nil, shared.WrapError("query", "ListSessions", shared.ErrDependencyUnavailable, "failed to count sessions", err)
	}

	if records == nil {
		records = []*session.Record{}
	}

	return &ListSessionsResult{
		Sessions:   records,
		Pagination: session.NewPagination(lq, total),
	}, nil
}
