package query

import (
	"context"
	"errors"
	"strings"

	"github.com/mindgym/mindgym-hub/internal/domain/leaderboard"
	"github.com/mindgym/mindgym-hub/internal/domain/session"
	"github.com/mindgym/mindgym-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET USER RANK QUERY
// Позиция пользователя в рейтинге без построения всего рейтинга:
// лучший результат пользователя и количество пользователей выше него.
// ══════════════════════════════════════════════════════════════════════════════

// GetUserRankQuery содержит параметры запроса позиции.
type GetUserRankQuery struct {
	// UserID - внутренний ID пользователя.
	UserID string

	// Category - фильтр по категории (пустая или неизвестная = все).
	Category string
}

// Validate проверяет корректность параметров запроса.
func (q *GetUserRankQuery) Validate() error {
	q.UserID = strings.TrimSpace(q.UserID)
	if q.UserID == "" {
		return errors.New("user_id is required")
	}
	return nil
}

// GetUserRankResult - позиция пользователя.
// Rank == nil, если у пользователя нет подходящих сессий.
type GetUserRankResult struct {
	UserID   string            `json:"user_id"`
	Category string            `json:"category"`
	Rank     *leaderboard.Rank `json:"rank"`
	Score    int               `json:"score"`
}

// GetUserRankHandler обрабатывает запросы на получение позиции пользователя.
type GetUserRankHandler struct {
	sessions session.Store
}

// NewGetUserRankHandler создаёт новый обработчик.
func NewGetUserRankHandler(sessions session.Store) *GetUserRankHandler {
	return &GetUserRankHandler{sessions: sessions}
}

// Handle выполняет запрос.
func (h *GetUserRankHandler) Handle(ctx context.Context, query GetUserRankQuery) (*GetUserRankResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetUserRank", shared.ErrValidation, err.Error(), err)
	}

	category := session.ParseCategoryFilter(query.Category)

	position, err := h.resolve(ctx, query.UserID, category)
	if err != nil {
		return nil, shared.WrapError("query", "GetUserRank", shared.ErrDependencyUnavailable, "failed to compute rank", err)
	}

	return &GetUserRankResult{
		UserID:   query.UserID,
		Category: category.String(),
		Rank:     position.Rank,
		Score:    position.Score,
	}, nil
}

// resolve считает позицию двумя запросами к хранилищу.
func (h *GetUserRankHandler) resolve(ctx context.Context, userID string, category session.Category) (leaderboard.Position, error) {
	best, found, err := h.sessions.MaxScore(ctx, session.ForUser(userID).WithCategory(category))
	if err != nil {
		return leaderboard.Position{}, err
	}
	if !found {
		return leaderboard.Unranked(), nil
	}

	above, err := h.sessions.CountUsersAbove(ctx, category, best)
	if err != nil {
		return leaderboard.Position{}, err
	}

	return leaderboard.NewPosition(best, above), nil
}
