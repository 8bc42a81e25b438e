// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"time"

	"github.com/mindgym/mindgym-hub/internal/domain/leaderboard"
	"github.com/mindgym/mindgym-hub/internal/domain/session"
	"github.com/mindgym/mindgym-hub/internal/domain/shared"
	"github.com/mindgym/mindgym-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Строит глобальный рейтинг из сырых сессий: по строке на пользователя,
// отсортированный по лучшему результату, с фильтром по категории.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardQuery содержит параметры запроса лидерборда.
type GetLeaderboardQuery struct {
	// Limit - количество строк (<= 0 означает значение по умолчанию, 10).
	Limit int

	// Category - фильтр по категории (пустая или неизвестная = все).
	Category string
}

// Validate приводит параметры к допустимым значениям.
// Некорректный лимит не отклоняется, а заменяется значением по умолчанию.
func (q *GetLeaderboardQuery) Validate() error {
	q.Limit = leaderboard.NormalizeLimit(q.Limit)
	return nil
}

// LeaderboardEntryDTO - строка лидерборда для внешнего слоя.
type LeaderboardEntryDTO struct {
	// Position - место строки в выдаче (начиная с 1).
	Position int `json:"position"`

	// UserID - внутренний ID пользователя.
	UserID string `json:"user_id"`

	// Username - отображаемое имя.
	Username string `json:"username"`

	// HighestScore - лучший результат.
	HighestScore int `json:"highest_score"`

	// TotalGames - количество игр.
	TotalGames int `json:"total_games"`

	// AverageScore - средний результат (2 знака).
	AverageScore float64 `json:"average_score"`

	// LastPlayedAt - время последней игры.
	LastPlayedAt time.Time `json:"last_played_at"`
}

// GetLeaderboardResult содержит результат запроса лидерборда.
type GetLeaderboardResult struct {
	// Entries - строки в порядке рейтинга.
	Entries []LeaderboardEntryDTO `json:"entries"`

	// Category - применённый фильтр ("all" без фильтра).
	Category string `json:"category"`

	// Limit - применённый лимит.
	Limit int `json:"limit"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetLeaderboardHandler обрабатывает запросы на получение лидерборда.
type GetLeaderboardHandler struct {
	sessions   session.Store
	identities user.IdentityLookup
}

// NewGetLeaderboardHandler создаёт новый обработчик запроса лидерборда.
func NewGetLeaderboardHandler(sessions session.Store, identities user.IdentityLookup) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{
		sessions:   sessions,
		identities: identities,
	}
}

// Handle выполняет запрос на получение лидерборда.
// Ошибка хранилища или сервиса имён прерывает весь запрос:
// частичный рейтинг никогда не возвращается.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, query GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrValidation, err.Error(), err)
	}

	category := session.ParseCategoryFilter(query.Category)
	filter := session.Filter{}.WithCategory(category)

	// Группировка и свёртка за один проход
	acc := leaderboard.NewAccumulator()
	err := h.sessions.Scan(ctx, filter, func(r *session.Record) error {
		acc.Add(r)
		return nil
	})
	if err != nil {
		return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrDependencyUnavailable, "failed to scan sessions", err)
	}

	// Сначала полная сортировка, потом лимит
	rows := acc.Rows()
	leaderboard.SortRows(rows)
	rows = leaderboard.Truncate(rows, query.Limit)

	// Обогащаем именами
	if len(rows) > 0 {
		names, err := h.identities.Usernames(ctx, leaderboard.UserIDs(rows))
		if err != nil {
			return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrDependencyUnavailable, "failed to resolve usernames", err)
		}
		rows = leaderboard.Enrich(rows, names)
	}

	return &GetLeaderboardResult{
		Entries:     toLeaderboardDTOs(rows),
		Category:    category.String(),
		Limit:       query.Limit,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// toLeaderboardDTOs конвертирует строки рейтинга в DTO.
func toLeaderboardDTOs(rows []leaderboard.Row) []LeaderboardEntryDTO {
	dtos := make([]LeaderboardEntryDTO, len(rows))
	for i, r := range rows {
		dtos[i] = LeaderboardEntryDTO{
			Position:     i + 1,
			UserID:       r.UserID,
			Username:     r.Username,
			HighestScore: r.HighestScore,
			TotalGames:   r.TotalGames,
			AverageScore: r.AverageScore,
			LastPlayedAt: r.LastPlayedAt,
		}
	}
	return dtos
}
