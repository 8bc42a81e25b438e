// Package leaderboard содержит доменную модель глобального рейтинга MindGym Hub.
// Рейтинг строится из сырых игровых сессий: по одной строке на пользователя
// с лучшим результатом, количеством игр, средним результатом и временем последней игры.
package leaderboard

import (
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Rank представляет позицию пользователя в рейтинге.
// Rank начинается с 1 (первое место).
type Rank int

// String возвращает строковое представление ранга.
func (r Rank) String() string {
	return fmt.Sprintf("#%d", r)
}

// DefaultLimit - количество строк рейтинга по умолчанию.
const DefaultLimit = 10

// NormalizeLimit приводит лимит к значению по умолчанию, если он не положительный.
// Верхняя граница не ограничивается: это забота внешнего слоя.
func NormalizeLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	return limit
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD ROW
// ══════════════════════════════════════════════════════════════════════════════

// Row - одна строка рейтинга: лучший результат пользователя и сводка по его играм.
type Row struct {
	// UserID - внутренний идентификатор пользователя.
	UserID string `json:"user_id"`

	// Username - отображаемое имя (заполняется на этапе обогащения).
	Username string `json:"username"`

	// HighestScore - лучший результат.
	HighestScore int `json:"highest_score"`

	// TotalGames - количество подходящих сессий.
	TotalGames int `json:"total_games"`

	// AverageScore - средний результат, округлённый до 2 знаков.
	AverageScore float64 `json:"average_score"`

	// LastPlayedAt - время последней подходящей сессии.
	LastPlayedAt time.Time `json:"last_played_at"`
}

// String возвращает строковое представление для логирования.
func (r Row) String() string {
	return fmt.Sprintf(
		"Row{User: %s, Best: %d, Games: %d, Avg: %.2f}",
		r.UserID, r.HighestScore, r.TotalGames, r.AverageScore,
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// POSITION
// ══════════════════════════════════════════════════════════════════════════════

// Position - позиция пользователя: ранг и лучший результат.
// Rank == nil означает, что у пользователя ещё нет подходящих сессий.
type Position struct {
	Rank  *Rank `json:"rank"`
	Score int   `json:"score"`
}

// Unranked возвращает позицию пользователя без подходящих сессий.
func Unranked() Position {
	return Position{Rank: nil, Score: 0}
}

// NewPosition строит позицию по лучшему результату и количеству
// пользователей со строго большим лучшим результатом.
// Равные результаты ранг не увеличивают.
func NewPosition(best, usersAbove int) Position {
	if usersAbove < 0 {
		usersAbove = 0
	}
	rank := Rank(usersAbove + 1)
	return Position{Rank: &rank, Score: best}
}

// IsRanked возвращает true, если у пользователя есть ранг.
func (p Position) IsRanked() bool {
	return p.Rank != nil
}
