package leaderboard

import (
	"github.com/mindgym/mindgym-hub/internal/domain/session"
)

// BestScores возвращает лучший результат каждого пользователя
// среди сессий, подходящих под фильтр.
func BestScores(records []*session.Record, f session.Filter) map[string]int {
	best := make(map[string]int)
	for _, r := range records {
		if !f.Matches(r) {
			continue
		}
		if cur, ok := best[r.UserID]; !ok || r.Score > cur {
			best[r.UserID] = r.Score
		}
	}
	return best
}

// CountAbove возвращает количество пользователей со строго большим лучшим результатом.
func CountAbove(best map[string]int, score int) int {
	n := 0
	for _, s := range best {
		if s > score {
			n++
		}
	}
	return n
}
