package leaderboard

import (
	"math"
	"sort"
	"time"

	"github.com/mindgym/mindgym-hub/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATION PIPELINE
// Рейтинг строится этапами: свёртка потока сессий в Accumulator → сортировка →
// усечение → обогащение. Сначала полная сортировка, потом лимит.
// ══════════════════════════════════════════════════════════════════════════════

// rowState - промежуточное состояние свёртки одной группы.
type rowState struct {
	highest    int
	count      int
	sum        int
	lastPlayed time.Time
}

func (s *rowState) add(r *session.Record) {
	if r == nil {
		return
	}
	if s.count == 0 || r.Score > s.highest {
		s.highest = r.Score
	}
	if r.CreatedAt.After(s.lastPlayed) {
		s.lastPlayed = r.CreatedAt
	}
	s.count++
	s.sum += r.Score
}

func (s *rowState) row(userID string) Row {
	var avg float64
	if s.count > 0 {
		avg = RoundTo2(float64(s.sum) / float64(s.count))
	}
	return Row{
		UserID:       userID,
		HighestScore: s.highest,
		TotalGames:   s.count,
		AverageScore: avg,
		LastPlayedAt: s.lastPlayed,
	}
}

// Accumulator выполняет группировку и свёртку за один проход по потоку сессий.
type Accumulator struct {
	states map[string]*rowState
}

// NewAccumulator создаёт пустой накопитель.
func NewAccumulator() *Accumulator {
	return &Accumulator{states: make(map[string]*rowState)}
}

// Add учитывает одну сессию.
func (a *Accumulator) Add(r *session.Record) {
	if r == nil {
		return
	}
	st, ok := a.states[r.UserID]
	if !ok {
		st = &rowState{}
		a.states[r.UserID] = st
	}
	st.add(r)
}

// Len возвращает количество пользователей.
func (a *Accumulator) Len() int {
	return len(a.states)
}

// Rows возвращает несортированные строки рейтинга.
func (a *Accumulator) Rows() []Row {
	rows := make([]Row, 0, len(a.states))
	for userID, st := range a.states {
		rows = append(rows, st.row(userID))
	}
	return rows
}

// Less задаёт порядок строк рейтинга:
// лучший результат по убыванию, затем последняя игра по убыванию
// (более свежая активность выше), затем UserID по возрастанию.
// Порядок полный, поэтому результат воспроизводим при одинаковых данных.
func Less(a, b Row) bool {
	if a.HighestScore != b.HighestScore {
		return a.HighestScore > b.HighestScore
	}
	if !a.LastPlayedAt.Equal(b.LastPlayedAt) {
		return a.LastPlayedAt.After(b.LastPlayedAt)
	}
	return a.UserID < b.UserID
}

// SortRows сортирует строки на месте.
func SortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		return Less(rows[i], rows[j])
	})
}

// Truncate возвращает первые limit строк.
func Truncate(rows []Row, limit int) []Row {
	limit = NormalizeLimit(limit)
	if len(rows) <= limit {
		return rows
	}
	return rows[:limit]
}

// UserIDs возвращает ID пользователей в порядке строк.
func UserIDs(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.UserID
	}
	return ids
}

// Enrich проставляет имена пользователей.
// Строки пользователей без имени отбрасываются, чтобы не показывать внутренний ID.
func Enrich(rows []Row, names map[string]string) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		name, ok := names[r.UserID]
		if !ok || name == "" {
			continue
		}
		r.Username = name
		out = append(out, r)
	}
	return out
}

// RoundTo2 округляет число до двух знаков после запятой.
func RoundTo2(x float64) float64 {
	return math.Round(x*100) / 100
}
