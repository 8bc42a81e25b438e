package session

// Summary - пожизненная статистика пользователя.
// Не хранится: пересчитывается из сессий при каждом запросе.
type Summary struct {
	UserID                string `json:"user_id"`
	TotalGames            int    `json:"total_games"`
	TotalScore            int    `json:"total_score"`
	AverageScore          int    `json:"average_score"`
	HighestScore          int    `json:"highest_score"`
	TotalTimeSpentSeconds int    `json:"total_time_spent_seconds"`
	HighestLevel          int    `json:"highest_level"`
}

// SummaryBuilder накапливает статистику за один проход по сессиям.
// Все свёртки коммутативны, порядок сессий на результат не влияет.
type SummaryBuilder struct {
	userID       string
	count        int
	totalScore   int
	highestScore int
	totalTime    int
	highestLevel int
}

// NewSummaryBuilder создаёт пустой накопитель для пользователя.
func NewSummaryBuilder(userID string) *SummaryBuilder {
	return &SummaryBuilder{userID: userID}
}

// Add учитывает одну сессию.
func (b *SummaryBuilder) Add(r *Record) {
	if r == nil {
		return
	}
	b.count++
	b.totalScore += r.Score
	b.totalTime += r.TimeSpentSeconds
	if r.Score > b.highestScore {
		b.highestScore = r.Score
	}
	if r.Level > b.highestLevel {
		b.highestLevel = r.Level
	}
}

// Build возвращает итоговую статистику.
// Без сессий все поля нулевые.
func (b *SummaryBuilder) Build() Summary {
	return Summary{
		UserID:                b.userID,
		TotalGames:            b.count,
		TotalScore:            b.totalScore,
		AverageScore:          RoundedMean(b.totalScore, b.count),
		HighestScore:          b.highestScore,
		TotalTimeSpentSeconds: b.totalTime,
		HighestLevel:          b.highestLevel,
	}
}

// RoundedMean возвращает среднее sum/count, округлённое до целого половиной вверх.
// Для count == 0 возвращает 0. Оба аргумента неотрицательны.
func RoundedMean(sum, count int) int {
	if count <= 0 {
		return 0
	}
	return (2*sum + count) / (2 * count)
}
