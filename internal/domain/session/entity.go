// Package session содержит доменную модель игровой сессии MindGym Hub.
// Сессия - это одна сыгранная (или прерванная) партия с результатом:
// очки, достигнутый уровень, затраченное время и категория игры.
// Сессии только добавляются и никогда не изменяются.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mindgym/mindgym-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Category определяет режим игры. Множество значений закрыто.
type Category string

const (
	// CategoryMemory - игры на память.
	CategoryMemory Category = "memory"
	// CategoryLogic - логические игры.
	CategoryLogic Category = "logic"
	// CategoryFocus - игры на концентрацию.
	CategoryFocus Category = "focus"
	// CategoryMixed - смешанный режим (значение по умолчанию).
	CategoryMixed Category = "mixed"

	// CategoryAny - отсутствие фильтра по категории.
	CategoryAny Category = ""
)

// Categories возвращает все допустимые категории.
func Categories() []Category {
	return []Category{CategoryMemory, CategoryLogic, CategoryFocus, CategoryMixed}
}

// IsValid проверяет, что категория входит в закрытое множество.
func (c Category) IsValid() bool {
	switch c {
	case CategoryMemory, CategoryLogic, CategoryFocus, CategoryMixed:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление категории.
func (c Category) String() string {
	if c == CategoryAny {
		return "all"
	}
	return string(c)
}

// ParseCategory разбирает категорию для новой сессии.
// Пустая строка означает категорию по умолчанию (mixed),
// неизвестное значение - ошибка валидации.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryMixed, nil
	}
	c := Category(s)
	if !c.IsValid() {
		return CategoryAny, shared.ErrInvalidCategory
	}
	return c, nil
}

// ParseCategoryFilter разбирает фильтр по категории.
// Неизвестное значение молча игнорируется: результат - CategoryAny.
func ParseCategoryFilter(s string) Category {
	c := Category(strings.TrimSpace(s))
	if !c.IsValid() {
		return CategoryAny
	}
	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Record - результат одной игровой сессии.
type Record struct {
	// ID - уникальный идентификатор, назначается при создании.
	ID string `json:"id"`

	// UserID - владелец сессии.
	UserID string `json:"user_id"`

	// Score - набранные очки (>= 0).
	Score int `json:"score"`

	// Level - достигнутый уровень (>= 1).
	Level int `json:"level"`

	// TimeSpentSeconds - длительность партии в секундах (>= 0).
	TimeSpentSeconds int `json:"time_spent_seconds"`

	// Category - режим игры.
	Category Category `json:"category"`

	// Completed - была ли партия доиграна.
	Completed bool `json:"completed"`

	// CreatedAt - момент создания, единственное поле для упорядочивания по времени.
	CreatedAt time.Time `json:"created_at"`
}

// NewRecordParams содержит параметры для создания сессии.
type NewRecordParams struct {
	UserID           string
	Score            int
	Level            int
	TimeSpentSeconds int
	Category         string

	// Completed - nil означает true.
	Completed *bool

	// CreatedAt - если не задано, используется текущее время UTC.
	CreatedAt time.Time
}

// NewRecord создаёт новую сессию с валидацией.
func NewRecord(params NewRecordParams) (*Record, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, shared.ErrInvalidUserID
	}
	if params.Score < 0 {
		return nil, shared.ErrInvalidScore
	}
	if params.Level < 1 {
		return nil, shared.ErrInvalidLevel
	}
	if params.TimeSpentSeconds < 0 {
		return nil, shared.ErrInvalidTimeSpent
	}

	category, err := ParseCategory(params.Category)
	if err != nil {
		return nil, err
	}

	completed := true
	if params.Completed != nil {
		completed = *params.Completed
	}

	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return &Record{
		ID:               uuid.New().String(),
		UserID:           params.UserID,
		Score:            params.Score,
		Level:            params.Level,
		TimeSpentSeconds: params.TimeSpentSeconds,
		Category:         category,
		Completed:        completed,
		CreatedAt:        createdAt,
	}, nil
}

// String возвращает строковое представление для логирования.
func (r *Record) String() string {
	return fmt.Sprintf(
		"Session{ID: %s, User: %s, Score: %d, Level: %d, Category: %s}",
		r.ID, r.UserID, r.Score, r.Level, r.Category,
	)
}
