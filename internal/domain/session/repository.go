package session

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Store определяет контракт хранилища игровых сессий.
// Реализации находятся в infrastructure слое (PostgreSQL, in-memory).
//
// Хранилище только добавляет записи: операций изменения и удаления нет.
// Любая ошибка хранилища считается недоступностью зависимости.
type Store interface {
	// Append сохраняет новую сессию.
	Append(ctx context.Context, record *Record) error

	// Find возвращает страницу сессий, от новых к старым.
	Find(ctx context.Context, q ListQuery) ([]*Record, error)

	// Count возвращает количество сессий, подходящих под фильтр.
	Count(ctx context.Context, f Filter) (int, error)

	// Scan последовательно передаёт в fn каждую сессию, подходящую под фильтр.
	// Ошибка из fn прерывает обход и возвращается вызывающему.
	Scan(ctx context.Context, f Filter, fn func(*Record) error) error

	// MaxScore возвращает максимальные очки среди подходящих сессий.
	// found == false, если ни одной сессии нет.
	MaxScore(ctx context.Context, f Filter) (score int, found bool, err error)

	// CountUsersAbove возвращает количество пользователей, у которых лучший
	// результат среди сессий категории c строго больше score.
	// У пользователя лучший результат больше score тогда и только тогда,
	// когда хотя бы одна его сессия набрала больше score.
	CountUsersAbove(ctx context.Context, c Category, score int) (int, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERY OPTIONS
// ══════════════════════════════════════════════════════════════════════════════

// Filter - условия отбора сессий. Пустые поля не ограничивают выборку.
type Filter struct {
	// UserID - фильтр по владельцу.
	UserID string

	// Category - фильтр по категории (CategoryAny = все).
	Category Category
}

// ForUser возвращает фильтр по пользователю.
func ForUser(userID string) Filter {
	return Filter{UserID: userID}
}

// WithCategory возвращает копию фильтра с категорией.
// Невалидная категория превращается в CategoryAny.
func (f Filter) WithCategory(c Category) Filter {
	if !c.IsValid() {
		c = CategoryAny
	}
	f.Category = c
	return f
}

// Matches проверяет, подходит ли сессия под фильтр.
func (f Filter) Matches(r *Record) bool {
	if r == nil {
		return false
	}
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.Category.IsValid() && r.Category != f.Category {
		return false
	}
	return true
}

const (
	// DefaultPage - номер страницы по умолчанию.
	DefaultPage = 1
	// DefaultLimit - размер страницы по умолчанию.
	DefaultLimit = 10
)

// ListQuery - параметры постраничной выборки сессий.
type ListQuery struct {
	Filter Filter

	// Page - номер страницы (начиная с 1).
	Page int

	// Limit - размер страницы.
	Limit int
}

// Normalize приводит некорректные значения пагинации к значениям по умолчанию.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	return q
}

// Offset возвращает смещение для выборки.
func (q ListQuery) Offset() int {
	q = q.Normalize()
	return (q.Page - 1) * q.Limit
}

// Pagination - метаданные страницы.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination вычисляет количество страниц.
func NewPagination(q ListQuery, total int) Pagination {
	q = q.Normalize()
	pages := 0
	if total > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}
	return Pagination{
		Page:  q.Page,
		Limit: q.Limit,
		Total: total,
		Pages: pages,
	}
}
