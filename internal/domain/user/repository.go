package user

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// IdentityLookup разрешает внутренний ID пользователя в отображаемое имя.
// Неизвестный ID - это штатная ситуация, а не ошибка всей операции.
type IdentityLookup interface {
	// Username возвращает имя пользователя.
	// Возвращает ErrUserNotFound, если пользователь не найден.
	Username(ctx context.Context, id string) (string, error)

	// Usernames возвращает имена для набора ID.
	// Ненайденные ID просто отсутствуют в результате.
	Usernames(ctx context.Context, ids []string) (map[string]string, error)
}

// Repository определяет операции хранения пользователей.
type Repository interface {
	IdentityLookup

	// Create сохраняет нового пользователя.
	// Возвращает ErrUserAlreadyExists при совпадении username или email.
	Create(ctx context.Context, u *User) error

	// GetByID возвращает пользователя по ID.
	// Возвращает ErrUserNotFound, если пользователь не найден.
	GetByID(ctx context.Context, id string) (*User, error)

	// ExistsByUsernameOrEmail проверяет, занято ли имя или почта.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}
