package query

import (
	"context"
	"errors"
	"strings"

	"github.com/mindgym/mindgym-hub/internal/domain/shared"
	"github.com/mindgym/mindgym-hub/internal/domain/user"
)

// GetUserQuery - запрос профиля пользователя.
type GetUserQuery struct {
	UserID string
}

// Validate проверяет корректность параметров запроса.
func (q *GetUserQuery) Validate() error {
	q.UserID = strings.TrimSpace(q.UserID)
	if q.UserID == "" {
		return errors.New("user_id is required")
	}
	return nil
}

// GetUserHandler возвращает профиль пользователя.
type GetUserHandler struct {
	users user.Repository
}

// NewGetUserHandler создаёт новый обработчик.
func NewGetUserHandler(users user.Repository) *GetUserHandler {
	return &GetUserHandler{users: users}
}

// Handle выполняет запрос. Неизвестный пользователь - ErrUserNotFound.
func (h *GetUserHandler) Handle(ctx context.Context, query GetUserQuery) (*user.User, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetUser", shared.ErrValidation, err.Error(), err)
	}

	u, err := h.users.GetByID(ctx, query.UserID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, shared.WrapError("query", "GetUser", shared.ErrDependencyUnavailable, "failed to load user", err)
	}
	return u, nil
}
