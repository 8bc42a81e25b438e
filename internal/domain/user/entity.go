// Package user содержит доменную модель игрока MindGym Hub.
// Для агрегатов статистики пользователь важен только как источник
// отображаемого имени: лидерборд показывает username, а не внутренний ID.
package user

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mindgym/mindgym-hub/internal/domain/shared"
)

const (
	// MinUsernameLength - минимальная длина имени.
	MinUsernameLength = 3
	// MaxUsernameLength - максимальная длина имени.
	MaxUsernameLength = 30
	// MinPasswordLength - минимальная длина пароля.
	MinPasswordLength = 6
)

// User - зарегистрированный игрок.
type User struct {
	// ID - внутренний идентификатор.
	ID string `json:"id"`

	// Username - уникальное отображаемое имя.
	Username string `json:"username"`

	// Email - уникальный адрес почты.
	Email string `json:"email"`

	// PasswordHash - bcrypt-хеш пароля, наружу не отдаётся.
	PasswordHash string `json:"-"`

	// CreatedAt - время регистрации.
	CreatedAt time.Time `json:"created_at"`
}

// NewUserParams содержит параметры регистрации.
type NewUserParams struct {
	Username string
	Email    string
	Password string

	// HashCost - стоимость bcrypt (0 = bcrypt.DefaultCost).
	HashCost int
}

// NewUser создаёт пользователя с валидацией и хешированием пароля.
func NewUser(params NewUserParams) (*User, error) {
	username := strings.TrimSpace(params.Username)
	if n := utf8.RuneCountInString(username); n < MinUsernameLength || n > MaxUsernameLength {
		return nil, shared.ErrInvalidUsername
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, shared.ErrInvalidEmail
	}

	if len(params.Password) < MinPasswordLength {
		return nil, shared.ErrInvalidPassword
	}

	cost := params.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), cost)
	if err != nil {
		return nil, shared.WrapError("user", "HashPassword", shared.ErrInvalidInput, "failed to hash password", err)
	}

	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// CheckPassword сравнивает пароль с сохранённым хешем.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
