package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindgym/mindgym-hub/internal/domain/shared"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser(NewUserParams{
		Username: "  neo  ",
		Email:    "Neo@Matrix.io",
		Password: "redpill",
		HashCost: 4,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "neo", u.Username)
	assert.Equal(t, "neo@matrix.io", u.Email)
	assert.NotEqual(t, "redpill", u.PasswordHash)
	assert.True(t, u.CheckPassword("redpill"))
	assert.False(t, u.CheckPassword("bluepill"))
}

func TestNewUser_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params NewUserParams
		want   error
	}{
		{"short username", NewUserParams{Username: "ab", Email: "a@b.co", Password: "secret"}, shared.ErrInvalidUsername},
		{"long username", NewUserParams{Username: strings.Repeat("x", 31), Email: "a@b.co", Password: "secret"}, shared.ErrInvalidUsername},
		{"bad email", NewUserParams{Username: "neo", Email: "not-an-email", Password: "secret"}, shared.ErrInvalidEmail},
		{"display name email", NewUserParams{Username: "neo", Email: "Neo <neo@matrix.io>", Password: "secret"}, shared.ErrInvalidEmail},
		{"short password", NewUserParams{Username: "neo", Email: "neo@matrix.io", Password: "12345"}, shared.ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.HashCost = 4
			_, err := NewUser(tt.params)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, shared.IsValidation(err))
		})
	}
}
