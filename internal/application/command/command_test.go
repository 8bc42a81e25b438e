package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindgym/mindgym-hub/internal/domain/session"
	"github.com/mindgym/mindgym-hub/internal/domain/shared"
	"github.com/mindgym/mindgym-hub/internal/domain/user"
	"github.com/mindgym/mindgym-hub/internal/infrastructure/persistence/memory"
)

// failingStore rejects every append.
type failingStore struct {
	*memory.SessionStore
}

func (failingStore) Append(context.Context, *session.Record) error {
	return errors.New("disk full")
}

func register(t *testing.T, users *memory.UserRepository, name string) *user.User {
	t.Helper()
	u, err := NewRegisterUserHandler(users, 4).Handle(context.Background(), RegisterUserCommand{
		Username: name,
		Email:    name + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return u
}

func TestRecordSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	users := memory.NewUserRepository()
	alice := register(t, users, "alice")

	got, err := NewRecordSessionHandler(store, users).Handle(ctx, RecordSessionCommand{
		UserID:           alice.ID,
		Score:            42,
		Level:            2,
		TimeSpentSeconds: 61,
		Category:         "focus",
	})
	require.NoError(t, err)

	assert.Equal(t, alice.ID, got.Session.UserID)
	assert.Equal(t, session.CategoryFocus, got.Session.Category)
	assert.True(t, got.Session.Completed)
	assert.Equal(t, 1, store.Len())
}

func TestRecordSession_Rejects(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	users := memory.NewUserRepository()
	alice := register(t, users, "alice")
	h := NewRecordSessionHandler(store, users)

	_, err := h.Handle(ctx, RecordSessionCommand{UserID: alice.ID, Score: -1, Level: 1})
	assert.ErrorIs(t, err, shared.ErrInvalidScore)

	_, err = h.Handle(ctx, RecordSessionCommand{UserID: alice.ID, Score: 1, Level: 1, Category: "chess"})
	assert.ErrorIs(t, err, shared.ErrInvalidCategory)

	_, err = h.Handle(ctx, RecordSessionCommand{UserID: "", Score: 1, Level: 1})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(ctx, RecordSessionCommand{UserID: "ghost", Score: 1, Level: 1})
	assert.True(t, shared.IsNotFound(err))

	assert.Equal(t, 0, store.Len())
}

func TestRecordSession_StoreFailure(t *testing.T) {
	h := NewRecordSessionHandler(failingStore{memory.NewSessionStore()}, nil)

	_, err := h.Handle(context.Background(), RecordSessionCommand{UserID: "u1", Score: 1, Level: 1})
	assert.True(t, shared.IsDependencyUnavailable(err))
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	alice := register(t, users, "alice")

	stored, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, stored.CheckPassword("secret123"))

	h := NewRegisterUserHandler(users, 4)

	_, err = h.Handle(ctx, RegisterUserCommand{Username: "alice", Email: "new@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, shared.ErrUserAlreadyExists)

	_, err = h.Handle(ctx, RegisterUserCommand{Username: "bob", Email: "ALICE@example.com", Password: "secret123"})
	assert.True(t, shared.IsAlreadyExists(err))

	_, err = h.Handle(ctx, RegisterUserCommand{Username: "bo", Email: "bo@example.com", Password: "secret123"})
	assert.True(t, shared.IsValidation(err))
}
