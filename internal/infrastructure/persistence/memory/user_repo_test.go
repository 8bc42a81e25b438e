package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindgym/mindgym-hub/internal/domain/shared"
	"github.com/mindgym/mindgym-hub/internal/domain/user"
)

func newUser(t *testing.T, name, email string) *user.User {
	t.Helper()
	u, err := user.NewUser(user.NewUserParams{
		Username: name,
		Email:    email,
		Password: "secret123",
		HashCost: 4,
	})
	require.NoError(t, err)
	return u
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	alice := newUser(t, "alice", "alice@example.com")
	bob := newUser(t, "bob", "bob@example.com")
	require.NoError(t, repo.Create(ctx, alice))
	require.NoError(t, repo.Create(ctx, bob))

	name, err := repo.Username(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	names, err := repo.Usernames(ctx, []string{alice.ID, "ghost", bob.ID})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{alice.ID: "alice", bob.ID: "bob"}, names)

	_, err = repo.Username(ctx, "ghost")
	assert.True(t, shared.IsNotFound(err))
}

func TestUserRepository_RejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	require.NoError(t, repo.Create(ctx, newUser(t, "alice", "alice@example.com")))

	err := repo.Create(ctx, newUser(t, "ALICE", "other@example.com"))
	assert.True(t, shared.IsAlreadyExists(err))

	err = repo.Create(ctx, newUser(t, "alice2", "alice@example.com"))
	assert.True(t, shared.IsAlreadyExists(err))

	exists, err := repo.ExistsByUsernameOrEmail(ctx, "nobody", "Alice@Example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsernameOrEmail(ctx, "nobody", "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}
