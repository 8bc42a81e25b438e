package command

import (
	"context"

	"github.com/mindgym/mindgym-hub/internal/domain/shared"
	"github.com/mindgym/mindgym-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER COMMAND
// Creates a player account. The username is what the leaderboard displays.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserCommand contains the registration form.
type RegisterUserCommand struct {
	Username string
	Email    string
	Password string
}

// RegisterUserHandler handles the RegisterUserCommand.
type RegisterUserHandler struct {
	users    user.Repository
	hashCost int
}

// NewRegisterUserHandler creates a new handler.
// hashCost is passed to bcrypt; 0 selects the library default.
func NewRegisterUserHandler(users user.Repository, hashCost int) *RegisterUserHandler {
	return &RegisterUserHandler{
		users:    users,
		hashCost: hashCost,
	}
}

// Handle executes the command.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*user.User, error) {
	u, err := user.NewUser(user.NewUserParams{
		Username: cmd.Username,
		Email:    cmd.Email,
		Password: cmd.Password,
		HashCost: h.hashCost,
	})
	if err != nil {
		return nil, err
	}

	exists, err := h.users.ExistsByUsernameOrEmail(ctx, u.Username, u.Email)
	if err != nil {
		return nil, shared.WrapError("command", "RegisterUser", shared.ErrDependencyUnavailable, "failed to check uniqueness", err)
	}
	if exists {
		return nil, shared.ErrUserAlreadyExists
	}

	if err := h.users.Create(ctx, u); err != nil {
		// Concurrent registration can still win the race.
		if shared.IsAlreadyExists(err) {
			return nil, shared.ErrUserAlreadyExists
		}
		return nil, shared.WrapError("command", "RegisterUser", shared.ErrDependencyUnavailable, "failed to create user", err)
	}

	return u, nil
}
