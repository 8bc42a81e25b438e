package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/mindgym/mindgym-hub/internal/domain/shared"
	"github.com/mindgym/mindgym-hub/internal/domain/user"
)

// UserRepository keeps registered users in memory. Safe for concurrent use.
type UserRepository struct {
	mu    sync.RWMutex
	byID  map[string]*user.User
	names map[string]string // lowercased username -> id
	mails map[string]string // email -> id
}

// NewUserRepository creates an empty repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:  make(map[string]*user.User),
		names: make(map[string]string),
		mails: make(map[string]string),
	}
}

// Create stores a copy of u.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u == nil {
		return shared.NewDomainError("user", "Create", shared.ErrInvalidInput, "user is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	nameKey := strings.ToLower(u.Username)
	if _, ok := r.byID[u.ID]; ok {
		return shared.ErrUserAlreadyExists
	}
	if _, ok := r.names[nameKey]; ok {
		return shared.ErrUserAlreadyExists
	}
	if _, ok := r.mails[u.Email]; ok {
		return shared.ErrUserAlreadyExists
	}

	cp := *u
	r.byID[u.ID] = &cp
	r.names[nameKey] = u.ID
	r.mails[u.Email] = u.ID
	return nil
}

// GetByID returns a copy of the stored user.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// ExistsByUsernameOrEmail reports whether the username or email is taken.
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.names[strings.ToLower(strings.TrimSpace(username))]; ok {
		return true, nil
	}
	_, ok := r.mails[strings.ToLower(strings.TrimSpace(email))]
	return ok, nil
}

// Username resolves a single display name.
func (r *UserRepository) Username(ctx context.Context, id string) (string, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// Usernames resolves display names in bulk. Unknown IDs are omitted.
func (r *UserRepository) Usernames(ctx context.Context, ids []string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out[id] = u.Username
		}
	}
	return out, nil
}

var _ user.Repository = (*UserRepository)(nil)
