// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mindgym/mindgym-hub/internal/domain/session"
	"github.com/mindgym/mindgym-hub/internal/domain/shared"
	"github.com/mindgym/mindgym-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD SESSION COMMAND
// Appends one finished (or abandoned) game to the player's history.
// Sessions are immutable once stored: every aggregate is derived from them.
// ══════════════════════════════════════════════════════════════════════════════

// RecordSessionCommand contains the data of a finished game.
type RecordSessionCommand struct {
	// UserID is the owner of the session.
	UserID string

	// Score is the points earned (>= 0).
	Score int

	// Level is the level reached (>= 1).
	Level int

	// TimeSpentSeconds is the game duration.
	TimeSpentSeconds int

	// Category is the game mode. Empty means "mixed".
	Category string

	// Completed reports whether the game was finished. Nil means true.
	Completed *bool
}

// Validate validates the command.
func (c RecordSessionCommand) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("record_session: user_id is required")
	}
	return nil
}

// RecordSessionResult contains the stored session.
type RecordSessionResult struct {
	Session    *session.Record
	RecordedAt time.Time
}

// RecordSessionHandler handles the RecordSessionCommand.
type RecordSessionHandler struct {
	sessions   session.Store
	identities user.IdentityLookup
}

// NewRecordSessionHandler creates a new handler.
// identities may be nil, in which case the owner is not checked.
func NewRecordSessionHandler(sessions session.Store, identities user.IdentityLookup) *RecordSessionHandler {
	return &RecordSessionHandler{
		sessions:   sessions,
		identities: identities,
	}
}

// Handle executes the command.
func (h *RecordSessionHandler) Handle(ctx context.Context, cmd RecordSessionCommand) (*RecordSessionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("command", "RecordSession", shared.ErrValidation, err.Error(), err)
	}

	record, err := session.NewRecord(session.NewRecordParams{
		UserID:           strings.TrimSpace(cmd.UserID),
		Score:            cmd.Score,
		Level:            cmd.Level,
		TimeSpentSeconds: cmd.TimeSpentSeconds,
		Category:         cmd.Category,
		Completed:        cmd.Completed,
	})
	if err != nil {
		return nil, err
	}

	if h.identities != nil {
		if _, err := h.identities.Username(ctx, record.UserID); err != nil {
			if shared.IsNotFound(err) {
				return nil, err
			}
			return nil, shared.WrapError("command", "RecordSession", shared.ErrDependencyUnavailable, "failed to resolve user", err)
		}
	}

	if err := h.sessions.Append(ctx, record); err != nil {
		return nil, shared.WrapError("command", "RecordSession", shared.ErrDependencyUnavailable, "failed to store session", err)
	}

	return &RecordSessionResult{
		Session:    record,
		RecordedAt: time.Now().UTC(),
	}, nil
}
