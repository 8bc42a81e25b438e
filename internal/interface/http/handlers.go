package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mindgym/mindgym-hub/internal/application/command"
	"github.com/mindgym/mindgym-hub/internal/application/query"
	"github.com/mindgym/mindgym-hub/internal/domain/shared"
	"github.com/mindgym/mindgym-hub/pkg/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 16

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "MindGym Hub API",
		"version": "v1",
		"endpoints": map[string]string{
			"health":      "/health",
			"users":       "/api/v1/users",
			"leaderboard": "/api/v1/leaderboard",
		},
	})
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": s.config.Version,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// USER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type registerUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegisterUser handles POST /api/v1/users
func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	if !s.config.EnableRegistration {
		writeJSONError(w, http.StatusForbidden, "registration_disabled", "Registration is disabled")
		return
	}
	if s.deps.RegisterUserHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Registration handler not configured")
		return
	}

	var req registerUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := s.deps.RegisterUserHandler.Handle(r.Context(), command.RegisterUserCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, "register_user", err)
		return
	}

	writeJSON(w, http.StatusCreated, u)
}

// handleGetUser handles GET /api/v1/users/{id}
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetUserHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "User handler not configured")
		return
	}

	u, err := s.deps.GetUserHandler.Handle(r.Context(), query.GetUserQuery{UserID: chi.URLParam(r, "id")})
	if err != nil {
		s.writeError(w, r, "get_user", err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// handleGetUserStats handles GET /api/v1/users/{id}/stats
func (s *Server) handleGetUserStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetUserStatsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Stats handler not configured")
		return
	}

	summary, err := s.deps.GetUserStatsHandler.Handle(r.Context(), query.GetUserStatsQuery{UserID: chi.URLParam(r, "id")})
	s.metrics.ObserveAggregation("stats", err)
	if err != nil {
		s.writeError(w, r, "get_user_stats", err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// recordSessionRequest uses pointers so a missing field is told apart from zero.
type recordSessionRequest struct {
	Score            *int   `json:"score"`
	Level            *int   `json:"level"`
	TimeSpentSeconds *int   `json:"time_spent_seconds"`
	Category         string `json:"category"`
	Completed        *bool  `json:"completed"`
}

func (req recordSessionRequest) missing() []string {
	var fields []string
	if req.Score == nil {
		fields = append(fields, "score")
	}
	if req.Level == nil {
		fields = append(fields, "level")
	}
	if req.TimeSpentSeconds == nil {
		fields = append(fields, "time_spent_seconds")
	}
	return fields
}

// handleRecordSession handles POST /api/v1/users/{id}/sessions
func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) {
	if s.deps.RecordSessionHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Session handler not configured")
		return
	}

	var req recordSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if missing := req.missing(); len(missing) > 0 {
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "validation_error",
			"Missing required fields", strings.Join(missing, ", "))
		return
	}

	result, err := s.deps.RecordSessionHandler.Handle(r.Context(), command.RecordSessionCommand{
		UserID:           chi.URLParam(r, "id"),
		Score:            *req.Score,
		Level:            *req.Level,
		TimeSpentSeconds: *req.TimeSpentSeconds,
		Category:         req.Category,
		Completed:        req.Completed,
	})
	if err != nil {
		s.writeError(w, r, "record_session", err)
		return
	}

	s.metrics.ObserveSession(string(result.Session.Category))
	writeJSON(w, http.StatusCreated, result.Session)
}

// handleListSessions handles GET /api/v1/users/{id}/sessions
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListSessionsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Session handler not configured")
		return
	}

	result, err := s.deps.ListSessionsHandler.Handle(r.Context(), query.ListSessionsQuery{
		UserID:   chi.URLParam(r, "id"),
		Page:     getQueryParamInt(r, "page", 1),
		Limit:    s.capLimit(getQueryParamInt(r, "limit", 0)),
		Category: getQueryParam(r, "category", ""),
	})
	if err != nil {
		s.writeError(w, r, "list_sessions", err)
		return
	}

	writeJSONWithMeta(w, http.StatusOK, result.Sessions, &ResponseMeta{
		Total: result.Pagination.Total,
		Page:  result.Pagination.Page,
		Limit: result.Pagination.Limit,
		Pages: result.Pagination.Pages,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetLeaderboard handles GET /api/v1/leaderboard
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetLeaderboardHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Leaderboard handler not configured")
		return
	}

	result, err := s.deps.GetLeaderboardHandler.Handle(r.Context(), query.GetLeaderboardQuery{
		Limit:    s.capLimit(getQueryParamInt(r, "limit", 0)),
		Category: getQueryParam(r, "category", ""),
	})
	s.metrics.ObserveAggregation("leaderboard", err)
	if err != nil {
		s.writeError(w, r, "get_leaderboard", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetUserRank handles GET /api/v1/leaderboard/users/{id}
func (s *Server) handleGetUserRank(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetUserRankHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Rank handler not configured")
		return
	}

	result, err := s.deps.GetUserRankHandler.Handle(r.Context(), query.GetUserRankQuery{
		UserID:   chi.URLParam(r, "id"),
		Category: getQueryParam(r, "category", ""),
	})
	s.metrics.ObserveAggregation("rank", err)
	if err != nil {
		s.writeError(w, r, "get_user_rank", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// capLimit clamps a requested page size to MaxPageSize.
// Non-positive values pass through so the query applies its own default.
func (s *Server) capLimit(limit int) int {
	if limit > s.config.MaxPageSize {
		return s.config.MaxPageSize
	}
	return limit
}

// decodeJSON reads a single JSON object from the body. On failure it writes
// a 400 response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		details := err.Error()
		if errors.Is(err, io.EOF) {
			details = "request body is empty"
		}
		writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body", details)
		return false
	}
	return true
}

// writeError maps a domain error kind onto an HTTP status.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	message := err.Error()
	var de *shared.DomainError
	if errors.As(err, &de) && de.Message != "" {
		message = de.Message
	}

	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_error", message)
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", message)
	case shared.IsAlreadyExists(err):
		writeJSONError(w, http.StatusConflict, "already_exists", message)
	case shared.IsDependencyUnavailable(err):
		s.logFailure(r, op, err)
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "A backing service is unavailable, please retry later")
	default:
		s.logFailure(r, op, err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", fmt.Sprintf("Failed to %s", strings.ReplaceAll(op, "_", " ")))
	}
}

func (s *Server) logFailure(r *http.Request, op string, err error) {
	logger.FromContext(r.Context()).Error("request failed",
		logger.Operation(op),
		logger.String("path", r.URL.Path),
		logger.Err(err),
	)
}
