// Package api exposes HTTP handlers for the training dashboard.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/training/internal/auth"
	"example.com/training/internal/domain"
	"example.com/training/internal/persistence"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/sessions", h.sessions)
	mux.HandleFunc("/v1/sessions/", h.sessionByID)
	mux.HandleFunc("/v1/dashboard", h.dashboard)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) sessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.recordSession(w, r)
	case http.MethodGet:
		h.listSessions(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) sessionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing session id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getSession(w, r, id)
	case http.MethodPut:
		h.updateSession(w, r, id)
	case http.MethodDelete:
		h.deleteSession(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) recordSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeTrainingWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope training:write required")
		return
	}

	var req RecordSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")

	session, replay, err := h.service.RecordSession(r.Context(), domain.RecordSessionInput{
		TenantID:       claims.TenantID,
		AthleteID:      req.AthleteID,
		Sport:          req.Sport,
		StartedAt:      req.StartedAt,
		DistanceKm:     req.DistanceKm,
		DurationSec:    req.DurationSec,
		Calories:       req.Calories,
		Source:         req.Source,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := RecordSessionResponse{
		SessionID: session.ID,
		Status:    string(session.State),
		Replay:    replay,
	}

	status := http.StatusAccepted
	if replay {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeTrainingRead) && !claims.HasScope(auth.ScopeTrainingWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope training:read required")
		return
	}

	session, err := h.service.GetSession(r.Context(), claims.TenantID, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toSessionView(*session))
}

func (h *Handler) updateSession(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeTrainingWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope training:write required")
		return
	}

	var req UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	session, err := h.service.UpdateSession(r.Context(), domain.UpdateSessionInput{
		TenantID:    claims.TenantID,
		SessionID:   id,
		Sport:       req.Sport,
		StartedAt:   req.StartedAt,
		DistanceKm:  req.DistanceKm,
		DurationSec: req.DurationSec,
		Calories:    req.Calories,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toSessionView(*session))
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeTrainingWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope training:write required")
		return
	}

	if err := h.service.DeleteSession(r.Context(), claims.TenantID, id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeTrainingRead) && !claims.HasScope(auth.ScopeTrainingWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope training:read required")
		return
	}

	athleteID := r.URL.Query().Get("athlete_id")
	if athleteID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing athlete_id parameter")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursorToken := r.URL.Query().Get("cursor")
	cursor, err := persistence.DecodeCursor(cursorToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	sessions, next, err := h.service.ListSessions(r.Context(), claims.TenantID, athleteID, cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, toSessionView(session))
	}

	resp := ListSessionsResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeTrainingRead) && !claims.HasScope(auth.ScopeTrainingWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope training:read required")
		return
	}

	athleteID := r.URL.Query().Get("athlete_id")
	if strings.TrimSpace(athleteID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing athlete_id parameter")
		return
	}

	recentLimit := 10
	if raw := r.URL.Query().Get("recent_limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 50 {
				parsed = 50
			}
			recentLimit = parsed
		}
	}

	dashboard, err := h.service.GetDashboard(r.Context(), claims.TenantID, athleteID, recentLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	resp := DashboardResponse{
		Months:      make([]MonthTotalsView, 0, len(dashboard.Months)),
		Totals:      toMonthTotalsView(dashboard.Totals),
		Recent:      make([]SessionView, 0, len(dashboard.Recent)),
		RecentLimit: dashboard.RecentLimit,
	}
	for _, m := range dashboard.Months {
		resp.Months = append(resp.Months, toMonthTotalsView(m))
	}
	for _, session := range dashboard.Recent {
		resp.Recent = append(resp.Recent, toSessionView(session))
	}

	writeJSON(w, http.StatusOK, resp)
}

// RecordSessionRequest is the payload for POST /v1/sessions.
type RecordSessionRequest struct {
	AthleteID   string    `json:"athlete_id"`
	Sport       string    `json:"sport"`
	StartedAt   time.Time `json:"started_at"`
	DistanceKm  float64   `json:"distance_km"`
	DurationSec int       `json:"duration_sec"`
	Calories    float64   `json:"calories"`
	Source      string    `json:"source"`
}

// Validate ensures request correctness.
func (r RecordSessionRequest) Validate() error {
	if strings.TrimSpace(r.AthleteID) == "" {
		return errors.New("athlete_id is required")
	}
	if strings.TrimSpace(r.Sport) == "" {
		return errors.New("sport is required")
	}
	if r.StartedAt.IsZero() {
		return errors.New("started_at is required")
	}
	if r.DistanceKm < 0 {
		return errors.New("distance_km must be >= 0")
	}
	if r.DurationSec <= 0 {
		return errors.New("duration_sec must be > 0")
	}
	if r.Calories < 0 {
		return errors.New("calories must be >= 0")
	}
	if strings.TrimSpace(r.Source) == "" {
		return errors.New("source is required")
	}
	return nil
}

// UpdateSessionRequest is the payload for PUT /v1/sessions/{id}.
type UpdateSessionRequest struct {
	Sport       string    `json:"sport"`
	StartedAt   time.Time `json:"started_at"`
	DistanceKm  float64   `json:"distance_km"`
	DurationSec int       `json:"duration_sec"`
	Calories    float64   `json:"calories"`
}

// Validate ensures request correctness.
func (r UpdateSessionRequest) Validate() error {
	if strings.TrimSpace(r.Sport) == "" {
		return errors.New("sport is required")
	}
	if r.StartedAt.IsZero() {
		return errors.New("started_at is required")
	}
	if r.DistanceKm < 0 {
		return errors.New("distance_km must be >= 0")
	}
	if r.DurationSec <= 0 {
		return errors.New("duration_sec must be > 0")
	}
	if r.Calories < 0 {
		return errors.New("calories must be >= 0")
	}
	return nil
}

// RecordSessionResponse describes the response body for record.
type RecordSessionResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Replay    bool   `json:"idempotent_replay"`
}

// SessionView exposes full details about a session.
type SessionView struct {
	SessionID   string    `json:"session_id"`
	TenantID    string    `json:"tenant_id"`
	AthleteID   string    `json:"athlete_id"`
	Sport       string    `json:"sport"`
	StartedAt   time.Time `json:"started_at"`
	DistanceKm  float64   `json:"distance_km"`
	DurationSec int       `json:"duration_sec"`
	Pace        string    `json:"pace,omitempty"`
	Calories    float64   `json:"calories"`
	Source      string    `json:"source"`
	Version     string    `json:"version"`
	Status      string    `json:"status"`
	Month       string    `json:"month"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListSessionsResponse packages list results.
type ListSessionsResponse struct {
	Items      []SessionView `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// MonthTotalsView renders one month bucket for the dashboard.
type MonthTotalsView struct {
	Month       string  `json:"month"`
	Sessions    int     `json:"sessions"`
	DistanceKm  float64 `json:"distance_km"`
	DurationSec int     `json:"duration_sec"`
	Calories    float64 `json:"calories"`
}

// DashboardResponse merges monthly totals with recent sessions.
type DashboardResponse struct {
	Months      []MonthTotalsView `json:"months"`
	Totals      MonthTotalsView   `json:"totals"`
	Recent      []SessionView     `json:"recent"`
	RecentLimit int               `json:"recent_limit"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toSessionView(session domain.Session) SessionView {
	return SessionView{
		SessionID:   session.ID,
		TenantID:    session.TenantID,
		AthleteID:   session.AthleteID,
		Sport:       session.Sport,
		StartedAt:   session.StartedAt,
		DistanceKm:  session.DistanceKm,
		DurationSec: session.DurationSec,
		Pace:        domain.FormatPace(session.PaceSecPerKm),
		Calories:    session.Calories,
		Source:      session.Source,
		Version:     session.Version,
		Status:      string(session.State),
		Month:       session.MonthBucket,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}
}

func toMonthTotalsView(m domain.MonthTotals) MonthTotalsView {
	return MonthTotalsView{
		Month:       m.Month,
		Sessions:    m.Sessions,
		DistanceKm:  m.DistanceKm,
		DurationSec: m.DurationSec,
		Calories:    m.Calories,
	}
}
