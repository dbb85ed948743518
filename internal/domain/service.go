// Package domain defines the business logic for the training dashboard.
package domain

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrIdempotentReplay indicates an existing session was found for the provided idempotency key.
	ErrIdempotentReplay = errors.New("session already exists for idempotency key")
	// ErrSessionNotFound is returned when a session cannot be located.
	ErrSessionNotFound = errors.New("session not found")
)

// Cursor models the pagination token.
type Cursor struct {
	StartedAt time.Time
	ID        string
}

// MonthTotals aggregates one month bucket of an athlete's training.
type MonthTotals struct {
	Month       string
	Sessions    int
	DistanceKm  float64
	DurationSec int
	Calories    float64
}

// SessionRepository captures persistence operations.
type SessionRepository interface {
	FindByIdempotency(ctx context.Context, tenantID, athleteID, idempotencyKey string) (*Session, error)
	Create(ctx context.Context, session Session, idempotencyKey string) error
	Update(ctx context.Context, session Session) error
	Delete(ctx context.Context, tenantID, sessionID string) (bool, error)
	Get(ctx context.Context, tenantID, sessionID string) (*Session, error)
	ListByAthlete(ctx context.Context, tenantID, athleteID string, cursor *Cursor, limit int) ([]Session, *Cursor, error)
	MonthTotalsByAthlete(ctx context.Context, tenantID, athleteID string) ([]MonthTotals, error)
}

// Service orchestrates session workflows.
type Service struct {
	repo SessionRepository
}

// NewService constructs a Service.
func NewService(repo SessionRepository) *Service {
	return &Service{repo: repo}
}

// RecordSessionInput captures the payload from the API layer or the syncer.
type RecordSessionInput struct {
	TenantID       string
	AthleteID      string
	Sport          string
	StartedAt      time.Time
	DistanceKm     float64
	DurationSec    int
	Calories       float64
	Source         string
	IdempotencyKey string
}

// RecordSession handles idempotent create semantics. The bool result
// reports whether an existing session was replayed.
func (s *Service) RecordSession(ctx context.Context, input RecordSessionInput) (*Session, bool, error) {
	existing, err := s.repo.FindByIdempotency(ctx, input.TenantID, input.AthleteID, input.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}

	now := time.Now().UTC()
	session := Session{
		ID:           uuid.NewString(),
		TenantID:     input.TenantID,
		AthleteID:    input.AthleteID,
		Sport:        input.Sport,
		StartedAt:    input.StartedAt.UTC(),
		DistanceKm:   input.DistanceKm,
		DurationSec:  input.DurationSec,
		PaceSecPerKm: ComputePace(input.DistanceKm, input.DurationSec),
		Calories:     input.Calories,
		Source:       input.Source,
		Version:      "v1",
		State:        SessionStatePending,
		MonthBucket:  MonthBucket(input.StartedAt),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, session, input.IdempotencyKey); err != nil {
		return nil, false, err
	}

	return &session, false, nil
}

// UpdateSessionInput carries the editable session fields.
type UpdateSessionInput struct {
	TenantID    string
	SessionID   string
	Sport       string
	StartedAt   time.Time
	DistanceKm  float64
	DurationSec int
	Calories    float64
}

// UpdateSession replaces the editable fields and re-derives pace and the
// month bucket from the new values.
func (s *Service) UpdateSession(ctx context.Context, input UpdateSessionInput) (*Session, error) {
	session, err := s.repo.Get(ctx, input.TenantID, input.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	session.Sport = input.Sport
	session.StartedAt = input.StartedAt.UTC()
	session.DistanceKm = input.DistanceKm
	session.DurationSec = input.DurationSec
	session.Calories = input.Calories
	session.PaceSecPerKm = ComputePace(input.DistanceKm, input.DurationSec)
	session.MonthBucket = MonthBucket(input.StartedAt)
	session.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, *session); err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession removes a session by ID.
func (s *Service) DeleteSession(ctx context.Context, tenantID, sessionID string) error {
	deleted, err := s.repo.Delete(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSessionNotFound
	}
	return nil
}

// GetSession fetches by ID.
func (s *Service) GetSession(ctx context.Context, tenantID, sessionID string) (*Session, error) {
	session, err := s.repo.Get(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// ListSessions fetches sessions with cursor pagination.
func (s *Service) ListSessions(ctx context.Context, tenantID, athleteID string, cursor *Cursor, limit int) ([]Session, *Cursor, error) {
	return s.repo.ListByAthlete(ctx, tenantID, athleteID, cursor, limit)
}

// Dashboard combines per-month totals with overall totals and a recent
// session timeline.
type Dashboard struct {
	Months      []MonthTotals
	Totals      MonthTotals
	Recent      []Session
	RecentLimit int
}

// GetDashboard assembles the monthly summary view. Months sort most
// recent first; buckets that fail to parse sort after the ones that do.
func (s *Service) GetDashboard(ctx context.Context, tenantID, athleteID string, recentLimit int) (*Dashboard, error) {
	months, err := s.repo.MonthTotalsByAthlete(ctx, tenantID, athleteID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(months, func(i, j int) bool {
		ti, erri := ParseMonthBucket(months[i].Month)
		tj, errj := ParseMonthBucket(months[j].Month)
		if erri != nil || errj != nil {
			return erri == nil && errj != nil
		}
		return ti.After(tj)
	})

	totals := MonthTotals{Month: "all"}
	for _, m := range months {
		totals.Sessions += m.Sessions
		totals.DistanceKm += m.DistanceKm
		totals.DurationSec += m.DurationSec
		totals.Calories += m.Calories
	}

	recent, _, err := s.repo.ListByAthlete(ctx, tenantID, athleteID, nil, recentLimit)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Months:      months,
		Totals:      totals,
		Recent:      recent,
		RecentLimit: recentLimit,
	}, nil
}
