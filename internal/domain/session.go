package domain

import "time"

// SessionState represents the downstream delivery status of a session.
type SessionState string

const (
	SessionStatePending SessionState = "pending"
	SessionStateSynced  SessionState = "synced"
	SessionStateFailed  SessionState = "failed"
)

// Session is the canonical training record stored in Postgres. Pace and
// MonthBucket are derived from the other fields and never taken from input.
type Session struct {
	ID           string
	TenantID     string
	AthleteID    string
	Sport        string
	StartedAt    time.Time
	DistanceKm   float64
	DurationSec  int
	PaceSecPerKm *int
	Calories     float64
	Source       string
	Version      string
	State        SessionState
	MonthBucket  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
