// Package events defines the payloads published to downstream consumers.
package events

import "time"

// SessionRecorded is emitted when a new training session is accepted.
type SessionRecorded struct {
	SessionID    string    `json:"session_id"`
	TenantID     string    `json:"tenant_id"`
	AthleteID    string    `json:"athlete_id"`
	Sport        string    `json:"sport"`
	StartedAt    time.Time `json:"started_at"`
	DistanceKm   float64   `json:"distance_km"`
	DurationSec  int       `json:"duration_sec"`
	PaceSecPerKm *int      `json:"pace_sec_per_km,omitempty"`
	Calories     float64   `json:"calories"`
	Source       string    `json:"source"`
	Version      string    `json:"version"`
}

// SessionUpdated is emitted after an edit re-derives pace and month bucket.
type SessionUpdated struct {
	SessionID    string    `json:"session_id"`
	TenantID     string    `json:"tenant_id"`
	AthleteID    string    `json:"athlete_id"`
	Sport        string    `json:"sport"`
	StartedAt    time.Time `json:"started_at"`
	DistanceKm   float64   `json:"distance_km"`
	DurationSec  int       `json:"duration_sec"`
	PaceSecPerKm *int      `json:"pace_sec_per_km,omitempty"`
	Calories     float64   `json:"calories"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// SessionDeleted is emitted when a session is removed from the dashboard.
type SessionDeleted struct {
	SessionID  string    `json:"session_id"`
	TenantID   string    `json:"tenant_id"`
	AthleteID  string    `json:"athlete_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
