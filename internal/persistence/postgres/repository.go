package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/training/internal/domain"
	"example.com/training/internal/events"
	"example.com/training/internal/observability"
)

const sessionColumns = `session_id, tenant_id, athlete_id, sport, started_at, distance_km, duration_sec, pace_sec_per_km, calories, source, version, sync_state, month_bucket, created_at, updated_at`

// Repository provides Postgres-backed persistence for sessions and outbox events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByIdempotency checks if a session already exists for the supplied idempotency key.
func (r *Repository) FindByIdempotency(ctx context.Context, tenantID, athleteID, idempotencyKey string) (*domain.Session, error) {
	if idempotencyKey == "" {
		return nil, nil
	}

	query := `SELECT ` + sessionColumns + `
        FROM sessions WHERE tenant_id=$1 AND athlete_id=$2 AND idempotency_key=$3`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, query, tenantID, athleteID, idempotencyKey)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tx.Commit(ctx)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// Create persists the session and records outbox events inside a single transaction.
func (r *Repository) Create(ctx context.Context, session domain.Session, idempotencyKey string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", session.TenantID); err != nil {
		return err
	}

	insertSession := `INSERT INTO sessions (session_id, tenant_id, athlete_id, sport, started_at, distance_km, duration_sec, pace_sec_per_km, calories, source, idempotency_key, version, sync_state, month_bucket, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`

	_, err = tx.Exec(ctx, insertSession,
		session.ID,
		session.TenantID,
		session.AthleteID,
		session.Sport,
		session.StartedAt,
		session.DistanceKm,
		session.DurationSec,
		session.PaceSecPerKm,
		session.Calories,
		session.Source,
		nullIfEmpty(idempotencyKey),
		session.Version,
		session.State,
		session.MonthBucket,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, session, "session.recorded", events.SessionRecorded{
		SessionID:    session.ID,
		TenantID:     session.TenantID,
		AthleteID:    session.AthleteID,
		Sport:        session.Sport,
		StartedAt:    session.StartedAt,
		DistanceKm:   session.DistanceKm,
		DurationSec:  session.DurationSec,
		PaceSecPerKm: session.PaceSecPerKm,
		Calories:     session.Calories,
		Source:       session.Source,
		Version:      session.Version,
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordSessionPersisted(session.UpdatedAt)
	return nil
}

// Update rewrites the editable columns and records a session.updated event.
func (r *Repository) Update(ctx context.Context, session domain.Session) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", session.TenantID); err != nil {
		return err
	}

	const stmt = `UPDATE sessions
        SET sport=$3, started_at=$4, distance_km=$5, duration_sec=$6, pace_sec_per_km=$7, calories=$8, month_bucket=$9, updated_at=$10
        WHERE tenant_id=$1 AND session_id=$2`

	tag, err := tx.Exec(ctx, stmt,
		session.TenantID,
		session.ID,
		session.Sport,
		session.StartedAt,
		session.DistanceKm,
		session.DurationSec,
		session.PaceSecPerKm,
		session.Calories,
		session.MonthBucket,
		session.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrSessionNotFound
		return err
	}

	if err = insertOutbox(ctx, tx, session, "session.updated", events.SessionUpdated{
		SessionID:    session.ID,
		TenantID:     session.TenantID,
		AthleteID:    session.AthleteID,
		Sport:        session.Sport,
		StartedAt:    session.StartedAt,
		DistanceKm:   session.DistanceKm,
		DurationSec:  session.DurationSec,
		PaceSecPerKm: session.PaceSecPerKm,
		Calories:     session.Calories,
		OccurredAt:   session.UpdatedAt,
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordSessionPersisted(session.UpdatedAt)
	return nil
}

// Delete removes a session, recording a session.deleted event in the same
// transaction. It reports whether a row was actually removed.
func (r *Repository) Delete(ctx context.Context, tenantID, sessionID string) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		return false, err
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE tenant_id=$1 AND session_id=$2 FOR UPDATE`
	row := tx.QueryRow(ctx, query, tenantID, sessionID)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = nil
			return false, tx.Commit(ctx)
		}
		return false, err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM sessions WHERE tenant_id=$1 AND session_id=$2`, tenantID, sessionID); err != nil {
		return false, err
	}

	if err = insertOutbox(ctx, tx, *session, "session.deleted", events.SessionDeleted{
		SessionID:  session.ID,
		TenantID:   session.TenantID,
		AthleteID:  session.AthleteID,
		OccurredAt: session.UpdatedAt,
	}); err != nil {
		return false, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return false, err
	}
	return true, nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, session domain.Session, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta := eventCatalog[eventType]
	if meta.Topic == "" {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	partitionKey := meta.PartitionKeyFn(session)
	dedupeKey := fmt.Sprintf("%s:%s", session.ID, eventType)

	const stmt = `INSERT INTO outbox (tenant_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, stmt,
		session.TenantID,
		"session",
		session.ID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		partitionKey,
		body,
		dedupeKey,
	)
	return err
}

// Get retrieves a session by ID.
func (r *Repository) Get(ctx context.Context, tenantID, sessionID string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + `
        FROM sessions WHERE tenant_id=$1 AND session_id=$2`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, query, tenantID, sessionID)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if err := tx.Commit(ctx); err != nil {
				return nil, err
			}
			return nil, nil
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// ListByAthlete returns sessions for an athlete ordered by time.
func (r *Repository) ListByAthlete(ctx context.Context, tenantID, athleteID string, cursor *domain.Cursor, limit int) ([]domain.Session, *domain.Cursor, error) {
	args := []interface{}{tenantID, athleteID, limit}
	query := `SELECT ` + sessionColumns + `
        FROM sessions WHERE tenant_id=$1 AND athlete_id=$2`

	if cursor != nil {
		query += ` AND (started_at, session_id) < ($4, $5)`
		args = append(args, cursor.StartedAt, cursor.ID)
	}

	query += ` ORDER BY started_at DESC, session_id DESC LIMIT $3`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		return nil, nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.Session, 0, limit)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{StartedAt: last.StartedAt, ID: last.ID}
	}

	return results, nextCursor, nil
}

// MonthTotalsByAthlete aggregates distance, duration, and calories per
// month bucket. NULL aggregates collapse to zero.
func (r *Repository) MonthTotalsByAthlete(ctx context.Context, tenantID, athleteID string) ([]domain.MonthTotals, error) {
	const query = `SELECT month_bucket, COUNT(*),
            COALESCE(SUM(distance_km), 0), COALESCE(SUM(duration_sec), 0), COALESCE(SUM(calories), 0)
        FROM sessions
        WHERE tenant_id=$1 AND athlete_id=$2 AND month_bucket IS NOT NULL AND month_bucket <> ''
        GROUP BY month_bucket`

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, tenantID, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]domain.MonthTotals, 0)
	for rows.Next() {
		var m domain.MonthTotals
		if err := rows.Scan(&m.Month, &m.Sessions, &m.DistanceKm, &m.DurationSec, &m.Calories); err != nil {
			return nil, err
		}
		totals = append(totals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return totals, nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	if err := row.Scan(&s.ID, &s.TenantID, &s.AthleteID, &s.Sport, &s.StartedAt, &s.DistanceKm, &s.DurationSec, &s.PaceSecPerKm, &s.Calories, &s.Source, &s.Version, &s.State, &s.MonthBucket, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic          string
	SchemaSubject  string
	PartitionKeyFn func(domain.Session) string
}

var eventCatalog = map[string]EventMetadata{
	"session.recorded": {
		Topic:         "training_sessions",
		SchemaSubject: "training_sessions-value",
		PartitionKeyFn: func(s domain.Session) string {
			return fmt.Sprintf("%s:%s", s.TenantID, s.AthleteID)
		},
	},
	"session.updated": {
		Topic:         "training_session_changes",
		SchemaSubject: "training_session_changes-value",
		PartitionKeyFn: func(s domain.Session) string {
			return s.ID
		},
	},
	"session.deleted": {
		Topic:         "training_session_changes",
		SchemaSubject: "training_session_changes-value",
		PartitionKeyFn: func(s domain.Session) string {
			return s.ID
		},
	},
}
