// Package postgres stores training sessions and their outbox events.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements create the tables used by the dashboard. Statements are
// idempotent so every binary can run them at startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
        session_id      TEXT PRIMARY KEY,
        tenant_id       TEXT NOT NULL,
        athlete_id      TEXT NOT NULL,
        sport           TEXT NOT NULL,
        started_at      TIMESTAMPTZ NOT NULL,
        distance_km     DOUBLE PRECISION NOT NULL DEFAULT 0,
        duration_sec    INTEGER NOT NULL DEFAULT 0,
        pace_sec_per_km INTEGER,
        calories        DOUBLE PRECISION NOT NULL DEFAULT 0,
        source          TEXT NOT NULL,
        idempotency_key TEXT,
        version         TEXT NOT NULL,
        sync_state      TEXT NOT NULL,
        month_bucket    TEXT,
        created_at      TIMESTAMPTZ NOT NULL,
        updated_at      TIMESTAMPTZ NOT NULL,
        UNIQUE (tenant_id, athlete_id, idempotency_key)
    )`,
	`CREATE INDEX IF NOT EXISTS sessions_athlete_started_idx
        ON sessions (tenant_id, athlete_id, started_at DESC, session_id DESC)`,
	`CREATE INDEX IF NOT EXISTS sessions_month_bucket_idx
        ON sessions (tenant_id, athlete_id, month_bucket)`,
	`CREATE TABLE IF NOT EXISTS outbox (
        event_id       BIGSERIAL PRIMARY KEY,
        tenant_id      TEXT NOT NULL,
        aggregate_type TEXT NOT NULL,
        aggregate_id   TEXT NOT NULL,
        event_type     TEXT NOT NULL,
        topic          TEXT NOT NULL,
        schema_subject TEXT NOT NULL,
        partition_key  TEXT NOT NULL,
        payload        JSONB NOT NULL,
        dedupe_key     TEXT,
        claimed_at     TIMESTAMPTZ,
        published_at   TIMESTAMPTZ,
        created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS outbox_dlq (
        dlq_id            BIGSERIAL PRIMARY KEY,
        tenant_id         TEXT NOT NULL,
        event_id          BIGINT NOT NULL,
        event_type        TEXT NOT NULL,
        topic             TEXT NOT NULL,
        payload           JSONB NOT NULL,
        reason            TEXT NOT NULL,
        aggregate_type    TEXT NOT NULL,
        aggregate_id      TEXT NOT NULL,
        schema_subject    TEXT NOT NULL,
        partition_key     TEXT NOT NULL,
        retry_count       INTEGER NOT NULL DEFAULT 0,
        last_attempt_at   TIMESTAMPTZ,
        next_retry_at     TIMESTAMPTZ,
        quarantined_at    TIMESTAMPTZ,
        quarantine_reason TEXT,
        created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS training_event_log (
        log_id         BIGSERIAL PRIMARY KEY,
        event_type     TEXT NOT NULL,
        tenant_id      TEXT NOT NULL,
        schema_id      INTEGER NOT NULL,
        schema_subject TEXT NOT NULL,
        topic          TEXT NOT NULL,
        partition      INTEGER NOT NULL,
        record_offset  BIGINT NOT NULL,
        payload        JSONB NOT NULL,
        received_at    TIMESTAMPTZ NOT NULL
    )`,
}

// EnsureSchema creates the dashboard tables when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
