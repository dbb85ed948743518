package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/training/internal/domain"
)

// BackfillReport summarises a month-bucket backfill run.
type BackfillReport struct {
	ColumnAdded bool
	Updated     int
	Failed      int
}

// BackfillMonthBuckets adds the month_bucket column when a pre-bucket
// database is encountered and populates it from started_at for rows where
// it is missing. Databases created before the monthly dashboard stored
// sessions without the grouping column.
func BackfillMonthBuckets(ctx context.Context, pool *pgxpool.Pool) (BackfillReport, error) {
	var report BackfillReport

	var hasColumn bool
	err := pool.QueryRow(ctx,
		`SELECT EXISTS (
            SELECT 1 FROM information_schema.columns
            WHERE table_name = 'sessions' AND column_name = 'month_bucket'
        )`).Scan(&hasColumn)
	if err != nil {
		return report, err
	}

	if !hasColumn {
		if _, err := pool.Exec(ctx, `ALTER TABLE sessions ADD COLUMN month_bucket TEXT`); err != nil {
			return report, err
		}
		report.ColumnAdded = true
	}

	rows, err := pool.Query(ctx,
		`SELECT session_id, tenant_id, started_at FROM sessions
         WHERE month_bucket IS NULL OR month_bucket = ''`)
	if err != nil {
		return report, err
	}
	defer rows.Close()

	type pending struct {
		id        string
		tenantID  string
		startedAt time.Time
	}
	var backlog []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.tenantID, &p.startedAt); err != nil {
			return report, err
		}
		backlog = append(backlog, p)
	}
	if err := rows.Err(); err != nil {
		return report, err
	}

	var errs error
	for _, p := range backlog {
		if p.startedAt.IsZero() {
			report.Failed++
			continue
		}
		bucket := domain.MonthBucket(p.startedAt)
		if _, err := pool.Exec(ctx,
			`UPDATE sessions SET month_bucket=$1 WHERE tenant_id=$2 AND session_id=$3`,
			bucket, p.tenantID, p.id,
		); err != nil {
			report.Failed++
			errs = errors.Join(errs, err)
			continue
		}
		report.Updated++
	}

	return report, errs
}
