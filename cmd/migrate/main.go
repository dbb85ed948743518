package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/training/internal/config"
	persistence "example.com/training/internal/persistence/postgres"
)

// Backfills the month_bucket column for databases created before the
// monthly dashboard. Safe to run repeatedly.
func main() {
	cfg := config.Load()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	report, err := persistence.BackfillMonthBuckets(ctx, pool)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if report.ColumnAdded {
		log.Print("added month_bucket column")
	}
	log.Printf("migration complete: %d rows updated, %d rows skipped", report.Updated, report.Failed)
}
