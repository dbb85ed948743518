package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/training/internal/config"
	"example.com/training/internal/domain"
	persistence "example.com/training/internal/persistence/postgres"
	"example.com/training/internal/strava"
	"example.com/training/internal/syncer"
)

// One-shot Strava pull for operators and cron jobs. The API binary runs
// the same worker continuously.
func main() {
	cfg := config.Load()

	if !cfg.StravaConfigured() {
		log.Fatal("strava credentials not configured (STRAVA_CLIENT_ID, STRAVA_CLIENT_SECRET, STRAVA_REFRESH_TOKEN, SYNC_ATHLETE_ID)")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := persistence.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	client := strava.NewClient(strava.Config{
		BaseURL:      cfg.StravaBaseURL,
		TokenURL:     cfg.StravaTokenURL,
		ClientID:     cfg.StravaClientID,
		ClientSecret: cfg.StravaClientSecret,
		RefreshToken: cfg.StravaRefreshToken,
	})

	service := domain.NewService(persistence.NewRepository(pool))
	worker := syncer.NewWorker(client, service, syncer.Config{
		TenantID:  cfg.SyncTenantID,
		AthleteID: cfg.SyncAthleteID,
		Interval:  cfg.SyncInterval,
		Lookback:  cfg.SyncLookback,
	})

	if err := worker.RunOnce(ctx); err != nil {
		log.Fatalf("sync failed: %v", err)
	}
	log.Print("sync complete")
}
