// Package syncer pulls recent Strava activities into the dashboard.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"example.com/training/internal/domain"
	"example.com/training/internal/strava"
)

const activitiesPerPage = 50

// ActivitySource is the slice of the Strava client the worker needs.
type ActivitySource interface {
	ListActivities(ctx context.Context, after time.Time, page, perPage int) ([]strava.SummaryActivity, error)
}

// Recorder is the slice of the domain service the worker needs.
type Recorder interface {
	RecordSession(ctx context.Context, input domain.RecordSessionInput) (*domain.Session, bool, error)
}

// Config identifies whose sessions the pulled activities become.
type Config struct {
	TenantID  string
	AthleteID string
	Interval  time.Duration
	Lookback  time.Duration
}

// Worker periodically drains the athlete's recent Strava activities into
// the session store. Replays are deduplicated by idempotency key, so
// overlapping windows are harmless.
type Worker struct {
	source   ActivitySource
	recorder Recorder
	cfg      Config
	logger   *log.Logger

	shutdownComplete chan struct{}
}

// NewWorker constructs a Worker.
func NewWorker(source ActivitySource, recorder Recorder, cfg Config) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 30 * 24 * time.Hour
	}
	return &Worker{
		source:           source,
		recorder:         recorder,
		cfg:              cfg,
		logger:           log.New(log.Writer(), "[syncer] ", log.LstdFlags),
		shutdownComplete: make(chan struct{}),
	}
}

// Start launches the polling loop. It should be called in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer func() {
		ticker.Stop()
		close(w.shutdownComplete)
	}()

	for {
		if err := w.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Printf("sync error: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait waits until the worker stops.
func (w *Worker) Wait() {
	<-w.shutdownComplete
}

// RunOnce pulls every page of activities inside the lookback window and
// records them. It returns the first page-level error; per-activity
// failures are counted and logged but do not stop the run.
func (w *Worker) RunOnce(ctx context.Context) error {
	after := time.Now().UTC().Add(-w.cfg.Lookback)

	for page := 1; ; page++ {
		activities, err := w.source.ListActivities(ctx, after, page, activitiesPerPage)
		if err != nil {
			return err
		}
		if len(activities) == 0 {
			break
		}

		for _, activity := range activities {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := w.recordActivity(ctx, activity); err != nil {
				recordSyncFailed()
				w.logger.Printf("record failure (strava_id=%d): %v", activity.ID, err)
			}
		}

		if len(activities) < activitiesPerPage {
			break
		}
	}

	recordSyncCompleted(time.Now().UTC())
	return nil
}

func (w *Worker) recordActivity(ctx context.Context, activity strava.SummaryActivity) error {
	_, replay, err := w.recorder.RecordSession(ctx, domain.RecordSessionInput{
		TenantID:       w.cfg.TenantID,
		AthleteID:      w.cfg.AthleteID,
		Sport:          activity.Sport(),
		StartedAt:      activity.StartDate,
		DistanceKm:     activity.Distance / 1000,
		DurationSec:    activity.MovingTime,
		Calories:       activity.EstimatedCalories(),
		Source:         "strava",
		IdempotencyKey: fmt.Sprintf("strava:%d", activity.ID),
	})
	if err != nil {
		return err
	}

	if replay {
		recordSyncReplayed()
	} else {
		recordSyncRecorded()
	}
	return nil
}
