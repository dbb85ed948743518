package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTPAddress != ":8080" {
		t.Fatalf("unexpected http address %q", cfg.HTTPAddress)
	}
	if cfg.OutboxPollInterval != 2*time.Second {
		t.Fatalf("unexpected poll interval %s", cfg.OutboxPollInterval)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "kafka:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if len(cfg.ConsumerTopics) != 2 {
		t.Fatalf("unexpected topics %v", cfg.ConsumerTopics)
	}
	if cfg.StravaConfigured() {
		t.Fatal("strava should not be configured by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9999")
	t.Setenv("OUTBOX_BATCH_SIZE", "100")
	t.Setenv("SYNC_LOOKBACK", "72h")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092, broker-b:9092")

	cfg := Load()

	if cfg.HTTPAddress != ":9999" {
		t.Fatalf("unexpected http address %q", cfg.HTTPAddress)
	}
	if cfg.OutboxBatchSize != 100 {
		t.Fatalf("unexpected batch size %d", cfg.OutboxBatchSize)
	}
	if cfg.SyncLookback != 72*time.Hour {
		t.Fatalf("unexpected lookback %s", cfg.SyncLookback)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker-b:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
}

func TestStravaConfigured(t *testing.T) {
	t.Setenv("STRAVA_CLIENT_ID", "id")
	t.Setenv("STRAVA_CLIENT_SECRET", "secret")
	t.Setenv("STRAVA_REFRESH_TOKEN", "refresh")
	t.Setenv("SYNC_ATHLETE_ID", "athlete-1")

	if !Load().StravaConfigured() {
		t.Fatal("expected strava to be configured")
	}
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("OUTBOX_POLL_INTERVAL", "not-a-duration")

	if got := Load().OutboxPollInterval; got != 2*time.Second {
		t.Fatalf("expected fallback interval, got %s", got)
	}
}
