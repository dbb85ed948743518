package domain

import (
	"testing"
	"time"
)

func TestComputePace(t *testing.T) {
	pace := ComputePace(10, 3000)
	if pace == nil {
		t.Fatal("expected pace for valid input")
	}
	if *pace != 300 {
		t.Fatalf("expected 300 sec/km got %d", *pace)
	}
}

func TestComputePaceTruncates(t *testing.T) {
	// 2500s over 7.5km is 333.33 sec/km.
	pace := ComputePace(7.5, 2500)
	if pace == nil {
		t.Fatal("expected pace for valid input")
	}
	if *pace != 333 {
		t.Fatalf("expected 333 sec/km got %d", *pace)
	}

	// 601s over 2km truncates to 300, not 301.
	pace = ComputePace(2, 601)
	if pace == nil {
		t.Fatal("expected pace for valid input")
	}
	if *pace != 300 {
		t.Fatalf("expected 300 sec/km got %d", *pace)
	}
}

func TestComputePaceInvalidInputs(t *testing.T) {
	if pace := ComputePace(0, 3000); pace != nil {
		t.Fatalf("expected nil pace for zero distance, got %d", *pace)
	}
	if pace := ComputePace(-1, 3000); pace != nil {
		t.Fatalf("expected nil pace for negative distance, got %d", *pace)
	}
	if pace := ComputePace(10, 0); pace != nil {
		t.Fatalf("expected nil pace for zero duration, got %d", *pace)
	}
}

func TestFormatPace(t *testing.T) {
	pace := 305
	if got := FormatPace(&pace); got != "05:05" {
		t.Fatalf("expected 05:05 got %q", got)
	}
	if got := FormatPace(nil); got != "" {
		t.Fatalf("expected empty string got %q", got)
	}
}

func TestMonthBucketRoundTrip(t *testing.T) {
	started := time.Date(2026, time.July, 3, 18, 30, 0, 0, time.UTC)
	bucket := MonthBucket(started)
	if bucket != "07-2026" {
		t.Fatalf("expected 07-2026 got %q", bucket)
	}

	parsed, err := ParseMonthBucket(bucket)
	if err != nil {
		t.Fatalf("failed to parse bucket: %v", err)
	}
	if parsed.Month() != time.July || parsed.Year() != 2026 {
		t.Fatalf("unexpected parsed month %v", parsed)
	}
}

func TestMonthBucketUsesUTC(t *testing.T) {
	// 23:30 on Jan 31 in UTC-5 is already February in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	started := time.Date(2026, time.January, 31, 23, 30, 0, 0, loc)
	if bucket := MonthBucket(started); bucket != "02-2026" {
		t.Fatalf("expected 02-2026 got %q", bucket)
	}
}

func TestParseMonthBucketRejectsGarbage(t *testing.T) {
	if _, err := ParseMonthBucket("not-a-month"); err == nil {
		t.Fatal("expected error for malformed bucket")
	}
}
