package persistence

import (
	"encoding/base64"
	"testing"
	"time"

	"example.com/training/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	original := &domain.Cursor{
		StartedAt: time.Date(2026, time.April, 9, 6, 30, 0, 123456789, time.UTC),
		ID:        "4d7f5a1e-9a2b-4c3d-8e1f-aa0011223344",
	}

	token := EncodeCursor(original)
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	decoded, err := DecodeCursor(token)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !decoded.StartedAt.Equal(original.StartedAt) {
		t.Fatalf("timestamp mismatch: %v vs %v", decoded.StartedAt, original.StartedAt)
	}
	if decoded.ID != original.ID {
		t.Fatalf("id mismatch: %q vs %q", decoded.ID, original.ID)
	}
}

func TestEncodeCursorNil(t *testing.T) {
	if token := EncodeCursor(nil); token != "" {
		t.Fatalf("expected empty token got %q", token)
	}
}

func TestDecodeCursorEmpty(t *testing.T) {
	cursor, err := DecodeCursor("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cursor != nil {
		t.Fatalf("expected nil cursor got %+v", cursor)
	}
}

func TestDecodeCursorInvalidBase64(t *testing.T) {
	if _, err := DecodeCursor("%%%not-base64%%%"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestDecodeCursorMissingSeparator(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte("2026-04-09T06:30:00Z"))
	if _, err := DecodeCursor(token); err == nil {
		t.Fatal("expected error for missing separator")
	}
}

func TestDecodeCursorBadTimestamp(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte("yesterday|some-id"))
	if _, err := DecodeCursor(token); err == nil {
		t.Fatal("expected error for unparseable timestamp")
	}
}
