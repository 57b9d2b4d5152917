package runner

import (
	"bytes"
	"testing"
	"time"
)

func TestNewRunIDIsTimeSortable(t *testing.T) {
	timestamp := time.Date(2024, 6, 7, 8, 9, 10, 0, time.FixedZone("CET", 3600))
	got, err := newRunID(timestamp, bytes.NewReader([]byte{0x00, 0x11, 0x22, 0x33}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "20240607T070910Z-00112233" {
		t.Fatalf("unexpected run id: %q", got)
	}
	if _, err := newRunID(timestamp, bytes.NewReader(nil)); err == nil {
		t.Fatalf("expected error for short random source")
	}
}
