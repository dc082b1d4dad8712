// File path: internal/common/log_test.go
package common

import (
	"log/slog"
	"testing"
	"time"
)

func TestSinkCapturesAttributes(t *testing.T) {
	s := newLogSink(10)
	record := slog.NewRecord(time.Now(), slog.LevelInfo, "pipeline: run started", 0)
	record.AddAttrs(slog.String("run_id", "run-1"), slog.Int("valid", 3))
	s.capture(record)

	entries := s.entries()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Message != "pipeline: run started" || e.Level != "info" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Attributes["run_id"] != "run-1" {
		t.Fatalf("missing run_id attribute: %v", e.Attributes)
	}
}

func TestSinkDropsOldestBeyondCapacity(t *testing.T) {
	s := newLogSink(3)
	for i := 0; i < 5; i++ {
		record := slog.NewRecord(time.Now(), slog.LevelInfo, string(rune('a'+i)), 0)
		s.capture(record)
	}
	entries := s.entries()
	if len(entries) != 3 {
		t.Fatalf("expected capped history, got %d", len(entries))
	}
	if entries[0].Message != "c" || entries[2].Message != "e" {
		t.Fatalf("oldest entries must be evicted first: %+v", entries)
	}
}

func TestLoggerIsSingleton(t *testing.T) {
	if Logger() != Logger() {
		t.Fatalf("Logger must return the same instance")
	}
}
