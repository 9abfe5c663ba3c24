package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestAppendAndTail(t *testing.T) {
	lb, err := New(filepath.Join(t.TempDir(), "logs", "reviewdesk.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	lb.Info("session opened")
	lb.Warn("poll failed: %v", "connection refused")
	lb.Error("decision rejected by server")

	lines := lb.Tail(10)
	if len(lines) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "INFO") || !strings.Contains(lines[0], "session opened") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "WARN") || !strings.Contains(lines[1], "connection refused") {
		t.Fatalf("unexpected warn line %q", lines[1])
	}
}

func TestTailLimitsLines(t *testing.T) {
	lb, err := New(filepath.Join(t.TempDir(), "reviewdesk.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 20; i++ {
		lb.Info("entry %d", i)
	}
	lines := lb.Tail(5)
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[4], "entry 19") {
		t.Fatalf("expected most recent entry last, got %q", lines[4])
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var lb *Logbook
	lb.Info("dropped")
	if lines := lb.Tail(3); lines != nil {
		t.Fatalf("expected nil tail from nil logbook, got %v", lines)
	}
	if lb.Path() != "" {
		t.Fatalf("expected empty path from nil logbook")
	}
}
