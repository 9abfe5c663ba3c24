// Package logbook is the console's diagnostic sink. Transient poll failures
// land here instead of the status line, so users can inspect them later
// without the queue view ever going blank.
package logbook

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logbook appends timestamped entries to a plain text file. A nil Logbook is
// valid and drops every entry, so callers never need to guard their logging.
type Logbook struct {
	path string
	mu   sync.Mutex
}

// New creates a logbook writing to path, creating parent directories.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: ensure log dir: %w", err)
	}
	return &Logbook{path: path}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.append(LevelInfo, format, args...)
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.append(LevelWarn, format, args...)
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.append(LevelError, format, args...)
}

func (l *Logbook) append(level Level, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	fmt.Fprintf(file, "%s %-5s %s\n", time.Now().UTC().Format(time.RFC3339), string(level), message)
}

// Tail returns up to maxLines of the most recent entries, oldest first.
func (l *Logbook) Tail(maxLines int) []string {
	if l == nil || maxLines <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.Open(l.path)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines
}
