// Package audit writes the human-readable run log.
//
// Every line is prefixed with a local timestamp. Structured payloads are
// written as indented JSON framed by a title banner:
//
//	[2024-05-01 12:00:00] ===== RAW RESPONSE =====
//	{ ... }
//	[2024-05-01 12:00:00] ==========================
package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	lineLayout = "2006-01-02 15:04:05"
	fileLayout = "2006-01-02_150405"
)

// FileName returns the log file name for a run started at t.
func FileName(t time.Time) string {
	return "agent_log_" + t.Format(fileLayout) + ".txt"
}

// Logger appends timestamped entries to a writer. Safe for concurrent use.
// Write failures are remembered and reported by Err; logging never blocks a run.
type Logger struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	now    func() time.Time
	err    error
	path   string
}

// Option configures a Logger.
type Option func(*Logger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// New writes entries to w.
func New(w io.Writer, opts ...Option) *Logger {
	l := &Logger{w: w, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Create opens a new log file in dir, named after the current time.
func Create(dir string, opts ...Option) (*Logger, error) {
	l := New(nil, opts...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	path := filepath.Join(dir, FileName(l.now()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	l.w, l.closer, l.path = f, f, path
	return l, nil
}

// Path returns the file written by a Logger from Create.
func (l *Logger) Path() string { return l.path }

// Log writes a single timestamped line.
func (l *Logger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.line(msg)
}

// Block writes payload under a title banner. Strings are written verbatim;
// everything else is encoded as indented JSON.
func (l *Logger) Block(title string, payload any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.line("===== " + title + " =====")
	if s, ok := payload.(string); ok {
		l.line(s)
	} else {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			l.line(fmt.Sprintf("Unable to serialize to JSON: %v", payload))
		} else {
			l.write(buf.String())
		}
	}
	l.line(strings.Repeat("=", len(title)+12))
}

// Err returns the first write error, if any.
func (l *Logger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close closes the underlying file, if the Logger owns one.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

func (l *Logger) line(msg string) {
	l.write("[" + l.now().Format(lineLayout) + "] " + msg + "\n")
}

func (l *Logger) write(s string) {
	if l.w == nil || l.err != nil {
		return
	}
	_, l.err = io.WriteString(l.w, s)
}
