// Package logging provides leveled logging and fit tracing for the importance experiment.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A FitLogger for structured JSONL fit traces (.importance/fits.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
)

// LevelTrace is a custom slog level below Debug for per-tree logging.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// FitEvent is one line of the fit trace.
type FitEvent struct {
	RunID      string    `json:"run_id,omitempty"`
	RateIndex  int       `json:"rate_index"`
	Rate       float64   `json:"rate"`
	Repeat     int       `json:"repeat"`
	Importance []float64 `json:"importance"`
	OOBMSE     float64   `json:"oob_mse"`
	RSquared   float64   `json:"r_squared"`
	Elapsed    string    `json:"elapsed,omitempty"`
	Time       string    `json:"time"`
}

// FitLogger writes one JSONL line per fitted forest.
// It is safe for concurrent use. A nil FitLogger is safe to use;
// all methods are no-ops on nil receiver.
type FitLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewFitLogger creates a fit logger writing to dir/fits.jsonl.
// At "info" level (the default), returns nil and no file is created.
// At "debug" or "trace" level, the file is opened for append.
// Returns nil if the file cannot be opened. All methods are nil-safe.
func NewFitLogger(dir string, level string) *FitLogger {
	lvl := ParseLevel(level)
	if lvl == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, constants.FitLogFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &FitLogger{file: f}
}

// Log writes a fit event as a single JSONL line.
// The Time field is set automatically. Safe to call on nil receiver.
func (fl *FitLogger) Log(event FitEvent) {
	if fl == nil || fl.file == nil {
		return
	}

	event.Time = time.Now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')

	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.file == nil {
		return
	}
	_, _ = fl.file.Write(data)
}

// Close closes the underlying file. Safe to call on nil receiver.
func (fl *FitLogger) Close() {
	if fl == nil || fl.file == nil {
		return
	}

	fl.mu.Lock()
	defer fl.mu.Unlock()

	fl.file.Close()
	fl.file = nil
}
