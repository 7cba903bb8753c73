// Package logging sets up the slog logger of the CLI and the JSONL trace of selector decisions.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/LdDl/multimodal"
)

// LevelTrace is below Debug: every selector decision is logged
const LevelTrace = slog.LevelDebug - 4

var levelsByName = map[string]slog.Level{
	"trace": LevelTrace,
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel returns level by its name. Empty name gives info
func ParseLevel(name string) (slog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return slog.LevelInfo, nil
	}
	level, ok := levelsByName[name]
	if !ok {
		return slog.LevelInfo, fmt.Errorf("unknown log level '%s'", name)
	}
	return level, nil
}

func levelLabel(groups []string, attr slog.Attr) slog.Attr {
	if attr.Key != slog.LevelKey || len(groups) != 0 {
		return attr
	}
	if level, ok := attr.Value.Any().(slog.Level); ok && level == LevelTrace {
		attr.Value = slog.StringValue("TRACE")
	}
	return attr
}

// NewLogger returns text logger writing to w. Unknown level names give info level
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl, _ := ParseLevel(level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl, ReplaceAttr: levelLabel}))
}

// DecisionLogger writes mode choice decisions to a JSONL file.
// It is safe for concurrent use. A nil DecisionLogger is safe to use;
// all methods are no-ops on nil receiver.
type DecisionLogger struct {
	mu    sync.Mutex
	file  *os.File
	runID string
}

// NewDecisionLogger creates a decision logger writing to dir/decisions.jsonl.
// Above debug level returns nil and no file is created.
// Returns nil if the file cannot be opened.
func NewDecisionLogger(dir, level, runID string) *DecisionLogger {
	lvl, err := ParseLevel(level)
	if err != nil || lvl > slog.LevelDebug {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, "decisions.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &DecisionLogger{file: f, runID: runID}
}

// Log writes a decision as a single JSONL line. Safe to call on nil receiver.
func (dl *DecisionLogger) Log(decision multimodal.Decision) {
	if dl == nil || dl.file == nil {
		return
	}

	entry := map[string]any{
		"time":     time.Now().UTC().Format(time.RFC3339Nano),
		"run_id":   dl.runID,
		"person":   string(decision.Person),
		"mode":     decision.Mode.String(),
		"reason":   decision.Reason.String(),
		"distance": decision.DistanceMeters,
	}
	if decision.Err != nil {
		entry["error"] = decision.Err.Error()
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = dl.file.Write(data)
}

// Close closes the underlying file. Safe to call on nil receiver.
func (dl *DecisionLogger) Close() {
	if dl == nil || dl.file == nil {
		return
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	dl.file.Close()
	dl.file = nil
}
