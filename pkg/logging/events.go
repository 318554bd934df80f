// pkg/logging/events.go - structured install events and the end-of-run session summary

package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SessionSummary provides high-level run metrics, written to session.yaml when the run ends.
type SessionSummary struct {
	SessionID  string    `yaml:"session_id"`
	Product    string    `yaml:"product"`
	Status     string    `yaml:"status"` // completed, failed, rolled_back
	StartTime  time.Time `yaml:"start_time"`
	EndTime    time.Time `yaml:"end_time"`
	Duration   string    `yaml:"duration"`
	Packages   int       `yaml:"packages"`
	Installed  []string  `yaml:"installed,omitempty"`
	Skipped    []string  `yaml:"skipped,omitempty"`
	RolledBack []string  `yaml:"rolled_back,omitempty"`
	Removed    []string  `yaml:"removed,omitempty"`
	Error      string    `yaml:"error,omitempty"`
}

// LogEvent represents an individual action within a run.
type LogEvent struct {
	EventID   string                 `json:"event_id"`
	SessionID string                 `json:"session_id"`
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	EventType string                 `json:"event_type"` // check, removal, extract, install, uninstall, rollback
	Package   string                 `json:"package,omitempty"`
	Action    string                 `json:"action"`
	Status    string                 `json:"status"` // started, completed, skipped, failed
	Message   string                 `json:"message"`
	ExitCode  *int                   `json:"exit_code,omitempty"`
	Duration  *time.Duration         `json:"duration,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// EventOption allows customizing log events
type EventOption func(*LogEvent)

// WithPackage sets the package name for the event
func WithPackage(name string) EventOption {
	return func(e *LogEvent) {
		e.Package = name
	}
}

// WithExitCode records the exit code returned by an external installer.
func WithExitCode(code int) EventOption {
	return func(e *LogEvent) {
		e.ExitCode = &code
	}
}

// WithDuration sets the duration for the event
func WithDuration(duration time.Duration) EventOption {
	return func(e *LogEvent) {
		e.Duration = &duration
	}
}

// WithError sets the error message for the event
func WithError(err error) EventOption {
	return func(e *LogEvent) {
		if err != nil {
			e.Error = err.Error()
			e.Level = LevelError.String()
		}
	}
}

// WithContext adds a key/value pair to the event context.
func WithContext(key string, value interface{}) EventOption {
	return func(e *LogEvent) {
		if e.Context == nil {
			e.Context = make(map[string]interface{})
		}
		e.Context[key] = value
	}
}

// LogEvent writes a structured event to events.jsonl and mirrors it to the text log.
func (l *Logger) LogEvent(eventType, action, status, message string, opts ...EventOption) error {
	event := LogEvent{
		Timestamp: time.Now(),
		Level:     LevelInfo.String(),
		EventType: eventType,
		Action:    action,
		Status:    status,
		Message:   message,
	}
	for _, opt := range opts {
		opt(&event)
	}

	level := LevelInfo
	if event.Level == LevelError.String() {
		level = LevelError
	}
	kv := []interface{}{"event", eventType, "status", status}
	if event.Package != "" {
		kv = append(kv, "package", event.Package)
	}
	if event.ExitCode != nil {
		kv = append(kv, "exit_code", *event.ExitCode)
	}
	l.logMessage(level, message, kv...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.eventsFile == nil {
		return nil
	}

	event.SessionID = l.config.SessionID
	event.EventID = fmt.Sprintf("%s-%d", l.config.SessionID, event.Timestamp.UnixNano())

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := l.eventsFile.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// EndSession writes the run summary to session.yaml in the run directory.
func (l *Logger) EndSession(summary SessionSummary) error {
	l.mu.RLock()
	logDir := l.logDir
	summary.SessionID = l.config.SessionID
	summary.StartTime = l.sessionStart
	l.mu.RUnlock()

	if summary.EndTime.IsZero() {
		summary.EndTime = time.Now()
	}
	summary.Duration = summary.EndTime.Sub(summary.StartTime).Round(time.Second).String()

	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal session summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(logDir, "session.yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write session summary: %w", err)
	}
	return nil
}

// Event writes a structured event through the initialized logger. Before Init
// the event is only written to stderr.
func Event(eventType, action, status, message string, opts ...EventOption) {
	if instance == nil {
		fallback(LevelInfo, message, []interface{}{"event", eventType, "status", status})
		return
	}
	if err := instance.LogEvent(eventType, action, status, message, opts...); err != nil {
		instance.logMessage(LevelWarn, "Failed to record event", "error", err)
	}
}

// EndSession completes the current run (package-level function)
func EndSession(summary SessionSummary) error {
	if instance == nil {
		return fmt.Errorf("logging not initialized")
	}
	return instance.EndSession(summary)
}
