// pkg/logging/logging.go - timestamped logging package for the bootstrapper
//
// Every run writes into its own directory under the configured base directory
// (YYYY-MM-DD-HHMMss). The directory holds:
// - bootstrap.log: plain text, one line per message with key=value pairs
// - bootstrap.jsonl: the same messages as structured LogEntry lines
// - events.jsonl: install, removal and rollback events, one JSON object per line
// - session.yaml: the run summary, written when the session ends
// Older run directories beyond the retention count are removed at startup.

package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of the log message.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the LogLevel.
func (ll LogLevel) String() string {
	switch ll {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a configuration string to a LogLevel. Unknown values map to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// LogEntry is the structured form of a single log message.
type LogEntry struct {
	Time       int64                  `json:"time" yaml:"time"`
	Timestamp  string                 `json:"timestamp" yaml:"timestamp"`
	Level      string                 `json:"level" yaml:"level"`
	Message    string                 `json:"message" yaml:"message"`
	Component  string                 `json:"component" yaml:"component"`
	PID        int64                  `json:"pid" yaml:"pid"`
	Hostname   string                 `json:"hostname" yaml:"hostname"`
	Version    string                 `json:"version" yaml:"version"`
	SessionID  string                 `json:"session_id" yaml:"session_id"`
	Properties map[string]interface{} `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// LoggerConfig holds configuration for the logger.
type LoggerConfig struct {
	BaseDir       string   // Base logging directory
	SessionID     string   // Unique session identifier
	Component     string   // Component name recorded on every entry
	Version       string   // Application version recorded on every entry
	Level         LogLevel // Most verbose level written
	KeepRuns      int      // Run directories kept, 0 keeps everything
	EnableJSON    bool     // Write bootstrap.jsonl and events.jsonl
	EnableConsole bool     // Mirror bootstrap.log to stdout
}

// Logger encapsulates the logging functionality with timestamped directories.
type Logger struct {
	mu           sync.RWMutex
	logger       *log.Logger
	logLevel     LogLevel
	logFile      *os.File
	jsonFile     *os.File
	eventsFile   *os.File
	config       LoggerConfig
	sessionStart time.Time
	logDir       string
	hostname     string
}

// singleton instance and sync.Once for thread-safe initialization
var (
	instance *Logger
	once     sync.Once
)

// Init initializes the singleton Logger. Messages logged before Init are written
// to stderr at INFO level and above.
func Init(cfg LoggerConfig) error {
	var initErr error
	once.Do(func() {
		instance, initErr = newLoggerWithConfig(cfg)
	})
	return initErr
}

// generateSessionID creates a unique session identifier
func generateSessionID(start time.Time) string {
	return fmt.Sprintf("cimianboot-%d-%s", start.Unix(), start.Format("2006-01-02-150405"))
}

// createTimestampedLogDir creates a timestamped log directory
func createTimestampedLogDir(baseDir string, sessionStart time.Time) (string, error) {
	// Format: YYYY-MM-DD-HHMMss
	logDir := filepath.Join(baseDir, sessionStart.Format("2006-01-02-150405"))

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create timestamped log directory %s: %w", logDir, err)
	}

	return logDir, nil
}

// newLoggerWithConfig creates a new Logger instance with explicit configuration.
func newLoggerWithConfig(cfg LoggerConfig) (*Logger, error) {
	sessionStart := time.Now()

	if cfg.SessionID == "" {
		cfg.SessionID = generateSessionID(sessionStart)
	}
	if cfg.Component == "" {
		cfg.Component = "cimianboot"
	}

	if err := os.MkdirAll(cfg.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base log directory: %w", err)
	}

	logDir, err := createTimestampedLogDir(cfg.BaseDir, sessionStart)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	l := &Logger{
		config:       cfg,
		logLevel:     cfg.Level,
		sessionStart: sessionStart,
		logDir:       logDir,
		hostname:     hostname,
	}

	if err := l.initializeLogFiles(); err != nil {
		return nil, err
	}

	if cfg.EnableConsole {
		enableColors()
		l.logger = log.New(io.MultiWriter(os.Stdout, l.logFile), "", 0)
	} else {
		l.logger = log.New(l.logFile, "", 0)
	}

	l.performCleanup()

	return l, nil
}

// initializeLogFiles creates and opens all log files
func (l *Logger) initializeLogFiles() error {
	var err error

	l.logFile, err = os.OpenFile(filepath.Join(l.logDir, "bootstrap.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open main log file: %w", err)
	}

	if l.config.EnableJSON {
		l.jsonFile, err = os.OpenFile(filepath.Join(l.logDir, "bootstrap.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			l.logFile.Close()
			return fmt.Errorf("failed to open JSON log file: %w", err)
		}
		l.eventsFile, err = os.OpenFile(filepath.Join(l.logDir, "events.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			l.logFile.Close()
			l.jsonFile.Close()
			return fmt.Errorf("failed to open events file: %w", err)
		}
	}

	return nil
}

// performCleanup removes the oldest run directories beyond KeepRuns.
func (l *Logger) performCleanup() {
	if l.config.KeepRuns <= 0 {
		return
	}

	entries, err := os.ReadDir(l.config.BaseDir)
	if err != nil {
		return
	}

	var logDirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := time.Parse("2006-01-02-150405", entry.Name()); err == nil {
			logDirs = append(logDirs, entry.Name())
		}
	}

	// Newest first; the name format sorts chronologically.
	sort.Sort(sort.Reverse(sort.StringSlice(logDirs)))

	for i := l.config.KeepRuns; i < len(logDirs); i++ {
		dirPath := filepath.Join(l.config.BaseDir, logDirs[i])
		if dirPath == l.logDir {
			continue
		}
		os.RemoveAll(dirPath) // Best effort
	}
}

// createLogEntry creates a structured log entry
func (l *Logger) createLogEntry(level LogLevel, message string, properties map[string]interface{}) LogEntry {
	now := time.Now()
	return LogEntry{
		Time:       now.Unix(),
		Timestamp:  now.Format(time.RFC3339),
		Level:      level.String(),
		Message:    message,
		Component:  l.config.Component,
		PID:        int64(os.Getpid()),
		Hostname:   l.hostname,
		Version:    l.config.Version,
		SessionID:  l.config.SessionID,
		Properties: properties,
	}
}

// CloseLogger closes all log files if they're open.
func CloseLogger() {
	if instance == nil {
		return
	}
	instance.close()
}

func (l *Logger) close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		if err := l.logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close main log file: %v\n", err)
		}
		l.logFile = nil
	}
	if l.jsonFile != nil {
		if err := l.jsonFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close JSON log file: %v\n", err)
		}
		l.jsonFile = nil
	}
	if l.eventsFile != nil {
		if err := l.eventsFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close events file: %v\n", err)
		}
		l.eventsFile = nil
	}
}

// logMessage is the core logging method that writes to all configured outputs
func (l *Logger) logMessage(level LogLevel, message string, keyValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level > l.logLevel || l.logger == nil {
		return
	}

	entry := l.createLogEntry(level, message, toProperties(keyValues))
	l.logger.Println(formatLine(entry, keyValues))

	if l.jsonFile != nil {
		if data, err := json.Marshal(entry); err == nil {
			l.jsonFile.Write(append(data, '\n'))
		}
	}
}

// toProperties converts alternating key/value pairs into a map.
func toProperties(keyValues []interface{}) map[string]interface{} {
	if len(keyValues) == 0 {
		return nil
	}
	properties := make(map[string]interface{}, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		properties[fmt.Sprintf("%v", keyValues[i])] = keyValues[i+1]
	}
	return properties
}

// formatLine renders an entry in the plain text log format.
func formatLine(entry LogEntry, keyValues []interface{}) string {
	ts := time.Unix(entry.Time, 0).Format("2006-01-02 15:04:05")
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %-5s %s", ts, entry.Level, entry.Message)
	for i := 0; i+1 < len(keyValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keyValues[i], keyValues[i+1])
	}
	return b.String()
}

// fallback writes messages logged before Init.
func fallback(level LogLevel, message string, keyValues []interface{}) {
	if level > LevelInfo {
		return
	}
	entry := LogEntry{Time: time.Now().Unix(), Level: level.String(), Message: message}
	fmt.Fprintln(os.Stderr, formatLine(entry, keyValues))
}

func logAt(level LogLevel, message string, keyValues []interface{}) {
	if instance == nil {
		fallback(level, message, keyValues)
		return
	}
	instance.logMessage(level, message, keyValues...)
}

// Info logs informational messages.
func Info(message string, keyValues ...interface{}) {
	logAt(LevelInfo, message, keyValues)
}

// Debug logs debug messages.
func Debug(message string, keyValues ...interface{}) {
	logAt(LevelDebug, message, keyValues)
}

// Warn logs warning messages.
func Warn(message string, keyValues ...interface{}) {
	logAt(LevelWarn, message, keyValues)
}

// Error logs error messages.
func Error(message string, keyValues ...interface{}) {
	logAt(LevelError, message, keyValues)
}

// LogStructured logs a message with explicit properties.
func LogStructured(level LogLevel, message string, properties map[string]interface{}) {
	keys := make([]string, 0, len(properties))
	for k := range properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	keyValues := make([]interface{}, 0, len(properties)*2)
	for _, k := range keys {
		keyValues = append(keyValues, k, properties[k])
	}
	logAt(level, message, keyValues)
}

// SetLevel changes the most verbose level written by the initialized logger.
func SetLevel(level LogLevel) {
	if instance == nil {
		return
	}
	instance.mu.Lock()
	defer instance.mu.Unlock()
	instance.logLevel = level
}

// GetCurrentLogDir returns the current timestamped log directory
func GetCurrentLogDir() string {
	if instance == nil {
		return ""
	}
	instance.mu.RLock()
	defer instance.mu.RUnlock()
	return instance.logDir
}

// GetSessionID returns the current session ID
func GetSessionID() string {
	if instance == nil {
		return ""
	}
	instance.mu.RLock()
	defer instance.mu.RUnlock()
	return instance.config.SessionID
}
