package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestLogger(t *testing.T, level LogLevel) *Logger {
	t.Helper()
	l, err := newLoggerWithConfig(LoggerConfig{
		BaseDir:    t.TempDir(),
		SessionID:  "test-session",
		Version:    "2026.10.16",
		Level:      level,
		EnableJSON: true,
	})
	require.NoError(t, err)
	t.Cleanup(l.close)
	return l
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelDebug, ParseLevel(" debug "))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestLogMessageWritesTextAndJSON(t *testing.T) {
	l := newTestLogger(t, LevelInfo)

	l.logMessage(LevelInfo, "Installing package", "package", "Runtime", "attempt", 1)
	l.logMessage(LevelDebug, "filtered out")

	text := readLines(t, filepath.Join(l.logDir, "bootstrap.log"))
	require.Len(t, text, 1)
	assert.Contains(t, text[0], "INFO  Installing package package=Runtime attempt=1")

	entries := readLines(t, filepath.Join(l.logDir, "bootstrap.jsonl"))
	require.Len(t, entries, 1)
	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(entries[0]), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "test-session", entry.SessionID)
	assert.Equal(t, "cimianboot", entry.Component)
	assert.Equal(t, "Runtime", entry.Properties["package"])
}

func TestLogEventAndEndSession(t *testing.T) {
	l := newTestLogger(t, LevelInfo)

	require.NoError(t, l.LogEvent("install", "complete", "failed", "Installation of B failed",
		WithPackage("B"), WithExitCode(1603), WithError(errors.New("exit 1603"))))

	lines := readLines(t, filepath.Join(l.logDir, "events.jsonl"))
	require.Len(t, lines, 1)
	var event LogEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &event))
	assert.Equal(t, "B", event.Package)
	require.NotNil(t, event.ExitCode)
	assert.Equal(t, 1603, *event.ExitCode)
	assert.Equal(t, "ERROR", event.Level)
	assert.True(t, strings.HasPrefix(event.EventID, "test-session-"))

	require.NoError(t, l.EndSession(SessionSummary{Product: "Suite", Status: "rolled_back", Packages: 2}))
	data, err := os.ReadFile(filepath.Join(l.logDir, "session.yaml"))
	require.NoError(t, err)
	var summary SessionSummary
	require.NoError(t, yaml.Unmarshal(data, &summary))
	assert.Equal(t, "Suite", summary.Product)
	assert.Equal(t, "rolled_back", summary.Status)
	assert.Equal(t, "test-session", summary.SessionID)
}

func TestPerformCleanupKeepsNewestRuns(t *testing.T) {
	base := t.TempDir()
	for _, name := range []string{"2026-01-01-100000", "2026-01-02-100000", "2026-01-03-100000", "notes"} {
		require.NoError(t, os.MkdirAll(filepath.Join(base, name), 0755))
	}

	l, err := newLoggerWithConfig(LoggerConfig{BaseDir: base, KeepRuns: 2})
	require.NoError(t, err)
	defer l.close()

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "notes")
	assert.Contains(t, names, filepath.Base(l.logDir))
	assert.NotContains(t, names, "2026-01-01-100000")
	assert.NotContains(t, names, "2026-01-02-100000")
}

func TestConsolePrinter(t *testing.T) {
	var buf bytes.Buffer
	l := New(true)
	l.SetOutput(&buf)

	l.Success("done %d", 3)
	l.Printf("plain")

	out := buf.String()
	assert.Contains(t, out, colorGreen)
	assert.Contains(t, out, "done 3")
	assert.Contains(t, out, "plain")
}
