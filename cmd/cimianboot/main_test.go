package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/windowsadmins/cimianboot/pkg/config"
	"github.com/windowsadmins/cimianboot/pkg/logging"
	"github.com/windowsadmins/cimianboot/pkg/progress"
	"github.com/windowsadmins/cimianboot/pkg/prompt"
)

func TestRunUsageErrors(t *testing.T) {
	assert.Equal(t, exitUsage, run([]string{"--no-such-flag"}))
	assert.Equal(t, exitOK, run([]string{"--version"}))
}

func TestRunShowConfigWithoutSettingsFile(t *testing.T) {
	dir := t.TempDir()
	code := run([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--manifest", filepath.Join(dir, "missing-manifest.yaml"),
		"--show-config",
	})
	assert.Equal(t, exitOK, code)
}

func TestApplyFlags(t *testing.T) {
	cfg := config.GetDefaultConfig()
	applyFlags(cfg, options{
		manifestPath: "suite.yaml",
		payloadPath:  "chunks",
		quiet:        true,
		confirm:      "messagebox",
		yes:          true,
		products:     "wmi",
		statusAddr:   "127.0.0.1:1",
		verbosity:    3,
	})

	assert.Equal(t, "suite.yaml", cfg.ManifestPath)
	assert.Equal(t, "chunks", cfg.PayloadPath)
	assert.True(t, cfg.Quiet)
	assert.Equal(t, config.ConfirmYes, cfg.Confirm, "--yes wins over --confirm")
	assert.Equal(t, "wmi", cfg.ProductSource)
	assert.Equal(t, "127.0.0.1:1", cfg.StatusAddress)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.True(t, cfg.Debug)
}

func TestApplyFlagsKeepsConfiguredLevel(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.LogLevel = "WARN"
	applyFlags(cfg, options{})
	assert.Equal(t, "WARN", cfg.LogLevel)
	assert.False(t, cfg.Verbose)
}

func TestPayloadDir(t *testing.T) {
	cfg := &config.Configuration{ManifestPath: filepath.Join("media", "bootstrap.yaml"), PayloadPath: "payload"}
	assert.Equal(t, filepath.Join("media", "payload"), payloadDir(cfg))

	abs, _ := filepath.Abs("chunks")
	cfg.PayloadPath = abs
	assert.Equal(t, abs, payloadDir(cfg))
}

func TestConfirmer(t *testing.T) {
	assert.Equal(t, prompt.Always(true), confirmer(config.ConfirmYes))
	assert.Equal(t, prompt.Always(false), confirmer(config.ConfirmNo))
	assert.IsType(t, &prompt.Console{}, confirmer(config.ConfirmConsole))
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	out := logging.New(true)
	out.SetOutput(&buf)

	stream := progress.NewStream()
	n := progress.NewNotifier(stream)
	n.Init(4)
	n.Increment()
	n.Message("Installing Runtime")
	n.End()
	printProgress(out, stream.Events())

	assert.Contains(t, buf.String(), "[1/4] Installing Runtime")
}
