// pkg/config/config.go - runtime settings for the bootstrapper.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/windowsadmins/cimianboot/pkg/logging"
	"github.com/windowsadmins/cimianboot/pkg/registry"
	"gopkg.in/yaml.v3"
)

// PolicyRegistryPath holds enterprise policy values used when no settings file exists.
const PolicyRegistryPath = `HKLM\SOFTWARE\Cimian\Bootstrap`

// Confirmation modes.
const (
	ConfirmConsole    = "console"
	ConfirmMessageBox = "messagebox"
	ConfirmYes        = "yes"
	ConfirmNo         = "no"
)

// Installed product sources.
const (
	ProductSourceMSI = "msi"
	ProductSourceWMI = "wmi"
)

// Configuration holds the configurable options for the bootstrapper in YAML format
type Configuration struct {
	ManifestPath  string `yaml:"ManifestPath"`
	PayloadPath   string `yaml:"PayloadPath"`
	TempPath      string `yaml:"TempPath"`
	LogPath       string `yaml:"LogPath"`
	LogLevel      string `yaml:"LogLevel"`
	KeepLogRuns   int    `yaml:"KeepLogRuns"`
	Quiet         bool   `yaml:"Quiet"`         // Prefer quiet argument templates
	Confirm       string `yaml:"Confirm"`       // console, messagebox, yes, no
	ProductSource string `yaml:"ProductSource"` // msi or wmi
	StatusAddress string `yaml:"StatusAddress"` // host:port of a status window, empty disables reporting
	Verbose       bool   `yaml:"Verbose"`
	Debug         bool   `yaml:"Debug"`
}

// DefaultConfigPath returns the settings file location under ProgramData.
func DefaultConfigPath() string {
	return filepath.Join(programData(), "Cimian", "Bootstrap.yaml")
}

func programData() string {
	if dir := os.Getenv("ProgramData"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// GetDefaultConfig provides default configuration values.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		ManifestPath:  "bootstrap.yaml",
		PayloadPath:   "payload",
		TempPath:      os.TempDir(),
		LogPath:       filepath.Join(programData(), "Cimian", "logs", "bootstrap"),
		LogLevel:      "INFO",
		KeepLogRuns:   10,
		Confirm:       ConfirmConsole,
		ProductSource: ProductSourceMSI,
	}
}

// LoadConfig loads settings from the YAML file at path. If the file doesn't
// exist, defaults are used with any policy values found in the registry applied on top.
func LoadConfig(path string, reg registry.Registry) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.Debug("Configuration file does not exist, using defaults and policy", "path", path)
		return LoadConfigFromPolicy(reg)
	}
	if err != nil {
		return nil, fmt.Errorf("reading configuration file %s: %w", path, err)
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing configuration file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes the configuration to path as YAML.
func SaveConfig(config *Configuration, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("serializing configuration: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating configuration directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks enumerated settings.
func (c *Configuration) Validate() error {
	switch strings.ToLower(c.Confirm) {
	case ConfirmConsole, ConfirmMessageBox, ConfirmYes, ConfirmNo:
		c.Confirm = strings.ToLower(c.Confirm)
	default:
		return fmt.Errorf("invalid Confirm mode %q", c.Confirm)
	}

	switch strings.ToLower(c.ProductSource) {
	case ProductSourceMSI, ProductSourceWMI:
		c.ProductSource = strings.ToLower(c.ProductSource)
	default:
		return fmt.Errorf("invalid ProductSource %q", c.ProductSource)
	}

	if c.TempPath == "" {
		return fmt.Errorf("TempPath must not be empty")
	}
	return nil
}

// LoadConfigFromPolicy returns defaults overlaid with values from PolicyRegistryPath.
// A missing policy key leaves the defaults untouched.
func LoadConfigFromPolicy(reg registry.Registry) (*Configuration, error) {
	config := GetDefaultConfig()

	key, err := reg.OpenKey(PolicyRegistryPath, registry.View64)
	if err != nil {
		if registry.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to open policy registry key %s: %w", PolicyRegistryPath, err)
	}
	defer key.Close()

	loadStringFromRegistry(key, "ManifestPath", &config.ManifestPath)
	loadStringFromRegistry(key, "PayloadPath", &config.PayloadPath)
	loadStringFromRegistry(key, "TempPath", &config.TempPath)
	loadStringFromRegistry(key, "LogPath", &config.LogPath)
	loadStringFromRegistry(key, "LogLevel", &config.LogLevel)
	loadStringFromRegistry(key, "Confirm", &config.Confirm)
	loadStringFromRegistry(key, "ProductSource", &config.ProductSource)
	loadStringFromRegistry(key, "StatusAddress", &config.StatusAddress)

	loadIntFromRegistry(key, "KeepLogRuns", &config.KeepLogRuns)

	loadBoolFromRegistry(key, "Quiet", &config.Quiet)
	loadBoolFromRegistry(key, "Verbose", &config.Verbose)
	loadBoolFromRegistry(key, "Debug", &config.Debug)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("policy configuration: %w", err)
	}
	return config, nil
}

func registryString(key registry.Key, valueName string) (string, bool) {
	value, err := key.Value(valueName)
	if err != nil {
		return "", false
	}
	s, err := value.DataString()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// loadStringFromRegistry loads a string value from registry if it exists.
func loadStringFromRegistry(key registry.Key, valueName string, target *string) {
	if val, ok := registryString(key, valueName); ok && val != "" {
		*target = val
		logging.Debug("Policy: loaded setting", "name", valueName, "value", val)
	}
}

// loadBoolFromRegistry loads a boolean value from registry if it exists.
// Accepts "true"/"false" strings as well as DWORD 1/0.
func loadBoolFromRegistry(key registry.Key, valueName string, target *bool) {
	if val, ok := registryString(key, valueName); ok {
		if parsed, err := strconv.ParseBool(val); err == nil {
			*target = parsed
			logging.Debug("Policy: loaded setting", "name", valueName, "value", parsed)
		}
	}
}

// loadIntFromRegistry loads an integer value from registry if it exists.
func loadIntFromRegistry(key registry.Key, valueName string, target *int) {
	if val, ok := registryString(key, valueName); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			*target = parsed
			logging.Debug("Policy: loaded setting", "name", valueName, "value", parsed)
		}
	}
}
