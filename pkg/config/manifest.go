// pkg/config/manifest.go - the package manifest: product identity, global checks,
// conflicting products and the ordered package list.

package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/windowsadmins/cimianboot/pkg/msi"
	"github.com/windowsadmins/cimianboot/pkg/predicates"
	"gopkg.in/yaml.v3"
)

// DefaultInstanceID names the machine-wide single-instance lock.
const DefaultInstanceID = "B44584C3-ECA1-495D-A17E-6A8C3BD8403C"

// Package extensions.
const (
	ExtMsi = "msi"
	ExtExe = "exe"
)

// Manifest describes one bootstrapper run.
type Manifest struct {
	ProductName     string            `yaml:"product_name"`
	InstanceID      string            `yaml:"instance_id,omitempty"`
	Checks          predicates.Checks `yaml:"checks,omitempty"`
	ProductRemovals []ProductRemoval  `yaml:"product_removals,omitempty"`
	Packages        []Package         `yaml:"packages"`
}

// ProductRemoval names an installed product that must be removed before installing.
type ProductRemoval struct {
	ProductCode string `yaml:"product_code"`
	Name        string `yaml:"name"`
	Message     string `yaml:"message"`
}

// Package is one installable unit. Argument templates substitute {0} with the
// extracted package path and {1} with the log file path.
type Package struct {
	Name               string            `yaml:"name"`
	FileName           string            `yaml:"file_name,omitempty"`
	Extension          string            `yaml:"extension"`
	ResourceKeys       []string          `yaml:"resource_keys"`
	SHA256             string            `yaml:"sha256,omitempty"` // checked after extraction when set
	InstallArgs        string            `yaml:"install_args,omitempty"`
	QuietInstallArgs   string            `yaml:"quiet_install_args,omitempty"`
	UninstallArgs      string            `yaml:"uninstall_args,omitempty"`
	QuietUninstallArgs string            `yaml:"quiet_uninstall_args,omitempty"`
	ExitCodes          []int             `yaml:"exit_codes,omitempty"`
	Prompt             string            `yaml:"prompt,omitempty"`
	SupportsUninstall  bool              `yaml:"supports_uninstall,omitempty"`
	Checks             predicates.Checks `yaml:"checks,omitempty"`
}

// Stem returns the file name used for the extracted package, without extension.
func (p Package) Stem() string {
	if p.FileName != "" {
		return p.FileName
	}
	return p.Name
}

// AcceptsExitCode reports whether code counts as a successful install.
// With no exit codes configured only 0 is accepted.
func (p Package) AcceptsExitCode(code int) bool {
	if len(p.ExitCodes) == 0 {
		return code == 0
	}
	return slices.Contains(p.ExitCodes, code)
}

// LoadManifest reads, normalizes and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a manifest from YAML, then normalizes and validates it.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	m.Normalize()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Normalize fills defaults and canonicalizes product codes and extensions.
func (m *Manifest) Normalize() {
	if m.InstanceID == "" {
		m.InstanceID = DefaultInstanceID
	}
	for i := range m.ProductRemovals {
		m.ProductRemovals[i].ProductCode = msi.NormalizeProductCode(m.ProductRemovals[i].ProductCode)
	}
	for i := range m.Packages {
		m.Packages[i].Extension = strings.ToLower(strings.TrimPrefix(m.Packages[i].Extension, "."))
	}
}

// Validate reports the first structural problem in the manifest.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.ProductName) == "" {
		return fmt.Errorf("manifest: product_name is required")
	}
	if err := validateChecks("global checks", m.Checks); err != nil {
		return err
	}
	for i, r := range m.ProductRemovals {
		if r.ProductCode == "" {
			return fmt.Errorf("manifest: product_removals[%d]: product_code is required", i)
		}
		if r.Name == "" {
			return fmt.Errorf("manifest: product_removals[%d]: name is required", i)
		}
	}
	for i, p := range m.Packages {
		if p.Name == "" {
			return fmt.Errorf("manifest: packages[%d]: name is required", i)
		}
		if p.Extension != ExtMsi && p.Extension != ExtExe {
			return fmt.Errorf("manifest: package %s: extension must be %s or %s, got %q", p.Name, ExtMsi, ExtExe, p.Extension)
		}
		if len(p.ResourceKeys) == 0 {
			return fmt.Errorf("manifest: package %s: resource_keys is required", p.Name)
		}
		if err := validateChecks("package "+p.Name, p.Checks); err != nil {
			return err
		}
	}
	return nil
}

func validateChecks(scope string, c predicates.Checks) error {
	for _, k := range c.RegistryKeys {
		if k.Path == "" {
			return fmt.Errorf("manifest: %s: registry key path is required", scope)
		}
	}
	for _, v := range c.RegistryValues {
		if v.Path == "" || v.ValueName == "" {
			return fmt.Errorf("manifest: %s: registry value path and value_name are required", scope)
		}
		if !predicates.ValidType(v.Type) {
			return fmt.Errorf("manifest: %s: unsupported registry value type %q", scope, v.Type)
		}
		if !strings.EqualFold(v.Type, predicates.TypeMatch) && !predicates.ValidComparison(v.Comparison) {
			return fmt.Errorf("manifest: %s: unsupported comparison %q", scope, v.Comparison)
		}
	}
	for _, p := range c.RunningProcesses {
		if p.Name == "" {
			return fmt.Errorf("manifest: %s: running process name is required", scope)
		}
	}
	return nil
}
