// pkg/registry/registry.go - read-only registry access used by precondition checks and policy loading.
//
// Paths use the root-prefix convention (HKLM\SOFTWARE\Vendor). The prefix selects
// the hive and is stripped before the key is opened. A View selects the 32-bit or
// 64-bit registry on WOW64 systems; ViewDefault uses the view native to the process.

package registry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyNotFound is returned when the requested key does not exist.
	ErrKeyNotFound = errors.New("registry key not found")
	// ErrValueNotFound is returned when the requested value does not exist on an open key.
	ErrValueNotFound = errors.New("registry value not found")
)

// Hive identifies a predefined registry root.
type Hive string

const (
	ClassesRoot     Hive = "HKCR"
	CurrentUser     Hive = "HKCU"
	LocalMachine    Hive = "HKLM"
	Users           Hive = "HKU"
	CurrentConfig   Hive = "HKCC"
	PerformanceData Hive = "HKPD"
)

var hiveAliases = map[string]Hive{
	"HKCR":                  ClassesRoot,
	"HKEY_CLASSES_ROOT":     ClassesRoot,
	"HKCU":                  CurrentUser,
	"HKEY_CURRENT_USER":     CurrentUser,
	"HKLM":                  LocalMachine,
	"HKEY_LOCAL_MACHINE":    LocalMachine,
	"HKU":                   Users,
	"HKEY_USERS":            Users,
	"HKCC":                  CurrentConfig,
	"HKEY_CURRENT_CONFIG":   CurrentConfig,
	"HKPD":                  PerformanceData,
	"HKEY_PERFORMANCE_DATA": PerformanceData,
}

// View selects which registry view a key is opened in.
type View int

const (
	ViewDefault View = iota
	View32
	View64
)

// String returns the string representation of the View.
func (v View) String() string {
	switch v {
	case View32:
		return "32-bit"
	case View64:
		return "64-bit"
	default:
		return "default"
	}
}

// Registry opens keys for reading.
type Registry interface {
	// OpenKey opens the key at a hive-qualified path in the given view.
	// A missing key is reported with an error wrapping ErrKeyNotFound.
	OpenKey(path string, view View) (Key, error)
}

// Key represents an open registry key.
type Key interface {
	// Name returns the path the key was opened with.
	Name() string

	// Value returns the named value. A missing value is reported with an
	// error wrapping ErrValueNotFound.
	Value(name string) (Value, error)

	// Close closes the key.
	Close() error
}

// Value represents a value inside a specific key.
type Value interface {
	// Name returns the name of the value.
	Name() string

	// DataString returns the data of the value as a string. Integer values
	// are formatted in base 10 and multi-string values are joined with newlines.
	DataString() (string, error)
}

// SplitPath separates a hive-qualified path into its hive and the subkey path.
func SplitPath(path string) (Hive, string, error) {
	path = strings.Trim(path, `\`)
	root, rest, _ := strings.Cut(path, `\`)
	hive, ok := hiveAliases[strings.ToUpper(root)]
	if !ok {
		return "", "", fmt.Errorf("unsupported registry root in path %q", path)
	}
	return hive, rest, nil
}

// IsNotExist reports whether err indicates a missing key or value.
func IsNotExist(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, ErrValueNotFound)
}
