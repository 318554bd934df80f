//go:build windows

package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	winregistry "golang.org/x/sys/windows/registry"
)

// LiveRegistry reads the registry of the running machine.
type LiveRegistry struct{}

// NewLive returns a Registry backed by the live Windows registry.
func NewLive() *LiveRegistry {
	return &LiveRegistry{}
}

// OpenKey opens the requested registry key read-only.
func (r *LiveRegistry) OpenKey(path string, view View) (Key, error) {
	hive, subkey, err := SplitPath(path)
	if err != nil {
		return nil, err
	}

	var root winregistry.Key
	switch hive {
	case ClassesRoot:
		root = winregistry.CLASSES_ROOT
	case CurrentUser:
		root = winregistry.CURRENT_USER
	case LocalMachine:
		root = winregistry.LOCAL_MACHINE
	case Users:
		root = winregistry.USERS
	case CurrentConfig:
		root = winregistry.CURRENT_CONFIG
	case PerformanceData:
		root = winregistry.PERFORMANCE_DATA
	}

	access := uint32(winregistry.QUERY_VALUE)
	switch view {
	case View32:
		access |= winregistry.WOW64_32KEY
	case View64:
		access |= winregistry.WOW64_64KEY
	}

	key, err := winregistry.OpenKey(root, subkey, access)
	if err != nil {
		if errors.Is(err, winregistry.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (%s view)", ErrKeyNotFound, path, view)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	return &LiveKey{key: key, name: path}, nil
}

// LiveKey wraps a winregistry.Key to implement Key.
type LiveKey struct {
	key  winregistry.Key
	name string
}

// Name returns the path the key was opened with.
func (k *LiveKey) Name() string {
	return k.name
}

// Close closes the key.
func (k *LiveKey) Close() error {
	return k.key.Close()
}

// Value returns the named value after confirming it exists.
func (k *LiveKey) Value(name string) (Value, error) {
	if _, _, err := k.key.GetValue(name, nil); err != nil {
		if errors.Is(err, winregistry.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s\\%s", ErrValueNotFound, k.name, name)
		}
		return nil, err
	}
	return &LiveValue{key: k.key, name: name}, nil
}

// LiveValue reads a single value lazily from its key.
type LiveValue struct {
	key  winregistry.Key
	name string
}

// Name returns the name of the value.
func (v *LiveValue) Name() string {
	return v.name
}

// DataString returns the data contained in the value as a string.
func (v *LiveValue) DataString() (string, error) {
	_, valtype, err := v.key.GetValue(v.name, nil)
	if err != nil {
		return "", err
	}

	switch valtype {
	case winregistry.SZ, winregistry.EXPAND_SZ:
		val, _, err := v.key.GetStringValue(v.name)
		return val, err
	case winregistry.MULTI_SZ:
		vals, _, err := v.key.GetStringsValue(v.name)
		return strings.Join(vals, "\n"), err
	case winregistry.DWORD, winregistry.DWORD_BIG_ENDIAN, winregistry.QWORD:
		val, _, err := v.key.GetIntegerValue(v.name)
		return strconv.FormatUint(val, 10), err
	case winregistry.BINARY:
		val, _, err := v.key.GetBinaryValue(v.name)
		return fmt.Sprintf("%x", val), err
	default:
		return "", fmt.Errorf("unsupported value type: %v for value %q", valtype, v.name)
	}
}
