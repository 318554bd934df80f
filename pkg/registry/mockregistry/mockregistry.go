// Package mockregistry provides an in-memory implementation of registry.Registry for tests.
package mockregistry

import (
	"fmt"
	"strings"

	"github.com/windowsadmins/cimianboot/pkg/registry"
)

// MockRegistry maps hive-qualified key paths to keys. Lookups are case-insensitive,
// matching the Windows registry. Keys64 and Keys32, when set, are consulted for
// the matching view instead of Keys.
type MockRegistry struct {
	Keys   map[string]*MockKey
	Keys32 map[string]*MockKey
	Keys64 map[string]*MockKey
}

// New returns a MockRegistry holding the given keys in the default view.
func New(keys ...*MockKey) *MockRegistry {
	r := &MockRegistry{Keys: map[string]*MockKey{}}
	for _, k := range keys {
		r.Keys[k.KName] = k
	}
	return r
}

// OpenKey returns the key registered under path for the requested view.
func (r *MockRegistry) OpenKey(path string, view registry.View) (registry.Key, error) {
	if _, _, err := registry.SplitPath(path); err != nil {
		return nil, err
	}

	keys := r.Keys
	switch {
	case view == registry.View32 && r.Keys32 != nil:
		keys = r.Keys32
	case view == registry.View64 && r.Keys64 != nil:
		keys = r.Keys64
	}

	for name, key := range keys {
		if strings.EqualFold(strings.Trim(name, `\`), strings.Trim(path, `\`)) {
			return key, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", registry.ErrKeyNotFound, path)
}

// MockKey mocks a registry.Key.
type MockKey struct {
	KName   string
	KValues []*MockValue
}

// Name returns the name of the key.
func (k *MockKey) Name() string {
	return k.KName
}

// Close does nothing when mocking.
func (k *MockKey) Close() error {
	return nil
}

// Value returns the value with the given name.
func (k *MockKey) Value(name string) (registry.Value, error) {
	for _, v := range k.KValues {
		if strings.EqualFold(v.VName, name) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s\\%s", registry.ErrValueNotFound, k.KName, name)
}

// MockValue mocks a registry.Value.
type MockValue struct {
	VName       string
	VDataString string
}

// Name returns the name of the value.
func (v *MockValue) Name() string {
	return v.VName
}

// DataString returns the data contained in the value as a string.
func (v *MockValue) DataString() (string, error) {
	return v.VDataString, nil
}
