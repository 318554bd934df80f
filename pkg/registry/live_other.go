//go:build !windows

package registry

import "fmt"

// LiveRegistry has no backing store outside Windows; every key is reported missing.
type LiveRegistry struct{}

// NewLive returns the placeholder registry for non-Windows builds.
func NewLive() *LiveRegistry {
	return &LiveRegistry{}
}

// OpenKey always reports ErrKeyNotFound.
func (r *LiveRegistry) OpenKey(path string, view View) (Key, error) {
	if _, _, err := SplitPath(path); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s (%s view)", ErrKeyNotFound, path, view)
}
