//go:build !windows

package msi

import "github.com/windowsadmins/cimianboot/pkg/logging"

// APIEnumerator has no installer database outside Windows and reports no products.
type APIEnumerator struct{}

// NewAPIEnumerator returns the placeholder enumerator for non-Windows builds.
func NewAPIEnumerator() *APIEnumerator {
	return &APIEnumerator{}
}

// Products always returns an empty list.
func (e *APIEnumerator) Products() ([]Product, error) {
	logging.Debug("Windows Installer database unavailable on this platform")
	return nil, nil
}

// WMIEnumerator has no WMI service outside Windows and reports no products.
type WMIEnumerator struct{}

// NewWMIEnumerator returns the placeholder enumerator for non-Windows builds.
func NewWMIEnumerator() *WMIEnumerator {
	return &WMIEnumerator{}
}

// Products always returns an empty list.
func (e *WMIEnumerator) Products() ([]Product, error) {
	logging.Debug("WMI unavailable on this platform")
	return nil, nil
}
