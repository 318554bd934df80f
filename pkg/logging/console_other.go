//go:build !windows

package logging

// enableColors is a no-op; ANSI sequences work on other terminals as-is.
func enableColors() {}
