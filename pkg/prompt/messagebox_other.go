//go:build !windows

package prompt

// NewMessageBox falls back to a console prompt where message boxes are unavailable.
func NewMessageBox() Confirmer {
	return NewConsole()
}
