//go:build windows

package prompt

import "github.com/gonutz/w32"

// MessageBox asks with a modal Windows message box.
type MessageBox struct{}

// NewMessageBox returns a Confirmer that shows a Yes/No message box.
func NewMessageBox() Confirmer {
	return MessageBox{}
}

// Confirm shows the message box and reports whether Yes was chosen.
func (MessageBox) Confirm(title, message string) bool {
	ret := w32.MessageBox(0, message, title, w32.MB_YESNO|w32.MB_ICONQUESTION)
	return ret == w32.IDYES
}
