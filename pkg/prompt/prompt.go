// pkg/prompt/prompt.go - yes/no confirmation for package prompts and product removals

package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Confirmer asks a yes/no question and blocks until it is answered.
type Confirmer interface {
	Confirm(title, message string) bool
}

// Func adapts a function to a Confirmer.
type Func func(title, message string) bool

// Confirm calls f.
func (f Func) Confirm(title, message string) bool {
	return f(title, message)
}

// Always answers every question with the same value, for unattended runs.
type Always bool

// Confirm returns the fixed answer.
func (a Always) Confirm(_, _ string) bool {
	return bool(a)
}

// Console asks on a terminal. Anything other than "y" or "yes" is a no,
// including end of input.
type Console struct {
	In  io.Reader
	Out io.Writer

	once   sync.Once
	reader *bufio.Reader
}

// NewConsole returns a Console on stdin and stdout.
func NewConsole() *Console {
	return &Console{In: os.Stdin, Out: os.Stdout}
}

// Confirm prints the question and reads one line of input.
func (c *Console) Confirm(title, message string) bool {
	c.once.Do(func() {
		c.reader = bufio.NewReader(c.In)
	})

	if title != "" {
		fmt.Fprintf(c.Out, "%s\n", title)
	}
	fmt.Fprintf(c.Out, "%s [y/N]: ", message)

	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.Out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
