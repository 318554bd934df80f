// pkg/installer/runner.go - external process launching for installers.

package installer

import (
	"errors"
	"os/exec"
)

// Runner launches a program with an argument string, waits for it to exit and
// returns its exit code. Output is not captured and no shell is involved.
// A program that cannot be started returns an error; a program that ran
// returns its exit code and a nil error, whatever the code.
type Runner interface {
	Run(name, args string) (int, error)
}

// RunnerFunc adapts a function to a Runner.
type RunnerFunc func(name, args string) (int, error)

// Run calls f.
func (f RunnerFunc) Run(name, args string) (int, error) {
	return f(name, args)
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct {
	HideWindow bool // Windows only: start without a visible window
}

// exitCode converts the result of cmd.Run into the Runner contract.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
