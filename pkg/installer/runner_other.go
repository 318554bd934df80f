//go:build !windows

package installer

import (
	"fmt"
	"os/exec"

	"github.com/mattn/go-shellwords"
)

// Run splits args with shell quoting rules, without invoking a shell, and starts name.
func (r ExecRunner) Run(name, args string) (int, error) {
	argv, err := shellwords.Parse(args)
	if err != nil {
		return -1, fmt.Errorf("parsing arguments %q: %w", args, err)
	}
	return exitCode(exec.Command(name, argv...).Run())
}
