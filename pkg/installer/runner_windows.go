//go:build windows

package installer

import (
	"os/exec"
	"strings"
	"syscall"
)

// Run starts name with args passed through verbatim as the command line tail,
// so installer-specific quoting such as /l "C:\path with spaces" is preserved.
func (r ExecRunner) Run(name, args string) (int, error) {
	cmd := exec.Command(name)
	cmdLine := syscall.EscapeArg(name)
	if strings.TrimSpace(args) != "" {
		cmdLine += " " + args
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow: r.HideWindow,
		CmdLine:    cmdLine,
	}
	return exitCode(cmd.Run())
}
