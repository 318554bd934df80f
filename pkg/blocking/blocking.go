// pkg/blocking/blocking.go - running process detection for precondition checks

package blocking

import (
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/windowsadmins/cimianboot/pkg/logging"
)

// Lister returns the image names of every running process.
type Lister interface {
	Names() ([]string, error)
}

// ProcessLister enumerates live processes through gopsutil.
type ProcessLister struct{}

// Names returns the name of every process that could be inspected.
// Processes that exit or deny access while being listed are skipped.
func (ProcessLister) Names() ([]string, error) {
	processes, err := process.Processes()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(processes))
	for _, proc := range processes {
		name, err := proc.Name()
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Static is a fixed process list, used when the process table is known up front.
type Static []string

// Names returns the fixed list.
func (s Static) Names() ([]string, error) {
	return s, nil
}

// ProcessName drops a trailing ".exe" so that "setup.exe" and "setup" name the same process.
func ProcessName(image string) string {
	if len(image) > 4 && strings.EqualFold(image[len(image)-4:], ".exe") {
		return image[:len(image)-4]
	}
	return image
}

// Count returns how many running processes are named exactly name.
// The comparison is case-sensitive; a trailing ".exe" on either side is ignored.
func Count(l Lister, name string) (int, error) {
	names, err := l.Names()
	if err != nil {
		return 0, err
	}

	target := ProcessName(name)
	count := 0
	for _, n := range names {
		if ProcessName(n) == target {
			count++
		}
	}
	return count, nil
}

// IsAppRunning reports whether at least one process named name is running.
// A listing failure is logged and treated as no match.
func IsAppRunning(l Lister, name string) bool {
	count, err := Count(l, name)
	if err != nil {
		logging.Error("Failed to get process list", "error", err)
		return false
	}

	logging.Debug("Checked running processes", "process", name, "count", count)
	return count > 0
}
