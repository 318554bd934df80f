// pkg/predicates/predicates.go - environment preconditions for the bootstrapper
//
// A precondition answers a yes/no question about the machine: whether a registry
// key exists, whether a registry value compares as expected, or whether a process
// is running. Every precondition carries an Inverse flag that flips the raw answer
// and the message shown to the user when the precondition does not hold.

package predicates

import (
	"fmt"
)

// Value types understood by RegValue.
const (
	TypeString  = "string"
	TypeLong    = "long"
	TypeVersion = "version"
	TypeMatch   = "match"
)

// Precondition is one of RegKey, RegValue or RunningProcess.
type Precondition interface {
	// ErrorMessage is the text surfaced when the precondition fails.
	ErrorMessage() string
	// String describes the precondition for logs.
	String() string

	isPrecondition()
}

// RegKey holds when the key at Path exists.
type RegKey struct {
	Path    string `yaml:"path" json:"path"`
	X64     bool   `yaml:"x64,omitempty" json:"x64,omitempty"`
	Inverse bool   `yaml:"inverse,omitempty" json:"inverse,omitempty"`
	Message string `yaml:"error_message,omitempty" json:"error_message,omitempty"`
}

// RegValue holds when the named value exists and compares as requested against Value.
type RegValue struct {
	Path       string `yaml:"path" json:"path"`
	X64        bool   `yaml:"x64,omitempty" json:"x64,omitempty"`
	Inverse    bool   `yaml:"inverse,omitempty" json:"inverse,omitempty"`
	Message    string `yaml:"error_message,omitempty" json:"error_message,omitempty"`
	ValueName  string `yaml:"value_name" json:"value_name"`
	Value      string `yaml:"value" json:"value"`
	Type       string `yaml:"type" json:"type"`             // string, long, version, match
	Comparison string `yaml:"comparison" json:"comparison"` // ==, !=, >, <, >=, <=
}

// RunningProcess holds when at least one process with the given name is running.
type RunningProcess struct {
	Name    string `yaml:"name" json:"name"`
	Inverse bool   `yaml:"inverse,omitempty" json:"inverse,omitempty"`
	Message string `yaml:"error_message,omitempty" json:"error_message,omitempty"`
}

func (RegKey) isPrecondition()         {}
func (RegValue) isPrecondition()       {}
func (RunningProcess) isPrecondition() {}

func (k RegKey) ErrorMessage() string         { return k.Message }
func (v RegValue) ErrorMessage() string       { return v.Message }
func (p RunningProcess) ErrorMessage() string { return p.Message }

func (k RegKey) String() string {
	return fmt.Sprintf("registry key %s%s", notPrefix(k.Inverse), k.Path)
}

func (v RegValue) String() string {
	return fmt.Sprintf("registry value %s%s\\%s %s %s %q", notPrefix(v.Inverse), v.Path, v.ValueName, v.Type, v.Comparison, v.Value)
}

func (p RunningProcess) String() string {
	return fmt.Sprintf("running process %s%s", notPrefix(p.Inverse), p.Name)
}

func notPrefix(inverse bool) string {
	if inverse {
		return "not "
	}
	return ""
}

// Checks groups preconditions by kind. They are evaluated in field order:
// registry keys, then registry values, then running processes.
type Checks struct {
	RegistryKeys     []RegKey         `yaml:"registry_keys,omitempty" json:"registry_keys,omitempty"`
	RegistryValues   []RegValue       `yaml:"registry_values,omitempty" json:"registry_values,omitempty"`
	RunningProcesses []RunningProcess `yaml:"running_processes,omitempty" json:"running_processes,omitempty"`
}

// All returns every precondition in evaluation order.
func (c Checks) All() []Precondition {
	all := make([]Precondition, 0, c.Len())
	for _, k := range c.RegistryKeys {
		all = append(all, k)
	}
	for _, v := range c.RegistryValues {
		all = append(all, v)
	}
	for _, p := range c.RunningProcesses {
		all = append(all, p)
	}
	return all
}

// Len returns the number of preconditions.
func (c Checks) Len() int {
	return len(c.RegistryKeys) + len(c.RegistryValues) + len(c.RunningProcesses)
}
