// pkg/predicates/evaluator.go - evaluation of preconditions against the live machine

package predicates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/windowsadmins/cimianboot/pkg/blocking"
	"github.com/windowsadmins/cimianboot/pkg/logging"
	"github.com/windowsadmins/cimianboot/pkg/registry"
)

var versionToken = regexp.MustCompile(`\d+(\.\d+){0,2}`)

// Evaluator answers preconditions. It reads only machine state and never
// returns an error: anything that prevents a check from running counts as
// the check not holding, before Inverse is applied.
type Evaluator struct {
	Registry  registry.Registry
	Processes blocking.Lister
}

// NewEvaluator creates an Evaluator over the given registry and process lister.
func NewEvaluator(reg registry.Registry, procs blocking.Lister) *Evaluator {
	return &Evaluator{Registry: reg, Processes: procs}
}

// Evaluate reports whether p holds.
func (e *Evaluator) Evaluate(p Precondition) bool {
	var result bool
	switch c := p.(type) {
	case RegKey:
		result = e.keyExists(c.Path, c.X64) != c.Inverse
	case RegValue:
		result = e.valueMatches(c) != c.Inverse
	case RunningProcess:
		result = blocking.IsAppRunning(e.Processes, c.Name) != c.Inverse
	default:
		logging.Warn("Unknown precondition type", "type", fmt.Sprintf("%T", p))
		return false
	}

	logging.Debug("Evaluated precondition", "check", p.String(), "result", result)
	return result
}

// FirstFailure returns the first precondition in ps that does not hold, or nil.
func (e *Evaluator) FirstFailure(ps []Precondition) Precondition {
	for _, p := range ps {
		if !e.Evaluate(p) {
			return p
		}
	}
	return nil
}

func view(x64 bool) registry.View {
	if x64 {
		return registry.View64
	}
	return registry.ViewDefault
}

func (e *Evaluator) keyExists(path string, x64 bool) bool {
	key, err := e.Registry.OpenKey(path, view(x64))
	if err != nil {
		if !registry.IsNotExist(err) {
			logging.Warn("Failed to open registry key", "path", path, "error", err)
		}
		return false
	}
	key.Close()
	return true
}

// valueMatches returns the raw comparison result for rv, without Inverse.
func (e *Evaluator) valueMatches(rv RegValue) bool {
	key, err := e.Registry.OpenKey(rv.Path, view(rv.X64))
	if err != nil {
		if !registry.IsNotExist(err) {
			logging.Warn("Failed to open registry key", "path", rv.Path, "error", err)
		}
		return false
	}
	defer key.Close()

	value, err := key.Value(rv.ValueName)
	if err != nil {
		if !registry.IsNotExist(err) {
			logging.Warn("Failed to read registry value", "path", rv.Path, "value", rv.ValueName, "error", err)
		}
		return false
	}

	actual, err := value.DataString()
	if err != nil {
		logging.Warn("Failed to read registry value data", "path", rv.Path, "value", rv.ValueName, "error", err)
		return false
	}

	ok, err := Compare(rv.Type, rv.Comparison, actual, rv.Value)
	if err != nil {
		logging.Warn("Registry value comparison failed", "path", rv.Path, "value", rv.ValueName, "error", err)
		return false
	}
	return ok
}

// Compare evaluates "actual comparison expected" for the given value type.
// An unsupported operator for the type yields false with no error; values
// that cannot be interpreted as the type yield an error.
func Compare(valueType, comparison, actual, expected string) (bool, error) {
	switch strings.ToLower(valueType) {
	case TypeString:
		switch comparison {
		case "==":
			return actual == expected, nil
		case "!=":
			return actual != expected, nil
		}
		return false, nil

	case TypeMatch:
		re, err := regexp.Compile(expected)
		if err != nil {
			return false, fmt.Errorf("invalid pattern %q: %w", expected, err)
		}
		return re.MatchString(actual), nil

	case TypeVersion:
		a, x, err := versionPair(actual, expected)
		if err != nil {
			return false, err
		}
		return ordered(comparison, a.Compare(x)), nil

	case TypeLong:
		a, err := strconv.ParseInt(strings.TrimSpace(actual), 10, 64)
		if err != nil {
			return false, fmt.Errorf("parsing %q as long: %w", actual, err)
		}
		x, err := strconv.ParseInt(strings.TrimSpace(expected), 10, 64)
		if err != nil {
			return false, fmt.Errorf("parsing %q as long: %w", expected, err)
		}
		switch {
		case a < x:
			return ordered(comparison, -1), nil
		case a > x:
			return ordered(comparison, 1), nil
		default:
			return ordered(comparison, 0), nil
		}
	}

	return false, fmt.Errorf("unsupported value type %q", valueType)
}

// versionPair extracts the first dotted version token (one to three parts) from
// each side and parses both at the precision of the shorter token, so that
// "1.2" and "1.2.3.4" compare equal.
func versionPair(actual, expected string) (*version.Version, *version.Version, error) {
	at := versionToken.FindString(actual)
	if at == "" {
		return nil, nil, fmt.Errorf("no version found in %q", actual)
	}
	et := versionToken.FindString(expected)
	if et == "" {
		return nil, nil, fmt.Errorf("no version found in %q", expected)
	}

	ap, ep := strings.Split(at, "."), strings.Split(et, ".")
	n := min(len(ap), len(ep))

	a, err := version.NewVersion(strings.Join(ap[:n], "."))
	if err != nil {
		return nil, nil, err
	}
	x, err := version.NewVersion(strings.Join(ep[:n], "."))
	if err != nil {
		return nil, nil, err
	}
	return a, x, nil
}

// ordered applies comparison to the result of a three-way compare.
func ordered(comparison string, cmp int) bool {
	switch comparison {
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	default:
		return false
	}
}

// ValidComparison reports whether comparison is one of the six supported operators.
func ValidComparison(comparison string) bool {
	switch comparison {
	case "==", "!=", ">", "<", ">=", "<=":
		return true
	}
	return false
}

// ValidType reports whether t is a supported RegValue type.
func ValidType(t string) bool {
	switch strings.ToLower(t) {
	case TypeString, TypeLong, TypeVersion, TypeMatch:
		return true
	}
	return false
}
