// pkg/guard/guard.go - single-instance guard shared by every bootstrapper on the machine.

package guard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/windowsadmins/cimianboot/pkg/logging"
)

// osLock is the platform lock behind a Guard.
type osLock interface {
	release() error
}

// Guard ensures only one bootstrapper installs at a time. The holder writes
// its product name to a marker file so a second instance can name it.
type Guard struct {
	id          string
	productName string
	dir         string

	mu   sync.Mutex
	held bool
	lock osLock
}

// New returns a guard for id. dir holds the marker file; an empty dir uses DefaultDir.
func New(id, productName, dir string) *Guard {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Guard{id: id, productName: productName, dir: dir}
}

// MarkerPath returns the path of the file naming the current holder.
func (g *Guard) MarkerPath() string {
	return filepath.Join(g.dir, g.id+".txt")
}

// Acquire takes the guard. When another instance already holds it,
// alreadyRunning is true and holder is the product name from the marker file
// (empty if there is none).
func (g *Guard) Acquire() (alreadyRunning bool, holder string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held {
		return false, "", nil
	}

	lock, acquired, err := acquireLock(g.id, g.dir)
	if err != nil {
		return false, "", fmt.Errorf("failed to acquire install guard %s: %w", g.id, err)
	}
	if !acquired {
		holder = g.readMarker()
		logging.Warn("Another installation is in progress", "guard", g.id, "holder", holder)
		return true, holder, nil
	}

	g.lock = lock
	g.held = true
	if err := g.writeMarker(); err != nil {
		// The guard still holds; only the holder name is lost.
		logging.Warn("Failed to write install marker", "path", g.MarkerPath(), "error", err)
	}
	logging.Debug("Install guard acquired", "guard", g.id, "product", g.productName)
	return false, "", nil
}

// Release drops the guard and removes the marker file. Releasing a guard that
// is not held is a no-op.
func (g *Guard) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.held {
		return nil
	}
	g.held = false

	var errs []error
	if err := os.Remove(g.MarkerPath()); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove install marker: %w", err))
	}
	if err := g.lock.release(); err != nil {
		errs = append(errs, fmt.Errorf("failed to release install guard: %w", err))
	}
	g.lock = nil
	return errors.Join(errs...)
}

func (g *Guard) writeMarker() error {
	if _, err := os.Stat(g.dir); err != nil {
		return err
	}
	return os.WriteFile(g.MarkerPath(), []byte(g.productName), 0o644)
}

func (g *Guard) readMarker() string {
	data, err := os.ReadFile(g.MarkerPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ConflictError returns the message shown when holder already runs an installation.
func ConflictError(holder string) error {
	if holder == "" {
		return errors.New("Concurrent installations are not allowed. Please complete the other installation and then try again.")
	}
	return fmt.Errorf("Concurrent installations are not allowed. Please complete the installation for '%s' and then try again.", holder)
}
