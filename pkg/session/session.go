// pkg/session/session.go - the install session: global checks, product removal,
// the package loop and rollback.

package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/windowsadmins/cimianboot/pkg/blocking"
	"github.com/windowsadmins/cimianboot/pkg/config"
	"github.com/windowsadmins/cimianboot/pkg/guard"
	"github.com/windowsadmins/cimianboot/pkg/installer"
	"github.com/windowsadmins/cimianboot/pkg/logging"
	"github.com/windowsadmins/cimianboot/pkg/predicates"
	"github.com/windowsadmins/cimianboot/pkg/progress"
	"github.com/windowsadmins/cimianboot/pkg/prompt"
	"github.com/windowsadmins/cimianboot/pkg/registry"
	"github.com/windowsadmins/cimianboot/pkg/removal"
)

// Status messages announced through the notifier.
const (
	MsgCompleted   = "Installation completed."
	MsgRollingBack = "An error has occurred. Rolling back installation."
	MsgRolledBack  = "An error has occurred. Rolled back installation."
)

// State is the lifecycle position of a Session.
type State int

const (
	Idle State = iota
	Running
	Completed
	Failed
	RollingBack
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	case RollingBack:
		return "RollingBack"
	case Ended:
		return "Ended"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options wires a Session to its collaborators. Removal, Guard and Confirm
// are optional.
type Options struct {
	Manifest  *config.Manifest
	Evaluator *predicates.Evaluator
	Installer *installer.Installer
	Removal   *removal.Coordinator
	Guard     *guard.Guard
	Confirm   prompt.Confirmer // answers package prompts
	Notifier  *progress.Notifier
}

// Result is the outcome of a finished session. State is the last state
// before Ended: Completed, RollingBack after a rollback, or Failed when the
// session stopped before installing anything.
type Result struct {
	State      State
	Err        error
	Installed  []string
	Skipped    []string
	RolledBack []string
	Current    int
	Total      int
}

// Succeeded reports whether the session completed without error.
func (r Result) Succeeded() bool {
	return r.State == Completed && r.Err == nil
}

// Session runs one manifest once. All work happens on a single goroutine;
// the accessors may be called from any goroutine.
type Session struct {
	opts     Options
	notifier *progress.Notifier
	tracker  *progress.Tracker

	mu          sync.Mutex
	state       State
	err         error
	history     []config.Package
	skipped     []string
	rolledBack  []string
	preflighted bool
	guardHeld   bool
}

// New creates an idle session. The installer reports progress through the
// session's notifier.
func New(opts Options) (*Session, error) {
	if opts.Manifest == nil {
		return nil, errors.New("session requires a manifest")
	}
	if opts.Installer == nil {
		return nil, errors.New("session requires an installer")
	}
	if opts.Evaluator == nil {
		opts.Evaluator = predicates.NewEvaluator(registry.NewLive(), blocking.ProcessLister{})
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = progress.NewNotifier()
	}
	opts.Installer.Notifier = notifier

	tracker := progress.NewTracker()
	notifier.Subscribe(tracker)

	return &Session{
		opts:     opts,
		notifier: notifier,
		tracker:  tracker,
		state:    Idle,
	}, nil
}

// fail records err as the terminal error unless one is already set.
func (s *Session) fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
		logging.Error("Installation error", "error", err)
	}
}

// Err returns the terminal error, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	prev := s.state
	s.state = st
	s.mu.Unlock()
	logging.Debug("Session state changed", "from", prev.String(), "to", st.String())
}

// Progress returns the current position and announced total.
func (s *Session) Progress() (current, total int) {
	return s.tracker.Position()
}

// History returns the packages installed so far, in install order.
func (s *Session) History() []config.Package {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// Preflight runs the checks that must pass before any package is touched:
// the single-instance guard, then the manifest's global registry key, registry
// value and running process checks, then product removals. It stops at the
// first failure, which becomes the terminal error.
func (s *Session) Preflight() error {
	s.mu.Lock()
	if s.preflighted {
		err := s.err
		s.mu.Unlock()
		return err
	}
	s.preflighted = true
	s.mu.Unlock()

	if err := s.acquireGuard(); err != nil {
		s.fail(err)
		return s.Err()
	}

	if failed := s.opts.Evaluator.FirstFailure(s.opts.Manifest.Checks.All()); failed != nil {
		logging.LogCheckFailed("global", failed.String(), failed.ErrorMessage())
		s.fail(checkError(failed))
		return s.Err()
	}

	if s.opts.Removal != nil && len(s.opts.Manifest.ProductRemovals) > 0 {
		if err := s.opts.Removal.Remove(s.opts.Manifest.ProductRemovals); err != nil {
			s.fail(err)
			return s.Err()
		}
	}
	return s.Err()
}

func (s *Session) acquireGuard() error {
	if s.opts.Guard == nil {
		return nil
	}
	running, holder, err := s.opts.Guard.Acquire()
	if err != nil {
		return err
	}
	if running {
		return guard.ConflictError(holder)
	}
	s.mu.Lock()
	s.guardHeld = true
	s.mu.Unlock()
	return nil
}

func checkError(p predicates.Precondition) error {
	if msg := p.ErrorMessage(); msg != "" {
		return errors.New(msg)
	}
	return fmt.Errorf("A required condition was not met: %s", p.String())
}

// Close releases the single-instance guard.
func (s *Session) Close() error {
	s.mu.Lock()
	held := s.guardHeld
	s.guardHeld = false
	s.mu.Unlock()
	if !held {
		return nil
	}
	return s.opts.Guard.Release()
}

// Start runs Install on a new goroutine and delivers its result once.
func (s *Session) Start() <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- s.Install()
	}()
	return out
}

// Install runs the session to the end and returns its result. Preflight runs
// first if it has not been called. A session that failed preflight announces
// only End.
func (s *Session) Install() Result {
	if s.State() != Idle {
		return s.result(Idle)
	}

	if err := s.Preflight(); err != nil {
		s.setState(Ended)
		s.notifier.End()
		return s.result(Failed)
	}

	s.setState(Running)
	outcome := Completed
	if s.run() {
		s.complete()
		s.setState(Completed)
	} else {
		s.setState(Failed)
		s.setState(RollingBack)
		s.rollback()
		outcome = RollingBack
	}

	s.setState(Ended)
	s.notifier.End()
	return s.result(outcome)
}

// run walks the packages in order. It returns false once an install fails.
func (s *Session) run() bool {
	packages := s.opts.Manifest.Packages
	total := 2 * len(packages)
	s.notifier.Init(total)
	logging.Info("Starting installation", "product", s.opts.Manifest.ProductName, "packages", len(packages))

	for _, pkg := range packages {
		if reason, skip := s.shouldSkip(pkg); skip {
			logging.LogInstallSkipped(pkg.Name, reason)
			s.mu.Lock()
			s.skipped = append(s.skipped, pkg.Name)
			s.mu.Unlock()
			total -= 2
			s.notifier.Init(total)
			continue
		}

		path := s.opts.Installer.FilePath(pkg)
		if err := s.opts.Installer.Extract(pkg, path); err != nil {
			s.fail(err)
			// the install tick is still consumed so rollback accounting balances
			s.notifier.Increment()
		} else if err := s.opts.Installer.Install(pkg, path); err != nil {
			s.fail(err)
		}

		if s.Err() != nil {
			s.notifier.Decrement()
			s.notifier.Decrement()
			return false
		}

		s.mu.Lock()
		s.history = append(s.history, pkg)
		s.mu.Unlock()
	}
	return true
}

// shouldSkip reports whether pkg is skipped by a failing check or a declined prompt.
func (s *Session) shouldSkip(pkg config.Package) (string, bool) {
	if failed := s.opts.Evaluator.FirstFailure(pkg.Checks.All()); failed != nil {
		logging.LogCheckFailed(pkg.Name, failed.String(), failed.ErrorMessage())
		return fmt.Sprintf("check failed: %s", failed.String()), true
	}
	if pkg.Prompt != "" {
		if s.opts.Confirm == nil || !s.opts.Confirm.Confirm(s.opts.Manifest.ProductName, pkg.Prompt) {
			return "declined by user", true
		}
	}
	return "", false
}

func (s *Session) complete() {
	if len(s.History()) == 0 {
		s.notifier.Init(1)
		s.notifier.Increment()
	}
	s.notifier.Message(MsgCompleted)
	logging.Info("Installation completed", "product", s.opts.Manifest.ProductName, "installed", len(s.History()))
}

// rollback undoes the installed packages newest first. Every package gives
// back exactly the two ticks it consumed.
func (s *Session) rollback() {
	history := s.History()
	s.notifier.Message(MsgRollingBack)
	logging.LogRollbackEvent("started", len(history))

	for i := len(history) - 1; i >= 0; i-- {
		pkg := history[i]
		if pkg.SupportsUninstall {
			s.opts.Installer.Uninstall(pkg, s.opts.Installer.FilePath(pkg))
		} else {
			s.notifier.Decrement()
		}
		s.notifier.Decrement()

		s.mu.Lock()
		s.rolledBack = append(s.rolledBack, pkg.Name)
		s.mu.Unlock()
	}

	s.notifier.Message(MsgRolledBack)
	logging.LogRollbackEvent("completed", len(history))
}

func (s *Session) result(outcome State) Result {
	current, total := s.Progress()
	s.mu.Lock()
	defer s.mu.Unlock()
	r := Result{
		State:      s.state,
		Err:        s.err,
		Skipped:    slices.Clone(s.skipped),
		RolledBack: slices.Clone(s.rolledBack),
		Current:    current,
		Total:      total,
	}
	if outcome != Idle {
		r.State = outcome
	}
	for _, pkg := range s.history {
		r.Installed = append(r.Installed, pkg.Name)
	}
	return r
}
