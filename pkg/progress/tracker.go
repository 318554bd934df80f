// pkg/progress/tracker.go - running position derived from progress events

package progress

import "sync"

// Tracker is an Observer that keeps the current position and total.
// It is safe to read from another goroutine while events are delivered.
type Tracker struct {
	mu        sync.RWMutex
	current   int
	total     int
	message   string
	ended     bool
	increment int
	decrement int
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// OnInit records a new total. The current position is kept, so a total
// re-announced mid-run does not lose ticks already consumed.
func (t *Tracker) OnInit(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = total
}

func (t *Tracker) OnMessage(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.message = text
}

func (t *Tracker) OnIncrement() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current++
	t.increment++
}

func (t *Tracker) OnDecrement() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current--
	t.decrement++
}

func (t *Tracker) OnEnd() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ended = true
}

// Position returns the current position and total.
func (t *Tracker) Position() (current, total int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current, t.total
}

// Percent returns the position as a percentage clamped to 0..100.
// It returns -1 before a total has been announced.
func (t *Tracker) Percent() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.total <= 0 {
		return -1
	}
	pct := t.current * 100 / t.total
	return min(max(pct, 0), 100)
}

// Message returns the last status text.
func (t *Tracker) Message() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.message
}

// Ended reports whether End has been received.
func (t *Tracker) Ended() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ended
}

// Ticks returns the number of increments and decrements received.
func (t *Tracker) Ticks() (increments, decrements int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.increment, t.decrement
}
