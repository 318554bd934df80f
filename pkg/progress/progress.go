// pkg/progress/progress.go - progress notification fan-out for install sessions
//
// The session drives a Notifier with five events: Init announces the total
// number of ticks, Increment and Decrement move the current position by one,
// Message carries status text, and End closes the run. Observers attached to
// the Notifier receive every event, in attachment order, on the goroutine that
// raised it.

package progress

import "sync"

// Observer receives progress events.
type Observer interface {
	OnInit(total int)
	OnMessage(text string)
	OnIncrement()
	OnDecrement()
	OnEnd()
}

// Funcs adapts optional callbacks to an Observer. Nil callbacks are skipped.
type Funcs struct {
	Init      func(total int)
	Message   func(text string)
	Increment func()
	Decrement func()
	End       func()
}

func (f Funcs) OnInit(total int) {
	if f.Init != nil {
		f.Init(total)
	}
}

func (f Funcs) OnMessage(text string) {
	if f.Message != nil {
		f.Message(text)
	}
}

func (f Funcs) OnIncrement() {
	if f.Increment != nil {
		f.Increment()
	}
}

func (f Funcs) OnDecrement() {
	if f.Decrement != nil {
		f.Decrement()
	}
}

func (f Funcs) OnEnd() {
	if f.End != nil {
		f.End()
	}
}

// Notifier fans events out to its observers. The zero value has no observers
// and is ready to use; raising events with no observers does nothing.
type Notifier struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewNotifier creates a Notifier with the given observers attached.
func NewNotifier(observers ...Observer) *Notifier {
	n := &Notifier{}
	for _, o := range observers {
		n.Subscribe(o)
	}
	return n
}

// Subscribe attaches o. Observers are notified in the order they were attached.
func (n *Notifier) Subscribe(o Observer) {
	if o == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = append(n.observers, o)
}

func (n *Notifier) each(fn func(Observer)) {
	if n == nil {
		return
	}
	n.mu.RLock()
	observers := n.observers
	n.mu.RUnlock()

	for _, o := range observers {
		fn(o)
	}
}

// Init announces the total number of ticks.
func (n *Notifier) Init(total int) {
	n.each(func(o Observer) { o.OnInit(total) })
}

// Message announces status text.
func (n *Notifier) Message(text string) {
	n.each(func(o Observer) { o.OnMessage(text) })
}

// Increment advances progress by one tick.
func (n *Notifier) Increment() {
	n.each(func(o Observer) { o.OnIncrement() })
}

// Decrement moves progress back by one tick.
func (n *Notifier) Decrement() {
	n.each(func(o Observer) { o.OnDecrement() })
}

// End announces that the run is over.
func (n *Notifier) End() {
	n.each(func(o Observer) { o.OnEnd() })
}
