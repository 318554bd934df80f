// pkg/progress/stream.go - progress events as a channel for a UI goroutine

package progress

import "sync"

// Kind identifies a progress event.
type Kind int

const (
	KindInit Kind = iota
	KindMessage
	KindIncrement
	KindDecrement
	KindEnd
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindInit:
		return "init"
	case KindMessage:
		return "message"
	case KindIncrement:
		return "increment"
	case KindDecrement:
		return "decrement"
	case KindEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Event is a single progress event. Total is set for KindInit and Text for KindMessage.
type Event struct {
	Kind  Kind
	Total int
	Text  string
}

// Stream is an Observer that re-delivers events on a channel, in order.
// Events are queued without bound so the notifying goroutine never waits on
// the reader. The channel is closed after the End event has been delivered.
type Stream struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Event
	closed bool
	out    chan Event
}

// NewStream creates a Stream and starts its delivery goroutine.
func NewStream() *Stream {
	s := &Stream{out: make(chan Event)}
	s.cond = sync.NewCond(&s.mu)
	go s.pump()
	return s
}

// Events returns the channel events are delivered on.
func (s *Stream) Events() <-chan Event {
	return s.out
}

func (s *Stream) push(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, e)
	if e.Kind == KindEnd {
		s.closed = true
	}
	s.cond.Signal()
}

func (s *Stream) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 {
			s.cond.Wait()
		}
		e := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.out <- e
		if e.Kind == KindEnd {
			return
		}
	}
}

func (s *Stream) OnInit(total int)      { s.push(Event{Kind: KindInit, Total: total}) }
func (s *Stream) OnMessage(text string) { s.push(Event{Kind: KindMessage, Text: text}) }
func (s *Stream) OnIncrement()          { s.push(Event{Kind: KindIncrement}) }
func (s *Stream) OnDecrement()          { s.push(Event{Kind: KindDecrement}) }
func (s *Stream) OnEnd()                { s.push(Event{Kind: KindEnd}) }
