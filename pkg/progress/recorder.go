// pkg/progress/recorder.go - records events for later inspection

package progress

import "sync"

// Recorder is an Observer that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) OnInit(total int)      { r.add(Event{Kind: KindInit, Total: total}) }
func (r *Recorder) OnMessage(text string) { r.add(Event{Kind: KindMessage, Text: text}) }
func (r *Recorder) OnIncrement()          { r.add(Event{Kind: KindIncrement}) }
func (r *Recorder) OnDecrement()          { r.add(Event{Kind: KindDecrement}) }
func (r *Recorder) OnEnd()                { r.add(Event{Kind: KindEnd}) }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Messages returns the text of every message event, in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var msgs []string
	for _, e := range r.events {
		if e.Kind == KindMessage {
			msgs = append(msgs, e.Text)
		}
	}
	return msgs
}
