// pkg/status/bridge.go - forwards install progress to a Reporter

package status

import "github.com/windowsadmins/cimianboot/pkg/progress"

// Bridge is a progress.Observer that turns install progress into status
// messages: text becomes detail messages and ticks become percentages.
type Bridge struct {
	reporter Reporter
	tracker  *progress.Tracker
	last     int
}

// NewBridge creates a bridge reporting to r.
func NewBridge(r Reporter) *Bridge {
	return &Bridge{reporter: r, tracker: progress.NewTracker(), last: -2}
}

func (b *Bridge) OnInit(total int) {
	b.tracker.OnInit(total)
	b.percent()
}

func (b *Bridge) OnMessage(text string) {
	b.tracker.OnMessage(text)
	b.reporter.Detail(text)
}

func (b *Bridge) OnIncrement() {
	b.tracker.OnIncrement()
	b.percent()
}

func (b *Bridge) OnDecrement() {
	b.tracker.OnDecrement()
	b.percent()
}

func (b *Bridge) OnEnd() {
	b.tracker.OnEnd()
	b.percent()
}

// percent sends the position only when it changed.
func (b *Bridge) percent() {
	pct := b.tracker.Percent()
	if pct == b.last {
		return
	}
	b.last = pct
	b.reporter.Percent(pct)
}
