// cmd/cimianboot/console.go - prints install progress to the terminal

package main

import (
	"github.com/windowsadmins/cimianboot/pkg/logging"
	"github.com/windowsadmins/cimianboot/pkg/progress"
)

// printProgress prints status text with the current position until the
// stream closes.
func printProgress(out *logging.Logger, events <-chan progress.Event) {
	tracker := progress.NewTracker()
	for ev := range events {
		switch ev.Kind {
		case progress.KindInit:
			tracker.OnInit(ev.Total)
		case progress.KindIncrement:
			tracker.OnIncrement()
		case progress.KindDecrement:
			tracker.OnDecrement()
		case progress.KindMessage:
			tracker.OnMessage(ev.Text)
			current, total := tracker.Position()
			out.Printf("[%d/%d] %s", current, total, ev.Text)
		case progress.KindEnd:
			tracker.OnEnd()
		}
	}
}
