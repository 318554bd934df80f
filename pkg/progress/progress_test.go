package progress

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestNotifierWithoutObserversIsNoop(t *testing.T) {
	var n Notifier
	n.Init(4)
	n.Message("hello")
	n.Increment()
	n.Decrement()
	n.End()

	var nilNotifier *Notifier
	nilNotifier.Init(1)
	nilNotifier.End()
}

func TestNotifierDeliversInAttachmentOrder(t *testing.T) {
	var order []string
	first := Funcs{Increment: func() { order = append(order, "first") }}
	second := Funcs{Increment: func() { order = append(order, "second") }}

	n := NewNotifier(first, second)
	n.Increment()
	n.Increment()

	assert.Equal(t, []string{"first", "second", "first", "second"}, order)
}

func TestFuncsSkipsNilCallbacks(t *testing.T) {
	total := 0
	n := NewNotifier(Funcs{Init: func(v int) { total = v }})
	n.Init(6)
	n.Message("ignored")
	n.End()
	assert.Equal(t, 6, total)
}

func TestRecorder(t *testing.T) {
	rec := &Recorder{}
	n := NewNotifier(rec)
	n.Init(2)
	n.Message("Installing A")
	n.Increment()
	n.Decrement()
	n.End()

	want := []Event{
		{Kind: KindInit, Total: 2},
		{Kind: KindMessage, Text: "Installing A"},
		{Kind: KindIncrement},
		{Kind: KindDecrement},
		{Kind: KindEnd},
	}
	if diff := cmp.Diff(want, rec.Events()); diff != "" {
		t.Errorf("Recorder.Events() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, rec.Count(KindIncrement))
	assert.Equal(t, []string{"Installing A"}, rec.Messages())
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, -1, tr.Percent())

	n := NewNotifier(tr)
	n.Init(4)
	n.Increment()
	assert.Equal(t, 25, tr.Percent())

	n.Init(2)
	n.Increment()
	current, total := tr.Position()
	assert.Equal(t, 2, current)
	assert.Equal(t, 2, total)
	assert.Equal(t, 100, tr.Percent())

	n.Decrement()
	n.Decrement()
	n.Decrement()
	assert.Equal(t, 0, tr.Percent())

	inc, dec := tr.Ticks()
	assert.Equal(t, 2, inc)
	assert.Equal(t, 3, dec)

	n.Message("done")
	n.End()
	assert.Equal(t, "done", tr.Message())
	assert.True(t, tr.Ended())
}

func TestStreamDeliversEventsInOrderAndCloses(t *testing.T) {
	s := NewStream()
	n := NewNotifier(s)

	// The notifier never waits on the reader.
	n.Init(2)
	for i := 0; i < 100; i++ {
		n.Increment()
	}
	n.Message("done")
	n.End()
	n.Increment()

	var got []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e, ok := <-s.Events():
			if !ok {
				assert.Len(t, got, 103)
				assert.Equal(t, Event{Kind: KindInit, Total: 2}, got[0])
				assert.Equal(t, Event{Kind: KindMessage, Text: "done"}, got[101])
				assert.Equal(t, KindEnd, got[102].Kind)
				return
			}
			got = append(got, e)
		case <-timeout:
			t.Fatal("stream did not close")
		}
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "init", KindInit.String())
	assert.Equal(t, "end", KindEnd.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
