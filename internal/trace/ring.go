package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last events in memory for a dump after a failure.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	next   uint64 // всего записано; позиция = next % len(events)
	level  Level
}

// NewRingTracer keeps up to capacity events; <= 0 means 4096.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()

	t.mu.Lock()
	t.events[t.next%uint64(len(t.events))] = stored
	t.next++
	t.mu.Unlock()
}

// Snapshot returns the stored events oldest first, keeping those keep
// accepts; nil keeps everything.
func (t *RingTracer) Snapshot(keep func(*Event) bool) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := uint64(len(t.events))
	start := uint64(0)
	if t.next > size {
		start = t.next - size
	}
	out := make([]Event, 0, t.next-start)
	for i := start; i < t.next; i++ {
		ev := &t.events[i%size]
		if keep == nil || keep(ev) {
			out = append(out, *ev)
		}
	}
	return out
}

// Dump writes the events keep accepts in format.
func (t *RingTracer) Dump(w io.Writer, format Format, keep func(*Event) bool) error {
	for _, ev := range t.Snapshot(keep) {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

// ForUnits keeps batch events and the events of the named units.
func ForUnits(units ...string) func(*Event) bool {
	set := make(map[string]struct{}, len(units))
	for _, u := range units {
		set[u] = struct{}{}
	}
	return func(ev *Event) bool {
		if ev.Unit == "" {
			return true
		}
		_, ok := set[ev.Unit]
		return ok
	}
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
