package diag

import (
	"sort"
	"sync"

	"fortio.org/safecast"
)

// Bag collects diagnostics up to a limit and counts the ones it turns
// away. It is safe for concurrent use.
type Bag struct {
	mu      sync.Mutex
	items   []Diagnostic
	max     uint16
	dropped int
}

// NewBag returns a bag holding at most max diagnostics; values past the
// uint16 range saturate.
func NewBag(max int) *Bag {
	limit, err := safecast.Conv[uint16](max)
	if err != nil {
		limit = ^uint16(0)
	}
	return &Bag{items: make([]Diagnostic, 0, min(int(limit), 64)), max: limit}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= int(b.max) {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.max
}

// Dropped counts diagnostics refused because the bag was full, including
// those dropped by bags merged into this one.
func (b *Bag) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// HasErrors reports whether any diagnostic is an error.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns a snapshot; the diagnostics' own slices are shared and
// must not be modified.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Diagnostic(nil), b.items...)
}

// Merge appends other's diagnostics, growing the limit to fit them.
func (b *Bag) Merge(other *Bag) {
	items := other.Items()
	dropped := other.Dropped()
	b.mu.Lock()
	defer b.mu.Unlock()
	if total := len(b.items) + len(items); total > int(b.max) {
		if limit, err := safecast.Conv[uint16](total); err == nil {
			b.max = limit
		} else {
			b.max = ^uint16(0)
		}
	}
	if room := int(b.max) - len(b.items); len(items) > room {
		dropped += len(items) - room
		items = items[:room]
	}
	b.items = append(b.items, items...)
	b.dropped += dropped
}

// Sort orders by file, span, severity (errors first) and code, so output
// is stable across concurrent runs.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := &b.items[i], &b.items[j]
		switch {
		case di.Primary.File != dj.Primary.File:
			return di.Primary.File < dj.Primary.File
		case di.Primary.Start != dj.Primary.Start:
			return di.Primary.Start < dj.Primary.Start
		case di.Primary.End != dj.Primary.End:
			return di.Primary.End < dj.Primary.End
		case di.Severity != dj.Severity:
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
