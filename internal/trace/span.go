package trace

import (
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 {
	return seqCounter.Add(1)
}

// Span is an open operation. Spans below the tracer's level are still
// returned so that children inherit the unit tag; they just emit nothing.
// A nil *Span is a valid root parent.
type Span struct {
	tracer  Tracer
	live    bool
	id      uint64
	parent  uint64
	unit    string
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Begin opens a span under parent and emits its begin event. The unit tag
// is inherited from parent.
func Begin(t Tracer, scope Scope, name string, parent *Span) *Span {
	return begin(t, scope, name, parent, parent.Unit())
}

// BeginUnit opens the span of one sketch run; every event below it carries
// unit.
func BeginUnit(t Tracer, unit string, parent *Span) *Span {
	return begin(t, ScopeUnit, "preprocess", parent, unit)
}

func begin(t Tracer, scope Scope, name string, parent *Span, unit string) *Span {
	if t == nil {
		t = Nop
	}
	s := &Span{tracer: t, unit: unit, scope: scope, name: name}
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return s
	}
	s.live = true
	s.id = spanCounter.Add(1)
	s.parent = parent.ID()
	s.started = time.Now()
	s.tracer.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Unit:     unit,
		Name:     name,
	})
	return s
}

// End emits the end event with detail and the collected extras, and
// returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || !s.live {
		return 0
	}
	s.live = false
	dur := time.Since(s.started)
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Unit:     s.unit,
		Name:     s.name,
		Detail:   detail,
		Extra:    s.extra,
	})
	return dur
}

// WithExtra records a key-value pair for the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || !s.live {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// Point emits an instant event under parent, through parent's tracer.
func Point(parent *Span, scope Scope, name, detail string) {
	if parent == nil || !parent.tracer.Enabled() || !parent.tracer.Level().ShouldEmit(scope) {
		return
	}
	parent.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent.id,
		Unit:     parent.unit,
		Name:     name,
		Detail:   detail,
	})
}

// ID returns the span ID, zero for nil or disabled spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Tracer returns the tracer the span emits to; Nop for nil.
func (s *Span) Tracer() Tracer {
	if s == nil {
		return Nop
	}
	return s.tracer
}

// Unit returns the unit tag.
func (s *Span) Unit() string {
	if s == nil {
		return ""
	}
	return s.unit
}
