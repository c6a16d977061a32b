package edit

import (
	"fmt"
	"sort"
	"strings"

	"fortio.org/safecast"
)

// group collects the edits sharing one offset, preserving call order.
type group struct {
	offset uint32
	prev   []string
	next   []string
	delEnd uint32
}

func (g *group) text() string {
	var sb strings.Builder
	for _, s := range g.prev {
		sb.WriteString(s)
	}
	for i := len(g.next) - 1; i >= 0; i-- {
		sb.WriteString(g.next[i])
	}
	return sb.String()
}

func groupEdits(edits []Edit) []group {
	order := make([]int, len(edits))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return edits[order[i]].Offset < edits[order[j]].Offset
	})

	groups := make([]group, 0, len(edits))
	for _, idx := range order {
		e := edits[idx]
		if len(groups) == 0 || groups[len(groups)-1].offset != e.Offset {
			groups = append(groups, group{offset: e.Offset, delEnd: e.Offset})
		}
		g := &groups[len(groups)-1]
		switch e.Kind {
		case KindInsert:
			if e.Attach == AttachPrev {
				g.prev = append(g.prev, e.Text)
			} else {
				g.next = append(g.next, e.Text)
			}
		case KindDelete:
			if end := e.End(); end > g.delEnd {
				g.delEnd = end
			}
		}
	}
	return groups
}

// Segment is one contiguous run of output text.
// Copied segments come from the source starting at SrcStart; inserted
// segments were produced by edits anchored at SrcStart.
type Segment struct {
	OutStart uint32
	OutEnd   uint32
	SrcStart uint32
	Inserted bool
}

// Map translates offsets between the rewritten text and the original source.
type Map struct {
	segments []Segment
	srcLen   uint32
	outLen   uint32
}

// Apply replays edits over src and returns the rewritten text.
func Apply(src []byte, edits []Edit) string {
	out, _ := Fold(src, edits)
	return out
}

// Fold replays edits over src and returns the rewritten text together with
// an offset map. Edits anchored past the end of src are clamped to it.
func Fold(src []byte, edits []Edit) (string, *Map) {
	srcLen := u32(len(src))
	var sb strings.Builder
	sb.Grow(len(src))
	m := &Map{srcLen: srcLen}

	var pos uint32
	emit := func(s string, srcStart uint32, inserted bool) {
		if s == "" {
			return
		}
		start := u32(sb.Len())
		sb.WriteString(s)
		m.segments = append(m.segments, Segment{
			OutStart: start,
			OutEnd:   u32(sb.Len()),
			SrcStart: srcStart,
			Inserted: inserted,
		})
	}

	for _, g := range groupEdits(edits) {
		at := min(g.offset, srcLen)
		if at > pos {
			emit(string(src[pos:at]), pos, false)
			pos = at
		}
		emit(g.text(), at, true)
		if end := min(g.delEnd, srcLen); end > pos {
			pos = end
		}
	}
	if pos < srcLen {
		emit(string(src[pos:]), pos, false)
	}
	m.outLen = u32(sb.Len())
	return sb.String(), m
}

// Segments returns the output runs in order.
func (m *Map) Segments() []Segment {
	return m.segments
}

// SourceOffset maps an output offset to the original source.
// The boolean is false when the offset lies in inserted text; the returned
// offset is then the insertion anchor.
func (m *Map) SourceOffset(out uint32) (uint32, bool) {
	if out >= m.outLen {
		return m.srcLen, false
	}
	i := sort.Search(len(m.segments), func(i int) bool {
		return m.segments[i].OutEnd > out
	})
	if i == len(m.segments) {
		return m.srcLen, false
	}
	seg := m.segments[i]
	if seg.Inserted {
		return seg.SrcStart, false
	}
	return seg.SrcStart + (out - seg.OutStart), true
}

// OutputOffset maps a source offset into the rewritten text.
// The boolean is false when the source byte was deleted.
func (m *Map) OutputOffset(src uint32) (uint32, bool) {
	for _, seg := range m.segments {
		if seg.Inserted {
			continue
		}
		length := seg.OutEnd - seg.OutStart
		if src >= seg.SrcStart && src < seg.SrcStart+length {
			return seg.OutStart + (src - seg.SrcStart), true
		}
	}
	if src == m.srcLen {
		return m.outLen, true
	}
	return 0, false
}

// Validate reports edits that cannot be replayed over a source of srcLen bytes.
func Validate(edits []Edit, srcLen uint32) error {
	for i, e := range edits {
		if e.End() > srcLen || e.Offset > srcLen {
			return fmt.Errorf("edit %d (%s) exceeds source length %d", i, e, srcLen)
		}
	}
	return nil
}

// u32 converts a buffer length; sources beyond 4 GiB are not representable
// by offsets and are a programming error.
func u32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Sprintf("edit: length %d out of range: %v", n, err))
	}
	return v
}
