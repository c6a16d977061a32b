package edit

import (
	"errors"
	"fmt"
	"sort"
)

// ErrConflict is returned when two replacements overlap.
var ErrConflict = errors.New("overlapping replacements")

// Replacement is a flattened editor-friendly change: source bytes in
// [Start, End) are replaced by NewText. OldText carries the replaced bytes.
type Replacement struct {
	Start   uint32 `json:"start"`
	End     uint32 `json:"end"`
	NewText string `json:"newText"`
	OldText string `json:"oldText,omitempty"`
}

// Replacements collapses the ledger into sorted, non-overlapping
// replacements. Applying them to src yields exactly Apply(src, edits).
func Replacements(src []byte, edits []Edit) []Replacement {
	srcLen := u32(len(src))
	out := make([]Replacement, 0, len(edits))
	for _, g := range groupEdits(edits) {
		start := min(g.offset, srcLen)
		end := max(start, min(g.delEnd, srcLen))
		text := g.text()
		if n := len(out); n > 0 && start <= out[n-1].End {
			last := &out[n-1]
			// группа внутри удалённого диапазона: текст идёт в точку удаления
			last.NewText += text
			if end > last.End {
				last.End = end
			}
			continue
		}
		if text == "" && start == end {
			continue
		}
		out = append(out, Replacement{Start: start, End: end, NewText: text})
	}
	for i := range out {
		out[i].OldText = string(src[out[i].Start:out[i].End])
	}
	return out
}

// ApplyReplacements applies reps to src. Replacements must not overlap and
// their OldText, when set, must match the source.
func ApplyReplacements(src []byte, reps []Replacement) (string, error) {
	sorted := make([]Replacement, len(reps))
	copy(sorted, reps)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})
	for i := 1; i < len(sorted); i++ {
		if spansConflict(sorted[i-1], sorted[i]) {
			return "", fmt.Errorf("%w: [%d,%d) and [%d,%d)", ErrConflict,
				sorted[i-1].Start, sorted[i-1].End, sorted[i].Start, sorted[i].End)
		}
	}

	working := append([]byte(nil), src...)
	for i := len(sorted) - 1; i >= 0; i-- {
		r := sorted[i]
		if r.End < r.Start || int(r.End) > len(working) {
			return "", fmt.Errorf("replacement [%d,%d) out of range", r.Start, r.End)
		}
		if r.OldText != "" && string(working[r.Start:r.End]) != r.OldText {
			return "", fmt.Errorf("replacement [%d,%d): existing text does not match expected content", r.Start, r.End)
		}
		suffix := append([]byte(nil), working[r.End:]...)
		working = append(append(working[:r.Start], r.NewText...), suffix...)
	}
	return string(working), nil
}

// spansConflict reports whether two replacements overlap. Spans are
// half-open; two insertions never conflict, an insertion conflicts with a
// deletion only when it falls strictly inside it.
func spansConflict(a, b Replacement) bool {
	if a.Start == a.End && b.Start == b.End {
		return false
	}
	if a.Start == a.End {
		return b.Start < a.Start && a.Start < b.End
	}
	if b.Start == b.End {
		return a.Start < b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}
