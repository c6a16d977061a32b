package edit

import "fmt"

// Kind distinguishes insertions from deletions.
type Kind uint8

const (
	KindInsert Kind = iota
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	}
	return "unknown"
}

// Attach tells which neighbour an insertion sticks to.
type Attach uint8

const (
	// AttachNext glues the text to what follows the offset.
	AttachNext Attach = iota
	// AttachPrev glues the text to what precedes the offset.
	AttachPrev
)

func (a Attach) String() string {
	if a == AttachPrev {
		return "prev"
	}
	return "next"
}

// Edit is a single position-anchored change against the original source.
type Edit struct {
	Kind   Kind   `json:"kind" msgpack:"k"`
	Offset uint32 `json:"offset" msgpack:"o"`
	Text   string `json:"text,omitempty" msgpack:"t,omitempty"`
	Length uint32 `json:"length,omitempty" msgpack:"l,omitempty"`
	Attach Attach `json:"attach,omitempty" msgpack:"a,omitempty"`
}

// Insert creates an insertion attached to the text after offset.
func Insert(offset uint32, text string) Edit {
	return Edit{Kind: KindInsert, Offset: offset, Text: text, Attach: AttachNext}
}

// InsertAfter creates an insertion attached to the text before offset.
func InsertAfter(offset uint32, text string) Edit {
	return Edit{Kind: KindInsert, Offset: offset, Text: text, Attach: AttachPrev}
}

// Delete creates a deletion of length bytes starting at offset.
func Delete(offset, length uint32) Edit {
	return Edit{Kind: KindDelete, Offset: offset, Length: length}
}

// End returns the first offset after the edit's footprint in the source.
func (e Edit) End() uint32 {
	if e.Kind == KindDelete {
		return e.Offset + e.Length
	}
	return e.Offset
}

func (e Edit) String() string {
	if e.Kind == KindDelete {
		return fmt.Sprintf("delete %d+%d", e.Offset, e.Length)
	}
	return fmt.Sprintf("insert@%d(%s) %q", e.Offset, e.Attach, e.Text)
}

// Ledger is an append-only, ordered log of edits.
// The zero value is ready to use.
type Ledger struct {
	edits []Edit
}

// Append records e at the end of the ledger.
func (l *Ledger) Append(e Edit) {
	l.edits = append(l.edits, e)
}

// Len returns the number of recorded edits.
func (l *Ledger) Len() int {
	return len(l.edits)
}

// Edits returns a copy of the recorded edits in call order.
func (l *Ledger) Edits() []Edit {
	out := make([]Edit, len(l.edits))
	copy(out, l.edits)
	return out
}
