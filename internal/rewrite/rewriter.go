// Package rewrite records token-anchored rewrites of a sketch as edits over
// the original source.
package rewrite

import (
	"github.com/codeanticode/processing-openjdk/internal/edit"
	"github.com/codeanticode/processing-openjdk/internal/token"
)

// Rewriter turns token-level operations into ledger entries. It never
// keeps a mutated copy of the text: Text folds the ledger over the source.
type Rewriter struct {
	src    []byte
	stream *token.Stream
	ledger edit.Ledger
}

// New creates a rewriter over src and its token stream.
func New(src []byte, stream *token.Stream) *Rewriter {
	return &Rewriter{src: src, stream: stream}
}

// InsertBefore inserts text immediately before tok.
func (r *Rewriter) InsertBefore(tok token.Token, text string) {
	r.ledger.Append(edit.Insert(tok.Span.Start, text))
}

// InsertAfter inserts text immediately after tok.
func (r *Rewriter) InsertAfter(tok token.Token, text string) {
	r.ledger.Append(edit.InsertAfter(tok.Span.End, text))
}

// InsertAt inserts text before whatever follows offset.
func (r *Rewriter) InsertAt(offset uint32, text string) {
	r.ledger.Append(edit.Insert(offset, text))
}

// InsertAtEnd appends text after the last token of the stream.
func (r *Rewriter) InsertAtEnd(text string) {
	r.ledger.Append(edit.InsertAfter(r.stream.End(), text))
}

// Delete removes tok.
func (r *Rewriter) Delete(tok token.Token) {
	r.ledger.Append(edit.Delete(tok.Span.Start, tok.Span.Len()))
}

// DeleteRange removes everything from the start of first to the end of
// last, hidden text in between included.
func (r *Rewriter) DeleteRange(first, last token.Token) {
	var length uint32
	if last.Span.End > first.Span.Start {
		length = last.Span.End - first.Span.Start
	}
	r.ledger.Append(edit.Delete(first.Span.Start, length))
}

// Len returns the number of recorded edits.
func (r *Rewriter) Len() int {
	return r.ledger.Len()
}

// Edits returns the recorded edits in call order.
func (r *Rewriter) Edits() []edit.Edit {
	return r.ledger.Edits()
}

// Text returns the rewritten text.
func (r *Rewriter) Text() string {
	return edit.Apply(r.src, r.ledger.Edits())
}

// Fold returns the rewritten text together with its offset map.
func (r *Rewriter) Fold() (string, *edit.Map) {
	return edit.Fold(r.src, r.ledger.Edits())
}
