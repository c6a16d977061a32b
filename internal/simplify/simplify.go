package simplify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/codeanticode/processing-openjdk/internal/diag"
)

// Simplification is a friendlier rendering of a raw message.
type Simplification struct {
	Strategy string `json:"strategy"`
	Summary  string `json:"summary"`
	// Insert and Remove describe a mechanical fix, when one is obvious.
	Insert string `json:"insert,omitempty"`
	Remove string `json:"remove,omitempty"`
}

// Chain tries strategies in order. It is immutable and safe for concurrent
// use.
type Chain struct {
	strategies []Strategy
	printer    *message.Printer
}

// New builds a chain rendering summaries in the closest supported
// language to tag.
func New(tag language.Tag, strategies ...Strategy) *Chain {
	return &Chain{
		strategies: append([]Strategy(nil), strategies...),
		printer:    newPrinter(tag),
	}
}

var defaultChain = New(language.English, Strategies()...)

// Default returns the English chain with the built-in strategies.
func Default() *Chain {
	return defaultChain
}

// Simplify runs the default chain.
func Simplify(raw string) (Simplification, bool) {
	return defaultChain.Simplify(raw)
}

// Simplify returns the summary of the first matching strategy.
func (c *Chain) Simplify(raw string) (Simplification, bool) {
	m := Parse(raw)
	if m.Raw == "" {
		return Simplification{}, false
	}
	for _, s := range c.strategies {
		hint, ok := s.Match(m)
		if !ok {
			continue
		}
		return Simplification{
			Strategy: s.Name,
			Summary:  c.render(hint),
			Insert:   hint.Insert,
			Remove:   hint.Drop,
		}, true
	}
	return Simplification{}, false
}

func (c *Chain) render(h Hint) string {
	args := make([]any, len(h.Args))
	for i, a := range h.Args {
		if _, ok := a.(endOfSketch); ok {
			a = c.printer.Sprintf(msgEndOfSketch)
		}
		args[i] = a
	}
	return c.printer.Sprintf(h.Key, args...)
}

// Annotate appends the simplification of d's message as a note on the
// same span, plus a fix when the simplification carries one. It reports
// whether a note was added.
func (c *Chain) Annotate(d diag.Diagnostic) (diag.Diagnostic, bool) {
	s, ok := c.Simplify(d.Message)
	if !ok {
		return d, false
	}
	d = d.WithNote(d.Primary, s.Summary)
	switch {
	case s.Insert != "":
		d = d.WithFix(c.printer.Sprintf(msgFixInsert, quoted(s.Insert)),
			diag.InsertAt(d.Primary.File, d.Primary.Start, s.Insert))
	case s.Remove != "" && !d.Primary.Empty():
		d = d.WithFix(c.printer.Sprintf(msgFixRemove, quoted(s.Remove)), diag.Remove(d.Primary))
	}
	return d, true
}
