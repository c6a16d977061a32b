package token

import (
	"fmt"

	"github.com/codeanticode/processing-openjdk/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token is a numeric, color, string or char literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, HexColorLit, StringLit, CharLit:
		return true
	default:
		return false
	}
}

// IsHidden reports whether the token belongs to the hidden channel.
func (t Token) IsHidden() bool {
	return t.Kind == Whitespace || t.Kind == Comment
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q @%s", t.Kind, t.Text, t.Span)
}

// Stream is an immutable, indexed view over the tokens of one source file.
type Stream struct {
	tokens []Token
}

// NewStream wraps tokens. The slice is owned by the stream afterwards.
func NewStream(tokens []Token) *Stream {
	return &Stream{tokens: tokens}
}

// Len returns the number of tokens.
func (s *Stream) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tokens)
}

// At returns the i-th token. It panics on out-of-range indices.
func (s *Stream) At(i int) Token {
	return s.tokens[i]
}

// Tokens returns the underlying slice. Callers must not modify it.
func (s *Stream) Tokens() []Token {
	return s.tokens
}

// End returns the offset one past the last token, i.e. the position where
// trailing text is appended.
func (s *Stream) End() uint32 {
	if s.Len() == 0 {
		return 0
	}
	return s.tokens[len(s.tokens)-1].Span.End
}

// Validate checks ordering and bounds against a source of srcLen bytes.
func (s *Stream) Validate(srcLen uint32) error {
	var prevEnd uint32
	for i, tok := range s.tokens {
		if tok.Span.End < tok.Span.Start {
			return fmt.Errorf("token %d: inverted span %s", i, tok.Span)
		}
		if tok.Span.End > srcLen {
			return fmt.Errorf("token %d: span %s exceeds source length %d", i, tok.Span, srcLen)
		}
		if tok.Span.Start < prevEnd {
			return fmt.Errorf("token %d: span %s overlaps previous token", i, tok.Span)
		}
		prevEnd = tok.Span.End
	}
	return nil
}
