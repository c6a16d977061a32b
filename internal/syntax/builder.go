package syntax

import (
	"fmt"
	"strings"
	"unicode"

	"fortio.org/safecast"

	"github.com/codeanticode/processing-openjdk/internal/source"
	"github.com/codeanticode/processing-openjdk/internal/token"
)

// Builder assembles a tree over a literal source string. Tokens are located
// by searching for their text after the previous token; it is not a lexer,
// the caller decides where token boundaries are.
//
//	b := syntax.NewBuilder("color c;")
//	root := syntax.N(syntax.Sketch, syntax.N(syntax.ColorType, b.Tok("color")), b.Tok("c"), b.Tok(";"))
//	tree := b.Build(root)
type Builder struct {
	src    string
	name   string
	cursor int
	tokens []token.Token
	errors []Error
}

// NewBuilder starts a builder over src.
func NewBuilder(src string) *Builder {
	return &Builder{src: src, name: "Sketch"}
}

// WithName sets the unit name of the built tree.
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// Tok records the next occurrence of text as a token and returns its leaf.
// Word-like texts only match on word boundaries. It panics when text does
// not occur after the previous token.
func (b *Builder) Tok(text string) *Node {
	return b.TokKind(guessKind(text), text)
}

// TokKind is Tok with an explicit token kind.
func (b *Builder) TokKind(kind token.Kind, text string) *Node {
	start := b.find(text)
	if start < 0 {
		panic(fmt.Sprintf("syntax.Builder: %q not found after offset %d", text, b.cursor))
	}
	end := start + len(text)
	b.tokens = append(b.tokens, token.Token{
		Kind: kind,
		Span: source.Span{Start: mustU32(start), End: mustU32(end)},
		Text: text,
	})
	b.cursor = end
	return &Node{Kind: Terminal, Token: len(b.tokens) - 1}
}

// Toks records several consecutive tokens.
func (b *Builder) Toks(texts ...string) []*Node {
	out := make([]*Node, 0, len(texts))
	for _, t := range texts {
		out = append(out, b.Tok(t))
	}
	return out
}

// Error attaches an upstream error covering [start, end).
func (b *Builder) Error(start, end int, msg string, lexical bool) *Builder {
	b.errors = append(b.errors, Error{
		Span:    source.Span{Start: mustU32(start), End: mustU32(end)},
		Message: msg,
		Lexical: lexical,
	})
	return b
}

// Build finalizes the stream with an EOF token at the end of the source and
// returns the tree.
func (b *Builder) Build(root *Node) *Tree {
	fs := source.NewFileSet()
	id := fs.AddVirtual(b.name+".pde", []byte(b.src))

	end := mustU32(len(b.src))
	tokens := make([]token.Token, 0, len(b.tokens)+1)
	for _, tok := range b.tokens {
		tok.Span.File = id
		tokens = append(tokens, tok)
	}
	tokens = append(tokens, token.Token{Kind: token.EOF, Span: source.At(id, end)})

	errs := make([]Error, len(b.errors))
	for i, e := range b.errors {
		e.Span.File = id
		errs[i] = e
	}
	return &Tree{
		Name:   b.name,
		File:   fs.Get(id),
		Stream: token.NewStream(tokens),
		Root:   root,
		Errors: errs,
	}
}

func (b *Builder) find(text string) int {
	from := b.cursor
	for from <= len(b.src) {
		i := strings.Index(b.src[from:], text)
		if i < 0 {
			return -1
		}
		at := from + i
		if !isWordLike(text) || onWordBoundary(b.src, at, at+len(text)) {
			return at
		}
		from = at + 1
	}
	return -1
}

// N builds a non-terminal node.
func N(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Token: -1, Children: children}
}

// Leaf builds a terminal referencing token index idx.
func Leaf(idx int) *Node {
	return &Node{Kind: Terminal, Token: idx}
}

var builderKeywords = map[string]struct{}{
	"import": {}, "static": {}, "public": {}, "private": {}, "protected": {},
	"class": {}, "extends": {}, "implements": {}, "void": {}, "int": {},
	"float": {}, "double": {}, "boolean": {}, "char": {}, "byte": {},
	"long": {}, "short": {}, "new": {}, "return": {}, "if": {}, "else": {},
	"for": {}, "while": {}, "final": {}, "abstract": {}, "color": {},
}

func guessKind(text string) token.Kind {
	if text == "" {
		return token.Invalid
	}
	if _, ok := builderKeywords[text]; ok {
		return token.Keyword
	}
	c := text[0]
	switch {
	case c == '#':
		return token.HexColorLit
	case c == '"':
		return token.StringLit
	case c == '\'':
		return token.CharLit
	case c == '/' && len(text) > 1 && (text[1] == '/' || text[1] == '*'):
		return token.Comment
	case c >= '0' && c <= '9', c == '.' && len(text) > 1:
		lower := strings.ToLower(text)
		if strings.HasPrefix(lower, "0x") {
			return token.IntLit
		}
		if strings.ContainsAny(lower, ".e") || strings.HasSuffix(lower, "f") || strings.HasSuffix(lower, "d") {
			return token.FloatLit
		}
		return token.IntLit
	case c == '_' || c == '$' || unicode.IsLetter(rune(c)):
		return token.Ident
	}
	return token.Punct
}

func isWordChar(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isWordLike(text string) bool {
	return text != "" && isWordChar(text[0]) && isWordChar(text[len(text)-1])
}

func onWordBoundary(src string, start, end int) bool {
	if start > 0 && isWordChar(src[start-1]) {
		return false
	}
	return end >= len(src) || !isWordChar(src[end])
}

func mustU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	return v
}
