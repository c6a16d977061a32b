package syntax

import (
	"strings"

	"github.com/codeanticode/processing-openjdk/internal/source"
	"github.com/codeanticode/processing-openjdk/internal/token"
)

// Node is one vertex of the parse tree. Terminal nodes reference a token
// by index in the tree's stream; other nodes have Token == -1.
type Node struct {
	Kind     Kind
	Token    int
	Children []*Node
}

// IsTerminal reports whether n is a leaf carrying a token.
func (n *Node) IsTerminal() bool {
	return n != nil && n.Kind == Terminal
}

// Child returns the i-th child, or nil when it does not exist.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// FirstToken returns the index of the leftmost token under n, or -1.
func (n *Node) FirstToken() int {
	if n == nil {
		return -1
	}
	if n.IsTerminal() {
		return n.Token
	}
	for _, c := range n.Children {
		if idx := c.FirstToken(); idx >= 0 {
			return idx
		}
	}
	return -1
}

// LastToken returns the index of the rightmost token under n, or -1.
func (n *Node) LastToken() int {
	if n == nil {
		return -1
	}
	if n.IsTerminal() {
		return n.Token
	}
	for i := len(n.Children) - 1; i >= 0; i-- {
		if idx := n.Children[i].LastToken(); idx >= 0 {
			return idx
		}
	}
	return -1
}

// Error is a problem reported by the upstream lexer or parser.
type Error struct {
	Span    source.Span
	Message string
	Lexical bool
}

// Tree bundles a parse tree with the stream and file it was built from.
type Tree struct {
	// Name is the compilation unit name used for the synthesized class.
	Name   string
	File   *source.File
	Stream *token.Stream
	Root   *Node
	Errors []Error
}

// Source returns the original source bytes.
func (t *Tree) Source() []byte {
	if t.File == nil {
		return nil
	}
	return t.File.Content
}

// FileID returns the id of the tree's file.
func (t *Tree) FileID() source.FileID {
	if t.File == nil {
		return 0
	}
	return t.File.ID
}

// Tok returns the token at index i.
func (t *Tree) Tok(i int) token.Token {
	return t.Stream.At(i)
}

// First returns the leftmost token of n.
func (t *Tree) First(n *Node) (token.Token, bool) {
	idx := n.FirstToken()
	if idx < 0 {
		return token.Token{}, false
	}
	return t.Stream.At(idx), true
}

// Last returns the rightmost token of n.
func (t *Tree) Last(n *Node) (token.Token, bool) {
	idx := n.LastToken()
	if idx < 0 {
		return token.Token{}, false
	}
	return t.Stream.At(idx), true
}

// Text concatenates the texts of the tokens under n, without the hidden
// text between them: `import  java . util . *` yields "importjava.util.*".
func (t *Tree) Text(n *Node) string {
	if n == nil {
		return ""
	}
	if n.IsTerminal() {
		return t.Stream.At(n.Token).Text
	}
	var sb strings.Builder
	t.appendText(&sb, n)
	return sb.String()
}

func (t *Tree) appendText(sb *strings.Builder, n *Node) {
	if n.IsTerminal() {
		sb.WriteString(t.Stream.At(n.Token).Text)
		return
	}
	for _, c := range n.Children {
		t.appendText(sb, c)
	}
}

// SourceText returns the exact source slice covered by n, hidden text
// included.
func (t *Tree) SourceText(n *Node) string {
	first, ok := t.First(n)
	if !ok {
		return ""
	}
	last, _ := t.Last(n)
	src := t.Source()
	if int(last.Span.End) > len(src) || first.Span.Start > last.Span.End {
		return ""
	}
	return string(src[first.Span.Start:last.Span.End])
}

// Span returns the source span covered by n.
func (t *Tree) Span(n *Node) source.Span {
	first, ok := t.First(n)
	if !ok {
		return source.Span{File: t.FileID()}
	}
	last, _ := t.Last(n)
	return first.Span.Cover(last.Span)
}

// Inspect visits n and its descendants in depth-first order. f returning
// false prunes the subtree.
func Inspect(n *Node, f func(*Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range n.Children {
		Inspect(c, f)
	}
}
