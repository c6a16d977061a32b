package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeanticode/processing-openjdk/internal/edit"
	"github.com/codeanticode/processing-openjdk/internal/rewrite"
	"github.com/codeanticode/processing-openjdk/internal/syntax"
)

func buildTree(t *testing.T) *syntax.Tree {
	t.Helper()
	b := syntax.NewBuilder("import a.b;\nvoid draw() { float x = 1.5; }\n")
	leaves := b.Toks("import", "a", ".", "b", ";", "void", "draw", "(", ")", "{", "float", "x", "=", "1.5", ";", "}")
	return b.Build(syntax.N(syntax.Sketch, leaves...))
}

func TestRewriterOperations(t *testing.T) {
	tree := buildTree(t)
	r := rewrite.New(tree.Source(), tree.Stream)

	r.DeleteRange(tree.Tok(0), tree.Tok(4))
	r.InsertBefore(tree.Tok(5), "public ")
	r.InsertAfter(tree.Tok(13), "f")
	r.InsertAt(0, "class S {\n")
	r.InsertAtEnd("}\n")

	want := "class S {\n\npublic void draw() { float x = 1.5f; }\n}\n"
	assert.Equal(t, want, r.Text())
	assert.Equal(t, 5, r.Len())

	edits := r.Edits()
	require.Len(t, edits, 5)
	assert.Equal(t, edit.Delete(0, 11), edits[0])
	assert.Equal(t, edit.Insert(12, "public "), edits[1])
	assert.Equal(t, edit.InsertAfter(39, "f"), edits[2])
	assert.Equal(t, edit.InsertAfter(tree.Stream.End(), "}\n"), edits[4])

	assert.Equal(t, r.Text(), edit.Apply(tree.Source(), edits))
}

func TestRewriterDeleteToken(t *testing.T) {
	tree := buildTree(t)
	r := rewrite.New(tree.Source(), tree.Stream)
	r.Delete(tree.Tok(10))
	r.InsertBefore(tree.Tok(10), "double")
	assert.Equal(t, "import a.b;\nvoid draw() { double x = 1.5; }\n", r.Text())
}

func TestRewriterFoldMapsBack(t *testing.T) {
	tree := buildTree(t)
	r := rewrite.New(tree.Source(), tree.Stream)
	r.InsertAt(0, "// header\n")
	text, m := r.Fold()
	require.Equal(t, r.Text(), text)

	off, ok := m.SourceOffset(uint32(len("// header\n")))
	assert.True(t, ok)
	assert.Equal(t, uint32(0), off)
}

func TestRewriterEmpty(t *testing.T) {
	r := rewrite.New([]byte("x"), nil)
	assert.Equal(t, "x", r.Text())
	assert.Empty(t, r.Edits())
	r.InsertAtEnd("!")
	assert.Equal(t, "!x", r.Text())
}
