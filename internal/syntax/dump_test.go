package syntax_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeanticode/processing-openjdk/internal/source"
	"github.com/codeanticode/processing-openjdk/internal/syntax"
)

func sampleDump() *syntax.Dump {
	return &syntax.Dump{
		Version: syntax.DumpVersion,
		Path:    "sketches/Blink/Blink.pde",
		Source:  "color c;",
		Tokens: []syntax.DumpToken{
			{Kind: "keyword", Start: 0, End: 5},
			{Kind: "ws", Start: 5, End: 6},
			{Kind: "ident", Start: 6, End: 7},
			{Kind: "punct", Start: 7, End: 8},
			{Kind: "eof", Start: 8, End: 8},
		},
		Root: &syntax.DumpNode{Kind: "sketch", Children: []syntax.DumpNode{
			{Kind: "color_type", Children: []syntax.DumpNode{{Kind: "terminal", Token: 0}}},
			{Kind: "terminal", Token: 2},
			{Kind: "terminal", Token: 3},
		}},
		Errors: []syntax.DumpError{{Start: 6, End: 7, Message: "boom"}},
	}
}

func TestFromDump(t *testing.T) {
	fs := source.NewFileSet()
	tree, err := syntax.FromDump(fs, sampleDump())
	require.NoError(t, err)

	assert.Equal(t, "Blink", tree.Name)
	assert.Equal(t, 5, tree.Stream.Len())
	assert.Equal(t, "color", tree.Tok(0).Text)
	assert.True(t, tree.Tok(1).IsHidden())
	assert.Equal(t, "colorc;", tree.Text(tree.Root))
	assert.Equal(t, "color c;", tree.SourceText(tree.Root))
	require.Len(t, tree.Errors, 1)
	assert.Equal(t, "boom", tree.Errors[0].Message)
	assert.Equal(t, source.FileVirtual, tree.File.Flags&source.FileVirtual)
}

func TestFromDumpAppendsEOF(t *testing.T) {
	d := sampleDump()
	d.Tokens = d.Tokens[:4]
	tree, err := syntax.FromDump(source.NewFileSet(), d)
	require.NoError(t, err)
	assert.Equal(t, 5, tree.Stream.Len())
	assert.Equal(t, uint32(8), tree.Stream.End())
}

func TestFromDumpMalformed(t *testing.T) {
	cases := map[string]func(d *syntax.Dump){
		"no root":        func(d *syntax.Dump) { d.Root = nil },
		"unknown token":  func(d *syntax.Dump) { d.Tokens[0].Kind = "bogus" },
		"span too long":  func(d *syntax.Dump) { d.Tokens[3].End = 99 },
		"overlap":        func(d *syntax.Dump) { d.Tokens[1].Start = 4 },
		"bad terminal":   func(d *syntax.Dump) { d.Root.Children[1].Token = 42 },
		"leaf with kids": func(d *syntax.Dump) { d.Root.Children[1].Children = []syntax.DumpNode{{Kind: "other"}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := sampleDump()
			mutate(d)
			_, err := syntax.FromDump(source.NewFileSet(), d)
			assert.ErrorIs(t, err, syntax.ErrMalformed)
		})
	}
}

func TestDumpRoundTripFormats(t *testing.T) {
	for _, format := range []syntax.Format{syntax.FormatJSON, syntax.FormatMsgpack} {
		data, err := syntax.Encode(sampleDump(), format)
		require.NoError(t, err)
		d, err := syntax.Decode(data, format)
		require.NoError(t, err)
		assert.Equal(t, sampleDump(), d)
	}
}

func TestDecodeRejectsVersion(t *testing.T) {
	d := sampleDump()
	d.Version = 7
	data, err := syntax.Encode(d, syntax.FormatJSON)
	require.NoError(t, err)
	_, err = syntax.Decode(data, syntax.FormatJSON)
	assert.ErrorIs(t, err, syntax.ErrDumpVersion)
}

func TestLoadAndToDump(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Blink.pdt")
	d := sampleDump()
	d.Path = ""
	d.Name = ""
	data, err := syntax.Encode(d, syntax.FormatMsgpack)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	tree, err := syntax.Load(source.NewFileSet(), path)
	require.NoError(t, err)
	assert.Equal(t, "Blink", tree.Name)

	back := syntax.ToDump(tree)
	assert.Equal(t, sampleDump().Tokens, back.Tokens)
	assert.Equal(t, sampleDump().Root, back.Root)
	assert.Equal(t, syntax.FormatJSON, syntax.FormatFromPath("x/Blink.JSON"))
}
