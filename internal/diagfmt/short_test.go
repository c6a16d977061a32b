package diagfmt

import (
	"bytes"
	"testing"

	"github.com/codeanticode/processing-openjdk/internal/diag"
	"github.com/codeanticode/processing-openjdk/internal/source"
)

func TestShort(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")
	sketch := fs.Add("/workspace/sketches/Blink/Blink.pde", []byte("a\nb\n"), 0)

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevWarning, diag.PreSizeSkipped, source.Span{File: sketch, Start: 2, End: 3}, "another"))
	bag.Add(diag.NewError(diag.SynError, source.Span{File: sketch, Start: 0, End: 1}, "first line\nsecond").
		WithNote(source.Span{File: sketch, Start: 2, End: 3}, "note line").
		WithNote(source.Span{File: 99}, "unresolvable").
		WithFix("Insert ';'", diag.InsertAt(sketch, 1, ";")))

	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, ShortOpts{Notes: true, Fixes: true}); err != nil {
		t.Fatal(err)
	}
	want := "error SYN2001 sketches/Blink/Blink.pde:1:1 first line second\n" +
		"fix SYN2001 sketches/Blink/Blink.pde:1:2 Insert ';'\n" +
		"note SYN2001 sketches/Blink/Blink.pde:2:1 note line\n" +
		"warning PRE3001 sketches/Blink/Blink.pde:2:1 another\n"
	if got := buf.String(); got != want {
		t.Fatalf("short output:\nwant:\n%s\ngot:\n%s", want, got)
	}

	buf.Reset()
	if err := Short(&buf, diag.NewBag(0), fs, ShortOpts{}); err != nil || buf.Len() != 0 {
		t.Fatalf("empty bag wrote %q (%v)", buf.String(), err)
	}
}
