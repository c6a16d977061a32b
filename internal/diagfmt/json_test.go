package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/codeanticode/processing-openjdk/internal/diag"
	"github.com/codeanticode/processing-openjdk/internal/source"
)

func jsonFixture() (*source.FileSet, *diag.Bag) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("Sketch.pde", []byte("size(w, 100);\nint w = 5;\n"))
	primary := source.Span{File: fileID, Start: 5, End: 6}

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SynError, primary, "bad width").
		WithNote(source.Span{File: fileID, Start: 18, End: 19}, "declared here").
		WithFix("use 200", diag.FixEdit{Span: primary, NewText: "200"}))
	bag.Add(diag.New(diag.SevInfo, diag.PreSizeSkipped, source.Span{File: fileID, Start: 0, End: 13}, "size() left in place"))
	return fs, bag
}

func TestJSONBasic(t *testing.T) {
	fs, bag := jsonFixture()

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", out.Count)
	}
	first := out.Diagnostics[0]
	if first.Severity != "error" || first.Code != "SYN2001" || first.Message != "bad width" {
		t.Errorf("unexpected diagnostic: %+v", first)
	}
	loc := first.Location
	if loc.File != "Sketch.pde" || loc.StartByte != 5 || loc.EndByte != 6 || loc.StartLine != 1 || loc.StartCol != 6 {
		t.Errorf("unexpected location: %+v", loc)
	}
	if first.Notes != nil || first.Fixes != nil {
		t.Errorf("notes and fixes are opt-in: %+v", first)
	}
	if out.Diagnostics[1].Severity != "info" {
		t.Errorf("expected info severity, got %q", out.Diagnostics[1].Severity)
	}
}

func TestJSONWithNotesAndFixes(t *testing.T) {
	fs, bag := jsonFixture()

	out, err := BuildDiagnosticsOutput(bag, fs, JSONOpts{
		PathMode:        PathModeBasename,
		IncludeNotes:    true,
		IncludeFixes:    true,
		IncludePreviews: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	d := out.Diagnostics[0]
	if len(d.Notes) != 1 || d.Notes[0].Message != "declared here" || d.Notes[0].Location.StartByte != 18 {
		t.Fatalf("unexpected notes: %+v", d.Notes)
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Title != "use 200" {
		t.Fatalf("unexpected fixes: %+v", d.Fixes)
	}
	edit := d.Fixes[0].Edits[0]
	if edit.NewText != "200" || edit.OldText != "w" {
		t.Errorf("unexpected edit: %+v", edit)
	}
	if len(edit.AfterLines) != 1 || edit.AfterLines[0] != "size(200, 100);" {
		t.Errorf("unexpected preview: %+v", edit.AfterLines)
	}
	if d.Location.StartLine != 0 {
		t.Errorf("positions are opt-in, got line %d", d.Location.StartLine)
	}
}

func TestJSONMaxLimit(t *testing.T) {
	fs, bag := jsonFixture()
	out, err := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 {
		t.Errorf("expected 1 diagnostic, got %d", out.Count)
	}
}
