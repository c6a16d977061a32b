package preproc

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"github.com/codeanticode/processing-openjdk/internal/edit"
	"github.com/codeanticode/processing-openjdk/internal/source"
)

// SketchSize is the size() call captured at the top level of a bare sketch.
type SketchSize struct {
	Width    string `json:"width" msgpack:"width"`
	Height   string `json:"height" msgpack:"height"`
	Renderer string `json:"renderer,omitempty" msgpack:"renderer,omitempty"`
	// Valid is set when the call was commented out and moved to settings().
	Valid bool `json:"valid" msgpack:"valid"`
}

// Result is what the compiler or editor pipeline consumes.
type Result struct {
	Shape       Shape       `json:"shape" msgpack:"shape"`
	HeaderLines int         `json:"headerLines" msgpack:"header_lines"`
	UnitName    string      `json:"unitName" msgpack:"unit_name"`
	Imports     []string    `json:"imports" msgpack:"imports"`
	Size        *SketchSize `json:"size,omitempty" msgpack:"size,omitempty"`
	FoundMain   bool        `json:"foundMain" msgpack:"found_main"`
	Edits       []edit.Edit `json:"edits" msgpack:"edits"`
}

// Output is a Result together with the materialized text.
type Output struct {
	Result
	Text string `json:"-" msgpack:"-"`

	file      *source.File
	srcMap    *edit.Map
	textLen   uint32
	lineStart []uint32
}

func newOutput(res Result, file *source.File) *Output {
	out := &Output{Result: res, file: file}
	out.materialize()
	return out
}

// Rebind attaches a decoded output (e.g. from the result cache) to the
// source file it was produced from, restoring OriginalPosition.
func (o *Output) Rebind(file *source.File) {
	o.file = file
	o.materialize()
}

func (o *Output) materialize() {
	var src []byte
	if o.file != nil {
		src = o.file.Content
	}
	o.Text, o.srcMap = edit.Fold(src, o.Edits)
	n, err := safecast.Conv[uint32](len(o.Text))
	if err != nil {
		// Fold уже отказал бы на таком тексте
		panic(fmt.Sprintf("preproc: output length %d out of range: %v", len(o.Text), err))
	}
	o.textLen = n
	o.lineStart = o.lineStart[:0]
	o.lineStart = append(o.lineStart, 0)
	for i := range n {
		if o.Text[i] == '\n' {
			o.lineStart = append(o.lineStart, i+1)
		}
	}
}

// Map returns the output-to-source offset map.
func (o *Output) Map() *edit.Map {
	return o.srcMap
}

// Replacements flattens the edits for editors that apply sorted,
// non-overlapping replacements.
func (o *Output) Replacements() []edit.Replacement {
	if o.file == nil {
		return nil
	}
	return edit.Replacements(o.file.Content, o.Edits)
}

// OriginalPosition maps a 1-based line/column in Text back to the sketch
// source. It fails for positions inside synthesized text.
func (o *Output) OriginalPosition(pos source.LineCol) (source.LineCol, bool) {
	if o.file == nil || pos.Line == 0 || pos.Col == 0 || int(pos.Line) > len(o.lineStart) {
		return source.LineCol{}, false
	}
	off := o.lineStart[pos.Line-1] + pos.Col - 1
	if off > o.textLen {
		return source.LineCol{}, false
	}
	srcOff, ok := o.srcMap.SourceOffset(off)
	if !ok {
		return source.LineCol{}, false
	}
	return o.file.Position(srcOff), true
}

// OutputPosition maps a source position into Text.
func (o *Output) OutputPosition(pos source.LineCol) (source.LineCol, bool) {
	if o.file == nil {
		return source.LineCol{}, false
	}
	srcOff, ok := o.file.Offset(pos)
	if !ok {
		return source.LineCol{}, false
	}
	off, ok := o.srcMap.OutputOffset(srcOff)
	if !ok {
		return source.LineCol{}, false
	}
	line := sort.Search(len(o.lineStart), func(i int) bool { return o.lineStart[i] > off })
	ln, err := safecast.Conv[uint32](line)
	if err != nil {
		return source.LineCol{}, false
	}
	return source.LineCol{Line: ln, Col: off - o.lineStart[line-1] + 1}, true
}
