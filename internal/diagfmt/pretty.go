package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/cznic/mathutil"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/codeanticode/processing-openjdk/internal/diag"
	"github.com/codeanticode/processing-openjdk/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info *color.Color
	code, gutter    *color.Color
	caret, note     *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
		note:   mk(color.FgGreen),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	items := bag.Items()
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	p := newPalette(opts.Color)
	for i := range n {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, &items[i], fs, opts, p)
	}
	if n < len(items) {
		fmt.Fprintf(w, "\n... %d more diagnostics not shown\n", len(items)-n)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	file := fs.Get(d.Primary.File)
	if file == nil {
		fmt.Fprintf(w, "<unknown>: %s %s: %s\n",
			p.severity(d.Severity).Sprint(d.Severity.String()), p.code.Sprint(d.Code.ID()), d.Message)
		return
	}
	start, end := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
		file.FormatPath(formatPath(opts.PathMode), fs.BaseDir()), start.Line, start.Col,
		p.severity(d.Severity).Sprint(d.Severity.String()), p.code.Sprint(d.Code.ID()), d.Message)

	writeSnippet(w, file, start, end, opts, p)

	if opts.ShowNotes {
		for _, note := range d.Notes {
			fmt.Fprintf(w, "  %s %s%s\n", p.note.Sprint("= note:"), note.Msg, noteLocation(fs, note.Span, d.Primary, opts))
		}
	}
	if opts.ShowFixes {
		for _, fix := range d.Fixes {
			fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("= fix:"), fix.Title)
			if !opts.ShowPreview {
				continue
			}
			for _, fe := range fix.Edits {
				preview, err := previewFix(fs, fe)
				if err != nil {
					continue
				}
				for _, line := range preview.before {
					fmt.Fprintf(w, "      - %s\n", line)
				}
				for _, line := range preview.after {
					fmt.Fprintf(w, "      + %s\n", line)
				}
			}
		}
	}
}

func writeSnippet(w io.Writer, file *source.File, start, end source.LineCol, opts PrettyOpts, p palette) {
	lineCount := len(file.LineIdx) + 1
	first := mathutil.Clamp(int(start.Line)-opts.Context, 1, lineCount)
	last := mathutil.Clamp(int(start.Line)+opts.Context, 1, lineCount)
	gw := len(fmt.Sprint(last))
	blank := p.gutter.Sprint(" " + strings.Repeat(" ", gw) + " | ")

	for ln := first; ln <= last; ln++ {
		text := file.GetLine(uint32(ln)) // #nosec G115 -- clamped to the line count
		fmt.Fprintf(w, "%s%s\n", p.gutter.Sprintf(" %*d | ", gw, ln), truncate(expandTabs(text), opts.Width))
		if ln != int(start.Line) {
			continue
		}
		pad, width := caretExtent(text, start, end)
		fmt.Fprintf(w, "%s%s%s\n", blank, strings.Repeat(" ", pad), p.caret.Sprint("^"+strings.Repeat("~", width-1)))
	}
}

// caretExtent returns the display column of the span start and the display
// width of the underlined part of the start line, at least 1.
func caretExtent(line string, start, end source.LineCol) (pad, width int) {
	from := mathutil.Clamp(int(start.Col)-1, 0, len(line))
	to := len(line)
	if end.Line == start.Line {
		to = mathutil.Clamp(int(end.Col)-1, from, len(line))
	}
	pad = runewidth.StringWidth(expandTabs(line[:from]))
	width = runewidth.StringWidth(expandTabs(line[from:to]))
	return pad, max(width, 1)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func noteLocation(fs *source.FileSet, span, primary source.Span, opts PrettyOpts) string {
	if span == primary {
		return ""
	}
	f := fs.Get(span.File)
	if f == nil {
		return ""
	}
	pos := f.Position(span.Start)
	return fmt.Sprintf(" (%s:%d:%d)", f.FormatPath(formatPath(opts.PathMode), fs.BaseDir()), pos.Line, pos.Col)
}
