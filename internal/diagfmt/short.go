package diagfmt

import (
	"bufio"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/codeanticode/processing-openjdk/internal/diag"
	"github.com/codeanticode/processing-openjdk/internal/source"
)

// ShortOpts configures the one-line-per-entry format.
type ShortOpts struct {
	PathMode PathMode // PathModeAuto means relative to the FileSet base
	Notes    bool
	Fixes    bool
}

type shortLine struct {
	path string
	pos  source.LineCol
	kind string // метка серьёзности, "note" или "fix"
	code string
	msg  string
}

// Short writes every diagnostic as
//
//	error SYN2001 sketches/Blink/Blink.pde:1:1 message
//
// followed, when asked, by "note" and "fix" lines under the same code.
// Lines are sorted by path and position so runs can be diffed; entries
// whose file is unknown are skipped.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts ShortOpts) error {
	if bag == nil || fs == nil {
		return nil
	}
	mode := formatPath(opts.PathMode)
	if opts.PathMode == PathModeAuto {
		mode = "relative"
	}

	var lines []shortLine
	add := func(sp source.Span, kind, code, msg string) {
		f := fs.Get(sp.File)
		if f == nil {
			return
		}
		lines = append(lines, shortLine{
			path: strings.TrimPrefix(filepath.ToSlash(f.FormatPath(mode, fs.BaseDir())), "./"),
			pos:  f.Position(sp.Start),
			kind: kind,
			code: code,
			msg:  oneLine(msg),
		})
	}
	for _, d := range bag.Items() {
		code := d.Code.ID()
		add(d.Primary, d.Severity.Label(), code, d.Message)
		if opts.Notes {
			for _, n := range d.Notes {
				add(n.Span, "note", code, n.Msg)
			}
		}
		if opts.Fixes {
			for _, fix := range d.Fixes {
				if len(fix.Edits) > 0 {
					add(fix.Edits[0].Span, "fix", code, fix.Title)
				}
			}
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		switch {
		case a.path != b.path:
			return a.path < b.path
		case a.pos.Line != b.pos.Line:
			return a.pos.Line < b.pos.Line
		case a.pos.Col != b.pos.Col:
			return a.pos.Col < b.pos.Col
		case a.kind != b.kind:
			return a.kind < b.kind
		case a.code != b.code:
			return a.code < b.code
		}
		return a.msg < b.msg
	})

	bw := bufio.NewWriter(w)
	for _, l := range lines {
		bw.WriteString(l.kind)
		bw.WriteByte(' ')
		bw.WriteString(l.code)
		bw.WriteByte(' ')
		bw.WriteString(l.path)
		bw.WriteByte(':')
		bw.WriteString(strconv.FormatUint(uint64(l.pos.Line), 10))
		bw.WriteByte(':')
		bw.WriteString(strconv.FormatUint(uint64(l.pos.Col), 10))
		bw.WriteByte(' ')
		bw.WriteString(l.msg)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func oneLine(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
