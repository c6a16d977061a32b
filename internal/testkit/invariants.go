// Package testkit holds checks shared by the preprocessor tests and fuzz
// harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/codeanticode/processing-openjdk/internal/edit"
	"github.com/codeanticode/processing-openjdk/internal/preproc"
	"github.com/codeanticode/processing-openjdk/internal/source"
	"github.com/codeanticode/processing-openjdk/internal/syntax"
)

// CheckOutputInvariants verifies a finished run against its tree:
// 1) every edit lies within the source
// 2) replaying the ledger and its flattened replacements both give Text
// 3) every byte outside a deletion survives and maps back to itself
// 4) deleted bytes have no output position
// 5) the first HeaderLines lines are synthesized text
func CheckOutputInvariants(tree *syntax.Tree, out *preproc.Output) error {
	if tree == nil || out == nil {
		return fmt.Errorf("nil tree or output")
	}
	src := tree.Source()
	srcLen, err := safecast.Conv[uint32](len(src))
	if err != nil {
		return fmt.Errorf("len source overflow: %w", err)
	}

	// 1) границы
	if err := edit.Validate(out.Edits, srcLen); err != nil {
		return err
	}

	// 2) оба способа применения дают один текст
	if got := edit.Apply(src, out.Edits); got != out.Text {
		return fmt.Errorf("ledger replay differs from materialized text:\n%q\n%q", got, out.Text)
	}
	flat, err := edit.ApplyReplacements(src, out.Replacements())
	if err != nil {
		return fmt.Errorf("replacements: %w", err)
	}
	if flat != out.Text {
		return fmt.Errorf("replacement replay differs from materialized text:\n%q\n%q", flat, out.Text)
	}

	// 3) и 4) карта смещений
	deleted := make([]bool, len(src))
	for _, e := range out.Edits {
		if e.Kind != edit.KindDelete {
			continue
		}
		for i := e.Offset; i < e.End(); i++ {
			deleted[i] = true
		}
	}
	m := out.Map()
	for i := range src {
		s, _ := safecast.Conv[uint32](i)
		o, ok := m.OutputOffset(s)
		if deleted[i] {
			if ok {
				return fmt.Errorf("deleted byte %d maps to output offset %d", i, o)
			}
			continue
		}
		if !ok {
			return fmt.Errorf("kept byte %d has no output position", i)
		}
		if int(o) >= len(out.Text) || out.Text[o] != src[i] {
			return fmt.Errorf("byte %d maps to output offset %d holding a different byte", i, o)
		}
		if back, ok := m.SourceOffset(o); !ok || back != s {
			return fmt.Errorf("byte %d maps to %d, which maps back to %d (ok=%v)", i, o, back, ok)
		}
	}

	// 5) заголовок целиком синтезирован
	for line := 1; line <= out.HeaderLines; line++ {
		l, _ := safecast.Conv[uint32](line)
		if pos, ok := out.OriginalPosition(source.LineCol{Line: l, Col: 1}); ok {
			return fmt.Errorf("header line %d maps to source %d:%d", line, pos.Line, pos.Col)
		}
	}
	return nil
}
