package diagfmt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codeanticode/processing-openjdk/internal/diag"
	"github.com/codeanticode/processing-openjdk/internal/edit"
	"github.com/codeanticode/processing-openjdk/internal/source"
)

// fixPreview is the block of whole lines a fix edit touches, before and
// after the edit.
type fixPreview struct {
	before []string
	after  []string
}

// previewFix replays fe on its lines through the edit ledger fold.
func previewFix(fs *source.FileSet, fe diag.FixEdit) (fixPreview, error) {
	if fs == nil {
		return fixPreview{}, errors.New("nil FileSet")
	}
	file := fs.Get(fe.Span.File)
	if file == nil {
		return fixPreview{}, fmt.Errorf("file %d not found in FileSet", fe.Span.File)
	}
	if fe.Span.End < fe.Span.Start || int(fe.Span.End) > len(file.Content) {
		return fixPreview{}, fmt.Errorf("fix span %d..%d outside %s", fe.Span.Start, fe.Span.End, file.Path)
	}

	from, to := file.LineBounds(fe.Span.Start, fe.Span.End)
	block := file.Content[from:to]
	rel := fe.Span.Start - from

	// вставка раньше удаления на том же смещении, см. edit.Fold
	var edits []edit.Edit
	if fe.NewText != "" {
		edits = append(edits, edit.Insert(rel, fe.NewText))
	}
	if n := fe.Span.Len(); n > 0 {
		edits = append(edits, edit.Delete(rel, n))
	}
	return fixPreview{
		before: previewLines(string(block)),
		after:  previewLines(edit.Apply(block, edits)),
	}, nil
}

func previewLines(text string) []string {
	// хвостовой \n не даёт лишней пустой строки
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
