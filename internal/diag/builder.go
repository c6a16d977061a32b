package diag

import "github.com/codeanticode/processing-openjdk/internal/source"

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewInfo(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevInfo, code, primary, msg)
}

// WithNote returns d with a note appended; d's slices are not shared.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes[:len(d.Notes):len(d.Notes)], Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(d.Fixes[:len(d.Fixes):len(d.Fixes)], Fix{Title: title, Edits: edits})
	return d
}

// InsertAt is an edit adding text before offset at.
func InsertAt(file source.FileID, at uint32, text string) FixEdit {
	return FixEdit{Span: source.Span{File: file, Start: at, End: at}, NewText: text}
}

// Remove is an edit deleting sp.
func Remove(sp source.Span) FixEdit {
	return FixEdit{Span: sp}
}
