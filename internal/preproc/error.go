package preproc

import (
	"errors"
	"fmt"

	"github.com/codeanticode/processing-openjdk/internal/diag"
	"github.com/codeanticode/processing-openjdk/internal/source"
)

// ErrMalformedTree is returned when the tree cannot be preprocessed at all.
var ErrMalformedTree = errors.New("malformed parse tree")

// Error is the first structural problem of a run, in original source
// coordinates.
type Error struct {
	Code    diag.Code
	Span    source.Span
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Code.ID(), e.Span, e.Message)
}

// Diagnostic converts e for reporting.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.NewError(e.Code, e.Span, e.Message)
}
