package preproc

import (
	"context"
	"fmt"

	"github.com/codeanticode/processing-openjdk/internal/diag"
	"github.com/codeanticode/processing-openjdk/internal/rewrite"
	"github.com/codeanticode/processing-openjdk/internal/syntax"
	"github.com/codeanticode/processing-openjdk/internal/trace"
)

// walker holds everything one run touches. It is never shared.
type walker struct {
	tree *syntax.Tree
	rw   *rewrite.Rewriter
	st   *state
	opts *Options
	ind  indents
	unit string

	rep      diag.Reporter
	unitSpan *trace.Span
	pass     *trace.Span
}

// Run preprocesses tree with a background context.
func Run(tree *syntax.Tree, opts Options) (*Output, error) {
	return RunContext(context.Background(), tree, opts)
}

// RunContext preprocesses tree. A tree that carries upstream errors is
// still rewritten: the output is returned together with an *Error holding
// the first of them. Only a tree without a Sketch root fails outright.
func RunContext(ctx context.Context, tree *syntax.Tree, opts Options) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tree == nil || tree.Root == nil || tree.Stream == nil {
		return nil, fmt.Errorf("%w: empty tree", ErrMalformedTree)
	}
	if tree.Root.Kind != syntax.Sketch {
		return nil, fmt.Errorf("%w: root is %s, want %s", ErrMalformedTree, tree.Root.Kind, syntax.Sketch)
	}

	w := &walker{
		tree:   tree,
		rw:     rewrite.New(tree.Source(), tree.Stream),
		st:     &state{},
		opts:   &opts,
		ind:    opts.indents(),
		unit:   unitName(tree, &opts),
		rep:    opts.Reporter,
	}

	w.unitSpan = trace.BeginUnit(trace.FromContext(ctx), w.unit, trace.SpanFrom(ctx))
	defer w.unitSpan.End("")

	w.recordUpstream()

	w.pass = trace.Begin(w.unitSpan.Tracer(), trace.ScopePass, "walk", w.unitSpan)
	w.walk(tree.Root, scope{}, 0)
	w.pass.WithExtra("edits", fmt.Sprint(w.rw.Len())).End("")

	out := newOutput(w.result(), tree.File)
	w.unitSpan.WithExtra("shape", out.Shape.String())
	if w.st.failure != nil {
		return out, w.st.failure
	}
	return out, nil
}

// recordUpstream keeps the first lexer/parser error in the failure slot
// and reports all of them.
func (w *walker) recordUpstream() {
	for _, e := range w.tree.Errors {
		code := diag.SynError
		if e.Lexical {
			code = diag.LexError
		}
		span := e.Span
		span.File = w.tree.FileID()
		ferr := &Error{Code: code, Span: span, Message: e.Message}
		w.st.fail(ferr)
		diag.Emit(w.rep, ferr.Diagnostic())
	}
}

func (w *walker) result() Result {
	res := Result{
		Shape:       w.st.shape,
		HeaderLines: w.st.headerLines,
		UnitName:    w.unit,
		Imports:     append([]string{}, w.st.imports...),
		FoundMain:   w.st.foundMain,
		Edits:       w.rw.Edits(),
	}
	if w.st.sizeValid {
		res.Size = &SketchSize{
			Width:    w.st.size.width,
			Height:   w.st.size.height,
			Renderer: w.st.size.renderer,
			Valid:    true,
		}
	}
	return res
}

func unitName(tree *syntax.Tree, opts *Options) string {
	switch {
	case opts.UnitName != "":
		return opts.UnitName
	case tree.Name != "":
		return tree.Name
	default:
		return "Sketch"
	}
}
