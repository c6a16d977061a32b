package preproc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/codeanticode/processing-openjdk/internal/diag"
	"github.com/codeanticode/processing-openjdk/internal/syntax"
	"github.com/codeanticode/processing-openjdk/internal/trace"
)

const (
	sizeCommentOpen  = "/* commented out by preprocessor: "
	sizeCommentClose = " */"
)

var knownRenderers = map[string]bool{
	"P2D":    true,
	"P3D":    true,
	"OPENGL": true,
	"JAVA2D": true,
	"FX2D":   true,
}

// fired marks a rule that changed the ledger or the state.
func (w *walker) fired(n *syntax.Node, detail string) {
	trace.Point(w.pass, trace.ScopeNode, "rule:"+n.Kind.String(), detail)
}

func (w *walker) info(code diag.Code, n *syntax.Node, msg string) {
	diag.Emit(w.rep, diag.NewInfo(code, w.tree.Span(n), msg))
}

func (w *walker) malformed(n *syntax.Node, what string) {
	w.info(diag.PreMalformedTree, n, fmt.Sprintf("%s node has an unexpected shape; left unchanged", what))
}

func (w *walker) exitImportDecl(n *syntax.Node) {
	first, ok := w.tree.First(n)
	if !ok {
		w.malformed(n, "import")
		return
	}
	last, _ := w.tree.Last(n)
	w.rw.DeleteRange(first, last)
	w.fired(n, "")
}

func (w *walker) exitImportName(n *syntax.Node) {
	name := w.tree.SourceText(n)
	if name == "" {
		w.malformed(n, "import name")
		return
	}
	w.st.imports = append(w.st.imports, name)
	w.fired(n, name)
}

func (w *walker) exitSizeCall(n *syntax.Node, sc scope) {
	if !sc.globalStmt {
		w.info(diag.PreSizeNotGlobal, n, "size() is only moved to settings() at the top level of a static sketch")
		return
	}
	// size ( w , h [, r] )
	if len(n.Children) < 5 {
		w.malformed(n, "size()")
		return
	}
	sz := sketchSize{
		width:  w.tree.Text(n.Child(2)),
		height: w.tree.Text(n.Child(4)),
	}
	if len(n.Children) > 6 {
		sz.renderer = w.tree.Text(n.Child(6))
	}

	switch {
	case !validDimension(sz.width, "displayWidth") || !validDimension(sz.height, "displayHeight"):
		w.st.size, w.st.sizeValid = sketchSize{}, false
		w.info(diag.PreSizeSkipped, n, fmt.Sprintf("size(%s, %s) needs integer or display dimensions; left in place", sz.width, sz.height))
		return
	case sz.renderer != "" && !knownRenderers[sz.renderer]:
		w.st.size, w.st.sizeValid = sketchSize{}, false
		w.info(diag.PreRendererUnknown, n, fmt.Sprintf("renderer %q is not one of P2D, P3D, OPENGL, JAVA2D, FX2D; size() left in place", sz.renderer))
		return
	}

	first, ok := w.tree.First(n)
	if !ok {
		w.malformed(n, "size()")
		return
	}
	last, _ := w.tree.Last(n)
	w.st.size, w.st.sizeValid = sz, true
	w.rw.InsertBefore(first, sizeCommentOpen)
	w.rw.InsertAfter(last, sizeCommentClose)
	w.fired(n, sz.width+"x"+sz.height)
}

// validDimension accepts an int literal or the display field matching the
// dimension's own axis.
func validDimension(s, display string) bool {
	if s == display {
		return true
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

func (w *walker) exitMethodDecl(n *syntax.Node, sc scope) {
	if !sc.inMember || sc.owner == ownerNone {
		return
	}
	if len(n.Children) < 2 {
		w.malformed(n, "method")
		return
	}
	result := w.tree.Text(n.Child(0))
	name := w.tree.Text(n.Child(1))

	if !sc.hasModifier && result == "void" && sc.memberStart >= 0 {
		w.rw.InsertBefore(w.tree.Tok(sc.memberStart), "public ")
		w.fired(n, "public "+name)
	}
	if sc.hasModifier && name == "main" {
		w.st.foundMain = true
		w.fired(n, "main")
	}
	// settings() вложенного PApplet не заменяет settings() скетча
	if name == "settings" && sc.owner == ownerSketch {
		w.st.hasSettings = true
	}
}

func (w *walker) exitSpecialMethodDecl(n *syntax.Node) {
	first, ok := w.tree.First(n)
	if !ok {
		w.malformed(n, "method")
		return
	}
	if w.tree.Text(n.Child(0)) == "public" {
		return
	}
	w.rw.InsertBefore(first, "public ")
	w.fired(n, "")
}

func (w *walker) exitPrimitiveConversion(n *syntax.Node) {
	fn := w.tree.Text(n.Child(0))
	if fn == "" {
		w.malformed(n, "conversion")
		return
	}
	if fn == "color" {
		return
	}
	head, _ := w.tree.First(n)
	w.rw.InsertBefore(head, "PApplet.parse"+strings.ToUpper(fn[:1])+fn[1:])
	w.rw.Delete(head)
	w.fired(n, fn)
}

func (w *walker) exitColorType(n *syntax.Node) {
	if w.tree.Text(n) != "color" {
		return
	}
	first, _ := w.tree.First(n)
	last, _ := w.tree.Last(n)
	w.rw.InsertBefore(first, "int")
	w.rw.DeleteRange(first, last)
	w.fired(n, "")
}

func (w *walker) exitHexColorLit(n *syntax.Node) {
	tok, ok := w.tree.First(n)
	if !ok || !strings.HasPrefix(tok.Text, "#") {
		w.malformed(n, "color literal")
		return
	}
	hex := strings.Replace(strings.ToUpper(tok.Text), "#", "0xFF", 1)
	w.rw.InsertBefore(tok, hex)
	w.rw.Delete(tok)
	w.fired(n, hex)
}

func (w *walker) exitFloatLit(n *syntax.Node) {
	tok, ok := w.tree.First(n)
	if !ok {
		w.malformed(n, "float literal")
		return
	}
	lower := strings.ToLower(tok.Text)
	if strings.HasSuffix(lower, "f") || strings.HasSuffix(lower, "d") {
		return
	}
	w.rw.InsertAfter(tok, "f")
	w.fired(n, tok.Text)
}
