package preproc

import (
	"strings"

	"github.com/codeanticode/processing-openjdk/internal/syntax"
)

// owner tells who owns a member list.
type owner uint8

const (
	ownerNone owner = iota
	// ownerSketch is the implicit sketch class.
	ownerSketch
	// ownerPApplet is a user class extending PApplet.
	ownerPApplet
)

// scope is the enclosing context handed from a node to its children.
// Nothing in it survives past the direct relationship it describes: a
// nested block or class starts again from the zero scope.
type scope struct {
	// sketchTop: the node sits directly in a bare sketch's statement list.
	sketchTop bool
	// globalStmt: the node is the leading expression of a top-level
	// statement of a bare sketch.
	globalStmt bool

	owner owner

	// inMember: the node belongs to a member declaration; hasModifier and
	// memberStart describe that member.
	inMember    bool
	hasModifier bool
	memberStart int
}

// childScope derives the scope of the i-th child of n.
func (w *walker) childScope(n *syntax.Node, sc scope, i int, child *syntax.Node) scope {
	switch n.Kind {
	case syntax.StaticSketch:
		return scope{sketchTop: true, owner: ownerSketch}
	case syntax.ActiveSketch:
		return scope{owner: ownerSketch}
	case syntax.ClassDecl:
		if child.Kind == syntax.ClassBody {
			return scope{owner: w.classOwner(n)}
		}
	case syntax.ClassBody:
		return scope{owner: sc.owner}
	case syntax.ClassBodyDecl:
		if child.Kind == syntax.MemberDecl {
			// модификаторы идут перед членом: первый ребёнок, значит без них
			return scope{
				owner:       sc.owner,
				inMember:    true,
				hasModifier: i != 0,
				memberStart: child.FirstToken(),
			}
		}
	case syntax.MemberDecl:
		if child.Kind == syntax.MethodDecl {
			return sc
		}
	case syntax.Statement:
		if sc.sketchTop && child.Kind == syntax.ExprStatement {
			return scope{sketchTop: true}
		}
	case syntax.ExprStatement:
		if sc.sketchTop && i == 0 {
			return scope{globalStmt: true}
		}
	case syntax.Expr, syntax.Other:
		if sc.globalStmt && i == 0 {
			return scope{globalStmt: true}
		}
	}
	return scope{}
}

// classOwner inspects `class Name extends Base ...`.
func (w *walker) classOwner(n *syntax.Node) owner {
	if len(n.Children) < 4 {
		return ownerNone
	}
	if w.tree.Text(n.Child(2)) != "extends" {
		return ownerNone
	}
	if !strings.HasSuffix(w.tree.Text(n.Child(3)), "PApplet") {
		return ownerNone
	}
	return ownerPApplet
}

// walk visits n's subtree and fires n's rule on the way out.
func (w *walker) walk(n *syntax.Node, sc scope, depth int) {
	if n == nil {
		return
	}
	for i, child := range n.Children {
		w.walk(child, w.childScope(n, sc, i, child), depth+1)
	}
	w.exit(n, sc, depth)
}

// exit dispatches on the node kind. Kinds without a rule fall through.
func (w *walker) exit(n *syntax.Node, sc scope, depth int) {
	switch n.Kind {
	case syntax.Sketch:
		if depth == 0 {
			w.synthesize()
		}
	case syntax.ImportDecl:
		w.exitImportDecl(n)
	case syntax.ImportName:
		w.exitImportName(n)
	case syntax.StaticSketch:
		w.st.shape = ShapeBare
	case syntax.ActiveSketch:
		w.st.shape = ShapeClassBody
	case syntax.SizeCall:
		w.exitSizeCall(n, sc)
	case syntax.MethodDecl:
		w.exitMethodDecl(n, sc)
	case syntax.SpecialMethodDecl:
		w.exitSpecialMethodDecl(n)
	case syntax.PrimitiveConversion:
		w.exitPrimitiveConversion(n)
	case syntax.ColorType:
		w.exitColorType(n)
	case syntax.HexColorLit:
		w.exitHexColorLit(n)
	case syntax.FloatLit:
		w.exitFloatLit(n)
	case syntax.Invalid, syntax.Terminal, syntax.Other, syntax.JavaSketch,
		syntax.ClassDecl, syntax.ClassBody, syntax.ClassBodyDecl, syntax.Modifier,
		syntax.MemberDecl, syntax.Block, syntax.Statement, syntax.ExprStatement, syntax.Expr:
	}
}
