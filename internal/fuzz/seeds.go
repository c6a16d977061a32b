package fuzztests

import (
	"testing"

	"github.com/codeanticode/processing-openjdk/internal/syntax"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func clamp(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

// seedTrees are small sketches covering every rewrite rule.
func seedTrees() []*syntax.Tree {
	var out []*syntax.Tree

	b := syntax.NewBuilder("size(200, 100);\nfloat x = 3.14;\nfill(#ff8800);\n")
	size := syntax.N(syntax.SizeCall, b.Toks("size", "(", "200", ",", "100", ")")...)
	decl := syntax.N(syntax.Other, b.Tok("float"), b.Tok("x"), b.Tok("="), syntax.N(syntax.FloatLit, b.Tok("3.14")))
	fill := syntax.N(syntax.Expr, b.Tok("fill"), b.Tok("("), syntax.N(syntax.HexColorLit, b.Tok("#ff8800")), b.Tok(")"))
	out = append(out, b.Build(syntax.N(syntax.Sketch, syntax.N(syntax.StaticSketch,
		syntax.N(syntax.Statement, syntax.N(syntax.ExprStatement, size, b.Tok(";"))),
		syntax.N(syntax.Statement, decl, b.Tok(";")),
		syntax.N(syntax.Statement, syntax.N(syntax.ExprStatement, fill, b.Tok(";"))),
	))))

	b = syntax.NewBuilder("import java.util.List;\ncolor c = color(255);\nint i = int(2.5);\n")
	imp := syntax.N(syntax.ImportDecl, b.Tok("import"),
		syntax.N(syntax.ImportName, b.Toks("java", ".", "util", ".", "List")...), b.Tok(";"))
	colorDecl := syntax.N(syntax.Other,
		syntax.N(syntax.ColorType, b.Tok("color")), b.Tok("c"), b.Tok("="),
		b.Tok("color"), b.Tok("("), b.Tok("255"), b.Tok(")"))
	conv := syntax.N(syntax.Other, b.Tok("int"), b.Tok("i"), b.Tok("="),
		syntax.N(syntax.PrimitiveConversion, b.Tok("int"), b.Tok("("), syntax.N(syntax.FloatLit, b.Tok("2.5")), b.Tok(")")))
	out = append(out, b.Build(syntax.N(syntax.Sketch, syntax.N(syntax.StaticSketch,
		imp,
		syntax.N(syntax.Statement, colorDecl, b.Tok(";")),
		syntax.N(syntax.Statement, conv, b.Tok(";")),
	))))

	b = syntax.NewBuilder("void draw() {}\n").Error(0, 4, "missing ';' at 'void'", false)
	method := syntax.N(syntax.ClassBodyDecl, syntax.N(syntax.MemberDecl, syntax.N(syntax.MethodDecl,
		b.Tok("void"), b.Tok("draw"),
		syntax.N(syntax.Other, b.Tok("("), b.Tok(")")),
		syntax.N(syntax.Block, b.Tok("{"), b.Tok("}")),
	)))
	out = append(out, b.Build(syntax.N(syntax.Sketch, syntax.N(syntax.ActiveSketch, method))))
	return out
}

func addDumpSeeds(f *testing.F) {
	for _, tree := range seedTrees() {
		for _, format := range []syntax.Format{syntax.FormatMsgpack, syntax.FormatJSON} {
			data, err := syntax.Encode(syntax.ToDump(tree), format)
			if err != nil {
				f.Fatal(err)
			}
			f.Add(data, format == syntax.FormatJSON)
		}
	}
	f.Add([]byte{}, false)
	f.Add([]byte("{}"), true)
}
