package preproc_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeanticode/processing-openjdk/internal/diag"
	"github.com/codeanticode/processing-openjdk/internal/edit"
	"github.com/codeanticode/processing-openjdk/internal/preproc"
	"github.com/codeanticode/processing-openjdk/internal/prefs"
	"github.com/codeanticode/processing-openjdk/internal/source"
	"github.com/codeanticode/processing-openjdk/internal/syntax"
	"github.com/codeanticode/processing-openjdk/internal/testkit"
)

const classLine = "public class Sketch extends PApplet {\n\n"

func testOptions(rep diag.Reporter) preproc.Options {
	return preproc.Options{Indent: 2, OmitBanner: true, Prefs: prefs.Defaults(), Reporter: rep}
}

func run(t *testing.T, tree *syntax.Tree, opts preproc.Options) *preproc.Output {
	t.Helper()
	out, err := preproc.Run(tree, opts)
	require.NoError(t, err)
	assertReplay(t, tree, out)
	return out
}

// assertReplay checks that both the raw ledger and its flattened form
// reproduce the materialized text.
func assertReplay(t *testing.T, tree *syntax.Tree, out *preproc.Output) {
	t.Helper()
	assert.Equal(t, out.Text, edit.Apply(tree.Source(), out.Edits))
	flat, err := edit.ApplyReplacements(tree.Source(), out.Replacements())
	require.NoError(t, err)
	assert.Equal(t, out.Text, flat)
	assert.NoError(t, testkit.CheckOutputInvariants(tree, out))
}

func mainText(args ...string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = `"` + a + `"`
	}
	return "\n  static public void main(String[] passedArgs) {\n" +
		"    String[] appletArgs = new String[] { " + strings.Join(quoted, ", ") + " };\n" +
		"    if (passedArgs != null) {\n" +
		"      PApplet.main(concat(appletArgs, passedArgs));\n" +
		"    } else {\n" +
		"      PApplet.main(appletArgs);\n" +
		"    }\n" +
		"  }\n"
}

// sizeSketch builds a static sketch holding a single top-level size call.
func sizeSketch(src string, args ...string) *syntax.Tree {
	b := syntax.NewBuilder(src)
	children := []*syntax.Node{b.Tok("size"), b.Tok("(")}
	for i, a := range args {
		if i > 0 {
			children = append(children, b.Tok(","))
		}
		children = append(children, b.Tok(a))
	}
	children = append(children, b.Tok(")"))
	call := syntax.N(syntax.SizeCall, children...)
	stmt := syntax.N(syntax.Statement, syntax.N(syntax.ExprStatement, call, b.Tok(";")))
	return b.Build(syntax.N(syntax.Sketch, syntax.N(syntax.StaticSketch, stmt)))
}

func javaSketch(b *syntax.Builder, children ...*syntax.Node) *syntax.Tree {
	return b.Build(syntax.N(syntax.Sketch, syntax.N(syntax.JavaSketch, children...)))
}

func method(b *syntax.Builder, modifiers []string, result, name string) *syntax.Node {
	decl := make([]*syntax.Node, 0, len(modifiers)+1)
	for _, m := range modifiers {
		decl = append(decl, syntax.N(syntax.Modifier, b.Tok(m)))
	}
	m := syntax.N(syntax.MethodDecl,
		b.Tok(result), b.Tok(name),
		syntax.N(syntax.Other, b.Tok("("), b.Tok(")")),
		syntax.N(syntax.Block, b.Tok("{"), b.Tok("}")),
	)
	decl = append(decl, syntax.N(syntax.MemberDecl, m))
	return syntax.N(syntax.ClassBodyDecl, decl...)
}

func TestBareSketch(t *testing.T) {
	src := "size(200, 100);\nfloat x = 3.14;\nfill(#ff8800);\n"
	b := syntax.NewBuilder(src)
	size := syntax.N(syntax.SizeCall, b.Toks("size", "(", "200", ",", "100", ")")...)
	decl := syntax.N(syntax.Other, b.Tok("float"), b.Tok("x"), b.Tok("="), syntax.N(syntax.FloatLit, b.Tok("3.14")))
	fill := syntax.N(syntax.Expr, b.Tok("fill"), b.Tok("("), syntax.N(syntax.HexColorLit, b.Tok("#ff8800")), b.Tok(")"))
	root := syntax.N(syntax.Sketch, syntax.N(syntax.StaticSketch,
		syntax.N(syntax.Statement, syntax.N(syntax.ExprStatement, size, b.Tok(";"))),
		syntax.N(syntax.Statement, decl, b.Tok(";")),
		syntax.N(syntax.Statement, syntax.N(syntax.ExprStatement, fill, b.Tok(";"))),
	))
	tree := b.Build(root)

	out := run(t, tree, testOptions(nil))

	want := classLine +
		"  public void setup() {\n" +
		"/* commented out by preprocessor: size(200, 100) */;\n" +
		"float x = 3.14f;\n" +
		"fill(0xFFFF8800);\n" +
		"\n" +
		"    noLoop();\n" +
		"  }\n" +
		"\n" +
		"  public void settings() { size(200,100); }\n" +
		mainText("Sketch") +
		"}\n"
	assert.Equal(t, want, out.Text)
	assert.Equal(t, preproc.ShapeBare, out.Shape)
	assert.Equal(t, 3, out.HeaderLines)
	assert.Equal(t, "Sketch", out.UnitName)
	require.NotNil(t, out.Size)
	assert.Equal(t, preproc.SketchSize{Width: "200", Height: "100", Valid: true}, *out.Size)
}

func TestSizeWithRenderer(t *testing.T) {
	tree := sizeSketch("size(640, 360, P3D);\n", "640", "360", "P3D")
	out := run(t, tree, testOptions(nil))
	assert.Contains(t, out.Text, "/* commented out by preprocessor: size(640, 360, P3D) */;")
	assert.Contains(t, out.Text, "  public void settings() { size(640,360,P3D); }\n")
	require.NotNil(t, out.Size)
	assert.Equal(t, "P3D", out.Size.Renderer)
}

func TestSizeDisplayDimensions(t *testing.T) {
	tree := sizeSketch("size(displayWidth, displayHeight);\n", "displayWidth", "displayHeight")
	out := run(t, tree, testOptions(nil))
	assert.Contains(t, out.Text, "/* commented out by preprocessor: size(displayWidth, displayHeight) */;")
	assert.Contains(t, out.Text, "  public void settings() { size(displayWidth,displayHeight); }\n")
	require.NotNil(t, out.Size)
	assert.Equal(t, "displayWidth", out.Size.Width)
}

func TestInvalidSizeLeftInPlace(t *testing.T) {
	tests := []struct {
		name string
		src  string
		args []string
		code diag.Code
	}{
		{"variable width", "size(w, 100);\n", []string{"w", "100"}, diag.PreSizeSkipped},
		{"unknown renderer", "size(640, 360, FOO);\n", []string{"640", "360", "FOO"}, diag.PreRendererUnknown},
		{"swapped display dimensions", "size(displayHeight, displayWidth);\n", []string{"displayHeight", "displayWidth"}, diag.PreSizeSkipped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := diag.NewBag(10)
			tree := sizeSketch(tt.src, tt.args...)
			out := run(t, tree, testOptions(diag.BagReporter{Bag: bag}))

			want := classLine +
				"  public void setup() {\n" +
				tt.src +
				"\n    noLoop();\n  }\n" +
				mainText("Sketch") +
				"}\n"
			assert.Equal(t, want, out.Text)
			assert.Nil(t, out.Size)

			items := bag.Items()
			require.Len(t, items, 1)
			assert.Equal(t, tt.code, items[0].Code)
			assert.Equal(t, diag.SevInfo, items[0].Severity)
		})
	}
}

func TestSizeInsideMethodIsIgnored(t *testing.T) {
	src := "void setup() { size(10, 10); }\n"
	b := syntax.NewBuilder(src)
	ret, name := b.Tok("void"), b.Tok("setup")
	params := syntax.N(syntax.Other, b.Tok("("), b.Tok(")"))
	open := b.Tok("{")
	call := syntax.N(syntax.SizeCall, b.Toks("size", "(", "10", ",", "10", ")")...)
	body := syntax.N(syntax.Block, open,
		syntax.N(syntax.Statement, syntax.N(syntax.ExprStatement, call, b.Tok(";"))),
		b.Tok("}"))
	m := syntax.N(syntax.MethodDecl, ret, name, params, body)
	root := syntax.N(syntax.Sketch, syntax.N(syntax.ActiveSketch,
		syntax.N(syntax.ClassBodyDecl, syntax.N(syntax.MemberDecl, m))))
	tree := b.Build(root)

	bag := diag.NewBag(10)
	out := run(t, tree, testOptions(diag.BagReporter{Bag: bag}))

	want := classLine +
		"public void setup() { size(10, 10); }\n" +
		"\n" +
		mainText("Sketch") +
		"}\n"
	assert.Equal(t, want, out.Text)
	assert.Equal(t, preproc.ShapeClassBody, out.Shape)
	assert.Equal(t, 2, out.HeaderLines)
	assert.Nil(t, out.Size)

	items := bag.Items()
	require.Len(t, items, 1)
	assert.Equal(t, diag.PreSizeNotGlobal, items[0].Code)
}

func TestImportsAreHoisted(t *testing.T) {
	src := "import java.util.List;\nimport static java.lang.Math.*;\nvoid draw() {}\n"
	b := syntax.NewBuilder(src)
	imp1 := syntax.N(syntax.ImportDecl, b.Tok("import"),
		syntax.N(syntax.ImportName, b.Toks("java", ".", "util", ".", "List")...), b.Tok(";"))
	imp2 := syntax.N(syntax.ImportDecl, b.Tok("import"),
		syntax.N(syntax.ImportName, b.Toks("static", "java", ".", "lang", ".", "Math", ".", "*")...), b.Tok(";"))
	root := syntax.N(syntax.Sketch, syntax.N(syntax.ActiveSketch, imp1, imp2, method(b, nil, "void", "draw")))
	tree := b.Build(root)

	out := run(t, tree, testOptions(nil))

	want := "import java.util.List;\n" +
		"import static java.lang.Math.*;\n" +
		"\n" +
		classLine +
		"\n\npublic void draw() {}\n" +
		"\n" +
		mainText("Sketch") +
		"}\n"
	assert.Equal(t, want, out.Text)
	assert.Equal(t, []string{"java.util.List", "static java.lang.Math.*"}, out.Imports)
	assert.Equal(t, 5, out.HeaderLines)
}

func TestUserMainSuppressesEntryPoint(t *testing.T) {
	src := "public static void main(String[] a) {}\nvoid draw() {}\n"
	b := syntax.NewBuilder(src)
	mods := []*syntax.Node{
		syntax.N(syntax.Modifier, b.Tok("public")),
		syntax.N(syntax.Modifier, b.Tok("static")),
	}
	mainDecl := syntax.N(syntax.MethodDecl,
		b.Tok("void"), b.Tok("main"),
		syntax.N(syntax.Other, b.Toks("(", "String", "[", "]", "a", ")")...),
		syntax.N(syntax.Block, b.Tok("{"), b.Tok("}")),
	)
	first := syntax.N(syntax.ClassBodyDecl, append(mods, syntax.N(syntax.MemberDecl, mainDecl))...)
	root := syntax.N(syntax.Sketch, syntax.N(syntax.ActiveSketch, first, method(b, nil, "void", "draw")))
	tree := b.Build(root)

	out := run(t, tree, testOptions(nil))

	want := classLine +
		"public static void main(String[] a) {}\n" +
		"public void draw() {}\n" +
		"\n}\n"
	assert.Equal(t, want, out.Text)
	assert.True(t, out.FoundMain)
	assert.NotContains(t, out.Text, "appletArgs")
}

func TestMethodQualifierOwners(t *testing.T) {
	t.Run("PApplet subclass", func(t *testing.T) {
		src := "public class Foo extends PApplet {\n  void draw() {}\n  private void helper() {}\n}\n"
		b := syntax.NewBuilder(src)
		mod := syntax.N(syntax.Modifier, b.Tok("public"))
		head := b.Toks("class", "Foo", "extends", "PApplet")
		open := b.Tok("{")
		draw := method(b, nil, "void", "draw")
		helper := method(b, []string{"private"}, "void", "helper")
		body := syntax.N(syntax.ClassBody, open, draw, helper, b.Tok("}"))
		class := syntax.N(syntax.ClassDecl, append(head, body)...)
		tree := javaSketch(b, syntax.N(syntax.Other, mod, class))

		out := run(t, tree, testOptions(nil))
		want := "public class Foo extends PApplet {\n  public void draw() {}\n  private void helper() {}\n}\n\n"
		assert.Equal(t, want, out.Text)
		assert.Equal(t, preproc.ShapeClassed, out.Shape)
		assert.Equal(t, 0, out.HeaderLines)
	})

	t.Run("plain class", func(t *testing.T) {
		src := "class Foo {\n  void bar() {}\n}\n"
		b := syntax.NewBuilder(src)
		head := b.Toks("class", "Foo")
		open := b.Tok("{")
		bar := method(b, nil, "void", "bar")
		body := syntax.N(syntax.ClassBody, open, bar, b.Tok("}"))
		tree := javaSketch(b, syntax.N(syntax.ClassDecl, append(head, body)...))

		out := run(t, tree, testOptions(nil))
		assert.Equal(t, src+"\n", out.Text)
	})

	t.Run("non-void result", func(t *testing.T) {
		src := "int count() {}\n"
		b := syntax.NewBuilder(src)
		tree := b.Build(syntax.N(syntax.Sketch, syntax.N(syntax.ActiveSketch, method(b, nil, "int", "count"))))

		out := run(t, tree, testOptions(nil))
		assert.True(t, strings.HasPrefix(out.Text, classLine+"int count() {}\n"))
	})
}

func TestSpecialMethodDecl(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"int mix() {}\n", "public int mix() {}\n"},
		{"public int mix() {}\n", "public int mix() {}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			b := syntax.NewBuilder(tt.src)
			var children []*syntax.Node
			if strings.HasPrefix(tt.src, "public") {
				children = append(children, b.Tok("public"))
			}
			children = append(children,
				b.Tok("int"), b.Tok("mix"),
				syntax.N(syntax.Other, b.Tok("("), b.Tok(")")),
				syntax.N(syntax.Block, b.Tok("{"), b.Tok("}")),
			)
			tree := javaSketch(b, syntax.N(syntax.SpecialMethodDecl, children...))

			out := run(t, tree, testOptions(nil))
			assert.Equal(t, tt.want+"\n", out.Text)
		})
	}
}

func TestColorAndConversions(t *testing.T) {
	src := "color c = color(255);\nint i = int(2.5);\n"
	b := syntax.NewBuilder(src)
	first := syntax.N(syntax.Statement,
		syntax.N(syntax.Other,
			syntax.N(syntax.ColorType, b.Tok("color")), b.Tok("c"), b.Tok("="),
			syntax.N(syntax.PrimitiveConversion, b.Toks("color", "(", "255", ")")...),
		),
		b.Tok(";"))
	second := syntax.N(syntax.Statement,
		syntax.N(syntax.Other,
			b.Tok("int"), b.Tok("i"), b.Tok("="),
			syntax.N(syntax.PrimitiveConversion, b.Tok("int"), b.Tok("("), syntax.N(syntax.FloatLit, b.Tok("2.5")), b.Tok(")")),
		),
		b.Tok(";"))
	tree := javaSketch(b, first, second)

	out := run(t, tree, testOptions(nil))
	assert.Equal(t, "int c = color(255);\nint i = PApplet.parseInt(2.5f);\n\n", out.Text)
}

func TestLiteralRewrites(t *testing.T) {
	tests := []struct {
		kind syntax.Kind
		text string
		want string
	}{
		{syntax.FloatLit, "3.14", "3.14f"},
		{syntax.FloatLit, "3.14f", "3.14f"},
		{syntax.FloatLit, "3.14F", "3.14F"},
		{syntax.FloatLit, "3.14d", "3.14d"},
		{syntax.FloatLit, "1e3", "1e3f"},
		{syntax.HexColorLit, "#FF8800", "0xFFFF8800"},
		{syntax.HexColorLit, "#ff8800", "0xFFFF8800"},
		{syntax.HexColorLit, "#a1B2c3", "0xFFA1B2C3"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			src := "x = " + tt.text + ";"
			b := syntax.NewBuilder(src)
			lhs, eq := b.Tok("x"), b.Tok("=")
			lit := syntax.N(tt.kind, b.Tok(tt.text))
			tree := javaSketch(b, syntax.N(syntax.Other, lhs, eq, lit, b.Tok(";")))

			out := run(t, tree, testOptions(nil))
			assert.Equal(t, "x = "+tt.want+";\n", out.Text)
		})
	}
}

func TestDefaultHeaderAndPositions(t *testing.T) {
	src := "background(0);\n"
	b := syntax.NewBuilder(src)
	call := syntax.N(syntax.Expr, b.Toks("background", "(", "0", ")")...)
	tree := b.Build(syntax.N(syntax.Sketch, syntax.N(syntax.StaticSketch,
		syntax.N(syntax.Statement, syntax.N(syntax.ExprStatement, call, b.Tok(";"))))))

	opts := preproc.DefaultOptions()
	opts.OmitBanner = true
	out := run(t, tree, opts)

	// 4 core imports, 8 default imports, a blank line after each list,
	// the class line, its blank line and setup().
	assert.Equal(t, 17, out.HeaderLines)
	header := out.Text[:strings.Index(out.Text, "background")]
	assert.Equal(t, out.HeaderLines, strings.Count(header, "\n"))
	assert.True(t, strings.HasPrefix(out.Text, "import processing.core.*;\n"))
	assert.Contains(t, out.Text, "import java.io.IOException;\n\npublic class Sketch extends PApplet {\n")

	pos, ok := out.OriginalPosition(source.LineCol{Line: 18, Col: 12})
	require.True(t, ok)
	assert.Equal(t, source.LineCol{Line: 1, Col: 12}, pos)

	_, ok = out.OriginalPosition(source.LineCol{Line: 1, Col: 1})
	assert.False(t, ok, "header text has no source position")

	back, ok := out.OutputPosition(source.LineCol{Line: 1, Col: 1})
	require.True(t, ok)
	assert.Equal(t, source.LineCol{Line: 18, Col: 1}, back)

	// последняя строка пуста: за концом текста позиций нет
	lines := uint32(strings.Count(out.Text, "\n")) + 1
	_, ok = out.OriginalPosition(source.LineCol{Line: lines, Col: 2})
	assert.False(t, ok, "column past the end of the text")
	_, ok = out.OriginalPosition(source.LineCol{Line: lines + 1, Col: 1})
	assert.False(t, ok, "line past the end of the text")
}

func TestBanner(t *testing.T) {
	b := syntax.NewBuilder("x;")
	tree := javaSketch(b, b.Tok("x"), b.Tok(";"))

	opts := testOptions(nil)
	opts.OmitBanner = false
	opts.Now = func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) }
	out := run(t, tree, opts)

	assert.Equal(t, "/* autogenerated by Processing preprocessor v3.0.0 on 2026-01-02 */\nx;\n", out.Text)
	assert.Equal(t, 1, out.HeaderLines)
}

func TestMainArgsFromPreferences(t *testing.T) {
	tests := []struct {
		name  string
		props string
		args  []string
	}{
		{"defaults", "", []string{"Demo"}},
		{
			"full screen with stop color",
			"export.application.fullscreen=true\nrun.present.bgcolor=#101010\n",
			[]string{"--full-screen", "--bgcolor=#101010", "--stop-color=#cccccc", "Demo"},
		},
		{
			"full screen hiding stop",
			"export.application.fullscreen=true\nexport.application.stop=false\n",
			[]string{"--full-screen", "--bgcolor=#666666", "--hide-stop", "Demo"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := prefs.Parse(tt.props)
			require.NoError(t, err)

			b := syntax.NewBuilder("void draw() {}\n").WithName("Demo")
			tree := b.Build(syntax.N(syntax.Sketch, syntax.N(syntax.ActiveSketch, method(b, nil, "void", "draw"))))

			opts := testOptions(nil)
			opts.Prefs = p
			out := run(t, tree, opts)
			assert.Contains(t, out.Text, "public class Demo extends PApplet {")
			assert.Contains(t, out.Text, mainText(tt.args...))
		})
	}
}

func TestNestedAppletSettingsKeepsSketchSettings(t *testing.T) {
	src := "size(10, 20);\nclass Inner extends PApplet {\n  void settings() {}\n}\n"
	b := syntax.NewBuilder(src)
	call := syntax.N(syntax.SizeCall, b.Toks("size", "(", "10", ",", "20", ")")...)
	stmt := syntax.N(syntax.Statement, syntax.N(syntax.ExprStatement, call, b.Tok(";")))
	head := b.Toks("class", "Inner", "extends", "PApplet")
	open := b.Tok("{")
	settings := method(b, nil, "void", "settings")
	class := syntax.N(syntax.ClassDecl, append(head, syntax.N(syntax.ClassBody, open, settings, b.Tok("}")))...)
	tree := b.Build(syntax.N(syntax.Sketch, syntax.N(syntax.StaticSketch, stmt, class)))

	out := run(t, tree, testOptions(nil))
	require.NotNil(t, out.Size)
	assert.Contains(t, out.Text, "/* commented out by preprocessor: size(10, 20) */;")
	assert.Contains(t, out.Text, "  public void settings() {}\n")
	assert.Contains(t, out.Text, "  public void settings() { size(10,20); }\n")
	assert.Equal(t, 2, strings.Count(out.Text, "settings()"))
}

func TestUpstreamErrorsFirstWins(t *testing.T) {
	b := syntax.NewBuilder("x;")
	b.Error(0, 1, "token recognition error at: '`'", true)
	b.Error(1, 2, "missing ';' at '}'", false)
	tree := javaSketch(b, b.Tok("x"), b.Tok(";"))

	bag := diag.NewBag(10)
	out, err := preproc.Run(tree, testOptions(diag.BagReporter{Bag: bag}))
	require.Error(t, err)
	require.NotNil(t, out, "partial output is returned with the error")
	assert.Equal(t, "x;\n", out.Text)

	var perr *preproc.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, diag.LexError, perr.Code)
	assert.Equal(t, uint32(0), perr.Span.Start)
	assert.Equal(t, "token recognition error at: '`'", perr.Message)

	items := bag.Items()
	require.Len(t, items, 2)
	assert.Equal(t, diag.LexError, items[0].Code)
	assert.Equal(t, diag.SynError, items[1].Code)
}

func TestMalformedRoot(t *testing.T) {
	b := syntax.NewBuilder("x;")
	tree := b.Build(syntax.N(syntax.Statement, b.Tok("x"), b.Tok(";")))

	out, err := preproc.Run(tree, testOptions(nil))
	assert.Nil(t, out)
	assert.ErrorIs(t, err, preproc.ErrMalformedTree)

	_, err = preproc.Run(nil, testOptions(nil))
	assert.ErrorIs(t, err, preproc.ErrMalformedTree)
}

func TestRunsAreIndependent(t *testing.T) {
	tree := sizeSketch("size(200, 100);\n", "200", "100")
	opts := testOptions(nil)
	first := run(t, tree, opts)
	second := run(t, tree, opts)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Edits, second.Edits)
}
