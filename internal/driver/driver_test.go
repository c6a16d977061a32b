package driver_test

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeanticode/processing-openjdk/internal/config"
	"github.com/codeanticode/processing-openjdk/internal/diag"
	"github.com/codeanticode/processing-openjdk/internal/driver"
	"github.com/codeanticode/processing-openjdk/internal/observ"
	"github.com/codeanticode/processing-openjdk/internal/preproc"
	"github.com/codeanticode/processing-openjdk/internal/source"
	"github.com/codeanticode/processing-openjdk/internal/syntax"
)

func floatSketch(name string) *syntax.Builder {
	return syntax.NewBuilder("float x = 1.5;\n").WithName(name)
}

func buildFloat(b *syntax.Builder) *syntax.Tree {
	decl := syntax.N(syntax.Other, b.Tok("float"), b.Tok("x"), b.Tok("="), syntax.N(syntax.FloatLit, b.Tok("1.5")))
	return b.Build(syntax.N(syntax.Sketch, syntax.N(syntax.StaticSketch, syntax.N(syntax.Statement, decl, b.Tok(";")))))
}

func buildBadSize(name string) *syntax.Tree {
	b := syntax.NewBuilder("size(w, 100);\n").WithName(name)
	call := syntax.N(syntax.SizeCall, b.Toks("size", "(", "w", ",", "100", ")")...)
	stmt := syntax.N(syntax.Statement, syntax.N(syntax.ExprStatement, call, b.Tok(";")))
	return b.Build(syntax.N(syntax.Sketch, syntax.N(syntax.StaticSketch, stmt)))
}

func writeDump(t *testing.T, dir, file string, tree *syntax.Tree) string {
	t.Helper()
	path := filepath.Join(dir, file)
	data, err := syntax.Encode(syntax.ToDump(tree), syntax.FormatFromPath(path))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func testManifest(dir string) *config.Manifest {
	cfg := config.Default()
	cfg.Preprocessor.Banner = false
	return &config.Manifest{Root: dir, Config: cfg}
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestProcessKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := range 5 {
		name := fmt.Sprintf("Unit%d", i)
		ext := ".pdt"
		if i%2 == 1 {
			ext = ".json"
		}
		paths = append(paths, writeDump(t, dir, name+ext, buildFloat(floatSketch(name))))
	}

	timer := observ.NewTimer()
	batch, err := driver.Process(context.Background(), paths, driver.Options{
		Manifest: testManifest(dir),
		Jobs:     3,
		Timer:    timer,
	})
	require.NoError(t, err)
	require.Len(t, batch.Units, 5)
	assert.False(t, batch.Failed())

	for i, u := range batch.Units {
		name := fmt.Sprintf("Unit%d", i)
		require.NoError(t, u.Err)
		require.NotNil(t, u.Output)
		assert.Equal(t, paths[i], u.Path)
		assert.Equal(t, name, u.Output.UnitName)
		assert.Contains(t, u.Output.Text, "public class "+name+" extends PApplet {")
		assert.Contains(t, u.Output.Text, "float x = 1.5f;")
		assert.Contains(t, u.Output.Text, `new String[] { "`+name+`" }`)
	}

	// config, load and one phase per unit
	assert.Len(t, timer.Report().Phases, 7)
}

func TestProcessRecordsLoadErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeDump(t, dir, "Good.pdt", buildFloat(floatSketch("Good")))
	missing := filepath.Join(dir, "Missing.pdt")

	batch, err := driver.Process(context.Background(), []string{missing, good}, driver.Options{Manifest: testManifest(dir)})
	require.NoError(t, err)
	assert.True(t, batch.Failed())

	bad := batch.Units[0]
	assert.True(t, bad.Failed())
	assert.True(t, errors.Is(bad.Err, os.ErrNotExist))
	assert.Equal(t, []diag.Code{diag.IOLoadFileError}, codes(bad.Bag))

	file := batch.FileSet.Get(bad.Bag.Items()[0].Primary.File)
	require.NotNil(t, file)
	assert.Equal(t, "Missing.pdt", filepath.Base(file.Path))

	assert.False(t, batch.Units[1].Failed())
}

func TestProcessRejectsUnitNameForBatches(t *testing.T) {
	_, err := driver.Process(context.Background(), []string{"a.pdt", "b.pdt"}, driver.Options{UnitName: "X"})
	require.Error(t, err)
}

func TestProcessUnitNameOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeDump(t, dir, "Sketch.pdt", buildFloat(floatSketch("Sketch")))

	batch, err := driver.Process(context.Background(), []string{path}, driver.Options{
		Manifest: testManifest(dir),
		UnitName: "Renamed",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", batch.Units[0].Output.UnitName)
}

func TestUpstreamErrorsAreSimplified(t *testing.T) {
	dir := t.TempDir()
	b := floatSketch("Broken").Error(6, 7, "mismatched input 'x' expecting ';'", false)
	path := writeDump(t, dir, "Broken.pdt", buildFloat(b))

	batch, err := driver.Process(context.Background(), []string{path}, driver.Options{Manifest: testManifest(dir)})
	require.NoError(t, err)

	u := batch.Units[0]
	require.NotNil(t, u.Output)
	var perr *preproc.Error
	require.True(t, errors.As(u.Err, &perr))
	assert.Equal(t, diag.SynError, perr.Code)

	items := u.Bag.Items()
	require.Len(t, items, 1)
	assert.Equal(t, diag.SynError, items[0].Code)
	require.Len(t, items[0].Notes, 1)
	assert.Equal(t, "Expected ';' but found 'x'", items[0].Notes[0].Msg)
	assert.Equal(t, items[0].Primary, items[0].Notes[0].Span)
}

func TestResultCache(t *testing.T) {
	dir := t.TempDir()
	cache, err := driver.OpenCacheDir(t.TempDir())
	require.NoError(t, err)

	first := writeDump(t, dir, "Size.pdt", buildBadSize("Size"))
	opts := driver.Options{Manifest: testManifest(dir), Cache: cache}

	cold, err := driver.Process(context.Background(), []string{first}, opts)
	require.NoError(t, err)
	require.False(t, cold.Units[0].Cached)
	require.NoError(t, cold.Units[0].Err)

	warm, err := driver.Process(context.Background(), []string{first}, opts)
	require.NoError(t, err)
	u := warm.Units[0]
	require.True(t, u.Cached)
	assert.Equal(t, cold.Units[0].Output.Text, u.Output.Text)
	assert.Equal(t, cold.Units[0].Output.Edits, u.Output.Edits)
	assert.Equal(t, cold.Units[0].Output.HeaderLines, u.Output.HeaderLines)
	assert.Equal(t, cold.Units[0].Output.Shape, u.Output.Shape)

	// replayed diagnostics point into the reloaded file
	require.Equal(t, []diag.Code{diag.PreSizeSkipped}, codes(u.Bag))
	assert.Equal(t, u.Tree.File.ID, u.Bag.Items()[0].Primary.File)

	pos, ok := u.Output.OutputPosition(source.LineCol{Line: 1, Col: 6})
	require.True(t, ok)
	back, ok := u.Output.OriginalPosition(pos)
	require.True(t, ok)
	assert.Equal(t, source.LineCol{Line: 1, Col: 6}, back)

	// a different indent is a different key
	changed := testManifest(dir)
	changed.Config.Preprocessor.Indent = 4
	other, err := driver.Process(context.Background(), []string{first}, driver.Options{Manifest: changed, Cache: cache})
	require.NoError(t, err)
	assert.False(t, other.Units[0].Cached)
	assert.NotEqual(t, u.Output.Text, other.Units[0].Output.Text)
}

func TestFailedRunsAreNotCached(t *testing.T) {
	dir := t.TempDir()
	cache, err := driver.OpenCacheDir(t.TempDir())
	require.NoError(t, err)
	path := writeDump(t, dir, "Broken.pdt", buildFloat(floatSketch("Broken").Error(0, 5, "token recognition error at: '#'", true)))
	opts := driver.Options{Manifest: testManifest(dir), Cache: cache}

	for range 2 {
		batch, err := driver.Process(context.Background(), []string{path}, opts)
		require.NoError(t, err)
		assert.False(t, batch.Units[0].Cached)
		assert.Error(t, batch.Units[0].Err)
	}
}

func TestCacheDropAll(t *testing.T) {
	cache, err := driver.OpenCacheDir(filepath.Join(t.TempDir(), "pdepp"))
	require.NoError(t, err)

	var key driver.Key
	key[0] = 0xab
	require.NoError(t, cache.Put(key, &driver.Payload{Result: preproc.Result{UnitName: "A"}}))

	var got driver.Payload
	ok, err := cache.Get(key, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A", got.Result.UnitName)

	require.NoError(t, cache.DropAll())
	ok, err = cache.Get(key, &driver.Payload{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func writeJar(t *testing.T, path string, entries ...string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e)
		require.NoError(t, err)
		_, err = w.Write([]byte{0xca, 0xfe, 0xba, 0xbe})
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestCodeFolderImports(t *testing.T) {
	dir := t.TempDir()
	writeJar(t, filepath.Join(dir, "lib.jar"),
		"com/example/lib/A.class",
		"com/example/lib/B.class",
		"com/example/util/C.class",
		"com/example/util/readme.txt",
		"Top.class",
		"META-INF/versions/9/com/example/D.class",
	)
	writeJar(t, filepath.Join(dir, "extra.ZIP"), "org/other/E.class")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.jar"), []byte("not a zip"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	imports, err := driver.CodeFolderImports(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.jar")
	assert.Equal(t, []string{"com.example.lib.*", "com.example.util.*", "org.other.*"}, imports)

	imports, err = driver.CodeFolderImports(filepath.Join(dir, "absent"))
	require.NoError(t, err)
	assert.Empty(t, imports)
}

func TestCodeFolderImportsReachTheHeader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "code"), 0o755))
	writeJar(t, filepath.Join(dir, "code", "lib.jar"), "com/example/lib/A.class")
	path := writeDump(t, dir, "Sketch.pdt", buildFloat(floatSketch("Sketch")))

	manifest := testManifest(dir)
	manifest.Config.Preprocessor.CodeFolderImports = []string{"com.example.lib.*", "net.fixed.*"}
	batch, err := driver.Process(context.Background(), []string{path}, driver.Options{Manifest: manifest})
	require.NoError(t, err)

	text := batch.Units[0].Output.Text
	assert.Equal(t, 1, strings.Count(text, "import com.example.lib.*;"))
	assert.Less(t, strings.Index(text, "import com.example.lib.*;"), strings.Index(text, "import net.fixed.*;"))

	manifest.Config.Preprocessor.ScanCodeFolder = false
	manifest.Config.Preprocessor.CodeFolderImports = nil
	batch, err = driver.Process(context.Background(), []string{path}, driver.Options{Manifest: manifest})
	require.NoError(t, err)
	assert.NotContains(t, batch.Units[0].Output.Text, "com.example.lib")
}

func TestListDumps(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	for _, name := range []string{"b.pdt", "a.json", "sub/c.PDT", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	files, err := driver.ListDumps(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.pdt"),
		filepath.Join(dir, "sub", "c.PDT"),
	}, files)
}

func TestAppendTimings(t *testing.T) {
	timer := observ.NewTimer()
	timer.End(timer.Begin("load"), "")
	bag := diag.NewBag(1)
	bag.Add(diag.Diagnostic{Code: diag.PreInfo})

	driver.AppendTimings(bag, timer, 3)
	require.Equal(t, 2, bag.Len())
	assert.Zero(t, bag.Dropped())
	d := bag.Items()[1]
	assert.Equal(t, diag.ObsTimings, d.Code)
	assert.Contains(t, d.Message, "3 units")
	require.Len(t, d.Notes, 1)
	assert.Contains(t, d.Notes[0].Msg, `"name":"load"`)
}
