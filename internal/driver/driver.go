package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codeanticode/processing-openjdk/internal/config"
	"github.com/codeanticode/processing-openjdk/internal/diag"
	"github.com/codeanticode/processing-openjdk/internal/observ"
	"github.com/codeanticode/processing-openjdk/internal/preproc"
	"github.com/codeanticode/processing-openjdk/internal/prefs"
	"github.com/codeanticode/processing-openjdk/internal/simplify"
	"github.com/codeanticode/processing-openjdk/internal/source"
	"github.com/codeanticode/processing-openjdk/internal/syntax"
	"github.com/codeanticode/processing-openjdk/internal/trace"
)

// DefaultMaxDiagnostics caps each unit's bag when Options leave it unset.
const DefaultMaxDiagnostics = 200

// Options configure a batch.
type Options struct {
	// Manifest supplies [preprocessor], [preferences] and the code folder.
	// Nil means config.Default() rooted at the working directory.
	Manifest *config.Manifest
	// Jobs limits concurrent units; <= 0 means GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	// Cache is consulted before each run and filled after successful ones.
	// Nil disables caching.
	Cache *Cache
	// Timer receives one phase per batch step and per unit. Optional.
	Timer *observ.Timer
	// Simplifier annotates upstream parser errors. Nil means
	// simplify.Default().
	Simplifier *simplify.Chain
	// UnitName overrides the class name; only valid for a single path.
	UnitName string
	Now      func() time.Time
}

// Unit is the outcome of one dump.
type Unit struct {
	Path   string
	Tree   *syntax.Tree
	Output *preproc.Output
	// Err is a load error, or the run's first structural error
	// (a *preproc.Error) returned together with Output.
	Err    error
	Bag    *diag.Bag
	Cached bool
}

// Failed reports whether the unit produced no usable output or carries a
// structural error.
func (u *Unit) Failed() bool {
	return u.Err != nil || u.Output == nil
}

// Batch holds the units in input order and the file set their spans point
// into.
type Batch struct {
	FileSet *source.FileSet
	Units   []Unit
}

// Failed reports whether any unit failed.
func (b *Batch) Failed() bool {
	for i := range b.Units {
		if b.Units[i].Failed() {
			return true
		}
	}
	return false
}

// Diagnostics merges every unit's bag, sorted by position.
func (b *Batch) Diagnostics() *diag.Bag {
	out := diag.NewBag(0)
	for i := range b.Units {
		if b.Units[i].Bag != nil {
			out.Merge(b.Units[i].Bag)
		}
	}
	out.Sort()
	return out
}

// ListDumps returns the sorted parse dumps (.pdt and .json) under dir.
func ListDumps(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdt", ".json":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// Process loads every dump in paths and preprocesses the units
// concurrently, one fresh run per unit. Units are returned in input order.
// The error is non-nil only for configuration problems or cancellation;
// per-unit failures are recorded on the units.
func Process(ctx context.Context, paths []string, opts Options) (*Batch, error) {
	if opts.UnitName != "" && len(paths) > 1 {
		return nil, fmt.Errorf("unit name override needs exactly one input, got %d", len(paths))
	}
	manifest := opts.Manifest
	if manifest == nil {
		root, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		manifest = &config.Manifest{Root: root, Config: config.Default()}
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = DefaultMaxDiagnostics
	}
	if opts.Simplifier == nil {
		opts.Simplifier = simplify.Default()
	}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "batch", trace.SpanFrom(ctx)).
		WithExtra("units", strconv.Itoa(len(paths)))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	idx := opts.Timer.Begin("config")
	base, p, err := baseOptions(manifest, opts)
	opts.Timer.End(idx, "")
	if err != nil {
		return nil, err
	}

	fileSet := source.NewFileSet()
	fileSet.SetBaseDir(manifest.Root)
	batch := &Batch{FileSet: fileSet, Units: make([]Unit, len(paths))}
	if len(paths) == 0 {
		return batch, nil
	}

	// Загрузка последовательно: FileSet не потокобезопасен
	idx = opts.Timer.Begin("load")
	dumps := make([][]byte, len(paths))
	folders := make(map[string][]string)
	for i, path := range paths {
		u := &batch.Units[i]
		u.Path = path
		u.Bag = diag.NewBag(opts.MaxDiagnostics)

		// #nosec G304 -- path is provided by the caller
		data, err := os.ReadFile(path)
		if err == nil {
			u.Tree, err = syntax.LoadBytes(fileSet, path, data)
		}
		if err != nil {
			u.Err = err
			u.Bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.IOLoadFileError,
				Message:  "failed to load parse dump: " + err.Error(),
				Primary:  source.Span{File: fileSet.AddVirtual(path, nil)},
			})
			continue
		}
		dumps[i] = data

		dir := filepath.Dir(path)
		if _, seen := folders[dir]; seen || !manifest.Config.Preprocessor.ScanCodeFolder {
			continue
		}
		folder := manifest.CodeFolderPath(dir)
		imports, err := CodeFolderImports(folder)
		if err != nil {
			u.Bag.Add(diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.ProjCodeFolder,
				Message:  err.Error(),
				Primary:  source.Span{File: fileSet.AddVirtual(folder, nil)},
			})
		}
		folders[dir] = imports
	}
	opts.Timer.End(idx, fmt.Sprintf("%d units", len(paths)))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты по индексу, мьютекс не нужен
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i := range batch.Units {
		u := &batch.Units[i]
		if u.Tree == nil {
			continue
		}
		o := base
		o.CodeFolderImports = mergeImports(base.CodeFolderImports, folders[filepath.Dir(u.Path)])
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			runUnit(gctx, u, dumps[i], o, p, manifest, &opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return batch, err
	}
	return batch, nil
}

func baseOptions(m *config.Manifest, opts Options) (preproc.Options, *prefs.Prefs, error) {
	if err := m.Config.Validate(); err != nil {
		return preproc.Options{}, nil, fmt.Errorf("%s: %w", m.Path, err)
	}
	p, err := m.ResolvePrefs()
	if err != nil {
		return preproc.Options{}, nil, fmt.Errorf("preferences: %w", err)
	}
	o := preproc.OptionsFromConfig(m.Config)
	o.UnitName = opts.UnitName
	o.Prefs = p
	o.Now = opts.Now
	return o, p, nil
}

func runUnit(ctx context.Context, u *Unit, dump []byte, o preproc.Options, p *prefs.Prefs, m *config.Manifest, opts *Options) {
	idx := opts.Timer.Begin("unit " + filepath.Base(u.Path))
	note := "ran"
	defer func() { opts.Timer.End(idx, note) }()

	var key Key
	if opts.Cache != nil {
		key = cacheKey(dump, keyInputs{
			Fingerprint: m.Config.Fingerprint(),
			CodeFolder:  o.CodeFolderImports,
			Prefs:       prefValues(p),
			BannerDate:  bannerDate(o),
			UnitName:    o.UnitName,
		})
		var payload Payload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			u.Bag.Add(cacheWarning(u, err))
		}
		if hit {
			out := &preproc.Output{Result: payload.Result}
			out.Rebind(u.Tree.File)
			u.Output = out
			u.Cached = true
			for _, d := range payload.Diagnostics {
				u.Bag.Add(rebase(d, u.Tree.File.ID))
			}
			note = "cached"
			return
		}
	}

	// RunContext reports from this goroutine only
	var items []diag.Diagnostic
	o.Reporter = diag.ReporterFunc(func(d diag.Diagnostic) {
		if d.Code == diag.LexError || d.Code == diag.SynError {
			d, _ = opts.Simplifier.Annotate(d)
		}
		if u.Bag.Add(d) {
			items = append(items, d)
		}
	})
	out, err := preproc.RunContext(ctx, u.Tree, o)
	u.Output = out
	u.Err = err

	if err != nil {
		var perr *preproc.Error
		if errors.As(err, &perr) {
			note = perr.Code.ID()
		} else {
			note = "failed"
		}
		return
	}
	if opts.Cache != nil {
		if err := opts.Cache.Put(key, &Payload{Result: out.Result, Diagnostics: items}); err != nil {
			u.Bag.Add(cacheWarning(u, err))
		}
	}
}

func prefValues(p *prefs.Prefs) map[string]string {
	if p == nil {
		return nil
	}
	keys := p.Keys()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = p.String(k)
	}
	return out
}

func bannerDate(o preproc.Options) string {
	if o.OmitBanner {
		return ""
	}
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	return now().Format("2006-01-02")
}

// rebase moves a cached diagnostic onto the file it was reloaded as.
func rebase(d diag.Diagnostic, file source.FileID) diag.Diagnostic {
	d.Primary.File = file
	if len(d.Notes) > 0 {
		notes := make([]diag.Note, len(d.Notes))
		for i, n := range d.Notes {
			n.Span.File = file
			notes[i] = n
		}
		d.Notes = notes
	}
	if len(d.Fixes) > 0 {
		fixes := make([]diag.Fix, len(d.Fixes))
		for i, f := range d.Fixes {
			edits := make([]diag.FixEdit, len(f.Edits))
			for j, e := range f.Edits {
				e.Span.File = file
				edits[j] = e
			}
			f.Edits = edits
			fixes[i] = f
		}
		d.Fixes = fixes
	}
	return d
}

func cacheWarning(u *Unit, err error) diag.Diagnostic {
	return diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.IOCacheError,
		Message:  "result cache: " + err.Error(),
		Primary:  source.Span{File: u.Tree.File.ID},
	}
}
