package preproc

import (
	"strings"
	"time"

	"github.com/codeanticode/processing-openjdk/internal/config"
	"github.com/codeanticode/processing-openjdk/internal/diag"
	"github.com/codeanticode/processing-openjdk/internal/prefs"
)

// Version is reported in the generated banner comment.
const Version = "3.0.0"

// Options are the per-run inputs besides the tree.
type Options struct {
	// UnitName overrides the tree's name for the synthesized class.
	UnitName string

	CoreImports       []string
	CodeFolderImports []string
	DefaultImports    []string

	// Indent is the number of spaces per synthesized indentation level.
	Indent int
	// OmitBanner drops the "autogenerated" comment; tests use it to get
	// date-independent output.
	OmitBanner bool

	// Prefs is consulted only when main() is synthesized. Nil means the
	// built-in defaults.
	Prefs prefs.Lookup
	// Now stamps the banner. Nil means time.Now.
	Now func() time.Time
	// Reporter receives info diagnostics for skipped rewrites and every
	// upstream error. Optional.
	Reporter diag.Reporter
}

// DefaultOptions mirrors Processing's own defaults: two-space indent, the
// banner, the core imports and the default java.util/java.io imports.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig maps the [preprocessor] section onto Options.
func OptionsFromConfig(cfg config.Config) Options {
	pp := cfg.Preprocessor
	return Options{
		CoreImports:       append([]string(nil), pp.CoreImports...),
		CodeFolderImports: append([]string(nil), pp.CodeFolderImports...),
		DefaultImports:    append([]string(nil), pp.DefaultImports...),
		Indent:            pp.Indent,
		OmitBanner:        !pp.Banner,
	}
}

type indents struct {
	one, two, three string
}

func (o *Options) indents() indents {
	n := max(o.Indent, 0)
	one := strings.Repeat(" ", n)
	return indents{one: one, two: one + one, three: one + one + one}
}

func (o *Options) prefs() prefs.Lookup {
	if o.Prefs == nil {
		return prefs.Defaults()
	}
	return o.Prefs
}

func (o *Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}
