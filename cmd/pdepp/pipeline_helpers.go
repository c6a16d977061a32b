package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codeanticode/processing-openjdk/internal/config"
	"github.com/codeanticode/processing-openjdk/internal/diag"
	"github.com/codeanticode/processing-openjdk/internal/diagfmt"
	"github.com/codeanticode/processing-openjdk/internal/driver"
	"github.com/codeanticode/processing-openjdk/internal/source"
)

// loadManifest honors --config, otherwise searches upwards from startDir.
func loadManifest(cmd *cobra.Command, startDir string) (*config.Manifest, error) {
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if configPath != "" {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return nil, err
		}
		return &config.Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
	}
	m, _, err := config.Load(startDir)
	return m, err
}

// resolveInputs expands directories into the parse dumps they contain.
func resolveInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			paths = append(paths, arg)
			continue
		}
		dumps, err := driver.ListDumps(arg)
		if err != nil {
			return nil, err
		}
		if len(dumps) == 0 {
			return nil, fmt.Errorf("no parse dumps (*.pdt, *.json) in %s", arg)
		}
		paths = append(paths, dumps...)
	}
	return paths, nil
}

// inputDir is where the manifest search starts for args.
func inputDir(args []string) string {
	if len(args) == 0 {
		return "."
	}
	if st, err := os.Stat(args[0]); err == nil && st.IsDir() {
		return args[0]
	}
	return filepath.Dir(args[0])
}

type reportOptions struct {
	format    string
	withNotes bool
	fullPath  bool
	quiet     bool
}

// writeDiagnostics renders bag in the chosen format. Info diagnostics are
// dropped in quiet mode.
func writeDiagnostics(cmd *cobra.Command, w io.Writer, bag *diag.Bag, fs *source.FileSet, opts reportOptions) error {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	useColor, err := colorEnabled(cmd)
	if err != nil {
		return err
	}
	dropped := bag.Dropped()
	if opts.quiet {
		filtered := diag.NewBag(bag.Len())
		for _, d := range bag.Items() {
			if d.Severity > diag.SevInfo {
				filtered.Add(d)
			}
		}
		bag = filtered
	}
	if bag.Len() == 0 && opts.format != "json" {
		return nil
	}
	if dropped > 0 && opts.format != "json" {
		defer fmt.Fprintf(w, "%d more diagnostics not shown (see --max-diagnostics)\n", dropped)
	}

	pathMode := diagfmt.PathModeAuto
	if opts.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch opts.format {
	case "pretty":
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:       useColor,
			Context:     1,
			PathMode:    pathMode,
			ShowNotes:   true,
			ShowFixes:   opts.withNotes,
			ShowPreview: opts.withNotes,
			Max:         maxDiagnostics,
		})
		return nil
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			Max:              maxDiagnostics,
			IncludeNotes:     true,
			IncludeFixes:     opts.withNotes,
			IncludePreviews:  opts.withNotes,
		})
	case "short":
		return diagfmt.Short(w, bag, fs, diagfmt.ShortOpts{
			PathMode: pathMode,
			Notes:    true,
			Fixes:    opts.withNotes,
		})
	default:
		return fmt.Errorf("unknown format: %s", opts.format)
	}
}
