package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codeanticode/processing-openjdk/internal/config"
	"github.com/codeanticode/processing-openjdk/internal/driver"
	"github.com/codeanticode/processing-openjdk/internal/observ"
	"github.com/codeanticode/processing-openjdk/internal/preproc"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess [flags] <dump.pdt|dump.json|directory>...",
	Short: "Rewrite parsed sketches into Java source",
	Long: `Rewrite parsed sketches into Java source. Each input is a parse dump
written by the external parser; directories are searched for *.pdt and *.json.
The Java text goes to [output].dir (or --out) when set, otherwise to stdout.
Diagnostics go to stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPreprocess,
}

func init() {
	preprocessCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json|short)")
	preprocessCmd.Flags().String("emit", "text", "what to print for each unit (text|json)")
	preprocessCmd.Flags().String("out", "", "directory for generated .java files (overrides [output].dir)")
	preprocessCmd.Flags().String("name", "", "class name for the generated unit (single input only)")
	preprocessCmd.Flags().Int("jobs", 0, "max parallel units (0=auto)")
	preprocessCmd.Flags().Bool("no-cache", false, "do not read or write the result cache")
	preprocessCmd.Flags().Bool("clear-cache", false, "drop the result cache before running")
	preprocessCmd.Flags().Bool("with-fixes", false, "include fix suggestions in diagnostics")
	preprocessCmd.Flags().Bool("fullpath", false, "emit absolute file paths in diagnostics")
}

// runPreprocess loads configuration, runs the batch, writes every successful
// unit and reports diagnostics. It returns errFailed when any unit failed.
func runPreprocess(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	emit, err := cmd.Flags().GetString("emit")
	if err != nil {
		return fmt.Errorf("failed to get emit flag: %w", err)
	}
	if emit != "text" && emit != "json" {
		return fmt.Errorf("unknown emit value: %s", emit)
	}
	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return fmt.Errorf("failed to get name flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	withFixes, err := cmd.Flags().GetBool("with-fixes")
	if err != nil {
		return fmt.Errorf("failed to get with-fixes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	paths, err := resolveInputs(args)
	if err != nil {
		return err
	}
	manifest, err := loadManifest(cmd, inputDir(args))
	if err != nil {
		return err
	}
	if outDir != "" {
		abs, absErr := filepath.Abs(outDir)
		if absErr != nil {
			return absErr
		}
		manifest.Config.Output.Dir = abs
	}

	var cache *driver.Cache
	if manifest.Config.Output.Cache && !noCache {
		cache, err = driver.OpenCache("pdepp")
		if err != nil {
			if !quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "pdepp: result cache disabled: %v\n", err)
			}
			cache = nil
		}
	}
	if clearCache && cache != nil {
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}

	var timer *observ.Timer
	if showTimings {
		timer = observ.NewTimer()
	}

	batch, err := driver.Process(cmd.Context(), paths, driver.Options{
		Manifest:       manifest,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		Cache:          cache,
		Timer:          timer,
		UnitName:       name,
	})
	if err != nil {
		return err
	}

	idx := timer.Begin("write")
	writeErr := writeUnits(cmd, batch, manifest, emit, quiet)
	timer.End(idx, "")

	diags := batch.Diagnostics()
	if showTimings && format == "json" {
		driver.AppendTimings(diags, timer, len(paths))
	}
	if err := writeDiagnostics(cmd, cmd.ErrOrStderr(), diags, batch.FileSet, reportOptions{
		format:    format,
		withNotes: withFixes,
		fullPath:  fullPath,
		quiet:     quiet,
	}); err != nil {
		return err
	}
	if showTimings && format != "json" {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}

	if writeErr != nil {
		return writeErr
	}
	if batch.Failed() {
		dumpTrace(failedUnits(batch)...)
		return errFailed
	}
	return nil
}

// failedUnits names the failed units as their trace events are tagged.
func failedUnits(batch *driver.Batch) []string {
	var names []string
	for i := range batch.Units {
		u := &batch.Units[i]
		switch {
		case !u.Failed():
		case u.Output != nil:
			names = append(names, u.Output.UnitName)
		case u.Tree != nil && u.Tree.Name != "":
			names = append(names, u.Tree.Name)
		}
	}
	return names
}

type unitJSON struct {
	Input  string         `json:"input"`
	Output string         `json:"output,omitempty"`
	Cached bool           `json:"cached"`
	Result preproc.Result `json:"result"`
	Text   string         `json:"text"`
}

// writeUnits writes successful units to their output files, or to stdout
// when no output directory is configured.
func writeUnits(cmd *cobra.Command, batch *driver.Batch, manifest *config.Manifest, emit string, quiet bool) error {
	stdout := cmd.OutOrStdout()
	payload := []unitJSON{}
	toStdout := 0
	for i := range batch.Units {
		if u := &batch.Units[i]; !u.Failed() && manifest.OutputPath(u.Output.UnitName) == "" {
			toStdout++
		}
	}

	for i := range batch.Units {
		u := &batch.Units[i]
		if u.Failed() {
			continue
		}
		target := manifest.OutputPath(u.Output.UnitName)
		if emit == "json" {
			payload = append(payload, unitJSON{
				Input:  u.Path,
				Output: target,
				Cached: u.Cached,
				Result: u.Output.Result,
				Text:   u.Output.Text,
			})
			continue
		}
		if target == "" {
			if toStdout > 1 {
				fmt.Fprintf(stdout, "// ==> %s.java\n", u.Output.UnitName)
			}
			if _, err := io.WriteString(stdout, u.Output.Text); err != nil {
				return err
			}
			continue
		}
		if err := writeFile(target, u.Output.Text); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", target)
		}
	}

	if emit == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	return nil
}

func writeFile(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil { // #nosec G306 -- generated source is not secret
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
