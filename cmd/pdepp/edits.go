package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeanticode/processing-openjdk/internal/driver"
)

var editsCmd = &cobra.Command{
	Use:   "edits [flags] <dump.pdt|dump.json>",
	Short: "Show the edits the preprocessor records for a sketch",
	Long: `Show the edits the preprocessor records for a sketch, in call order.
With --flat the ledger is collapsed into sorted, non-overlapping replacements
against the original source, the form editors apply.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdits,
}

func init() {
	editsCmd.Flags().Bool("flat", false, "print flattened replacements instead of the raw ledger")
	editsCmd.Flags().String("format", "text", "output format (text|json)")
}

func runEdits(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	flat, err := cmd.Flags().GetBool("flat")
	if err != nil {
		return fmt.Errorf("failed to get flat flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	manifest, err := loadManifest(cmd, inputDir(args))
	if err != nil {
		return err
	}
	batch, err := driver.Process(cmd.Context(), args, driver.Options{Manifest: manifest})
	if err != nil {
		return err
	}
	u := &batch.Units[0]
	if u.Output == nil {
		if err := writeDiagnostics(cmd, cmd.ErrOrStderr(), u.Bag, batch.FileSet, reportOptions{format: "pretty"}); err != nil {
			return err
		}
		return errFailed
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if flat {
			return enc.Encode(u.Output.Replacements())
		}
		return enc.Encode(u.Output.Edits)
	}

	if flat {
		for _, r := range u.Output.Replacements() {
			fmt.Fprintf(out, "[%d,%d) %q -> %q\n", r.Start, r.End, r.OldText, r.NewText)
		}
		return nil
	}
	for i, e := range u.Output.Edits {
		fmt.Fprintf(out, "%4d  %s\n", i, e)
	}
	return nil
}
