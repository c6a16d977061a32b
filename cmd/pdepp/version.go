package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeanticode/processing-openjdk/internal/preproc"
	"github.com/codeanticode/processing-openjdk/internal/version"
)

type versionPayload struct {
	Tool         string `json:"tool"`
	Version      string `json:"version"`
	Preprocessor string `json:"preprocessor"`
	GitCommit    string `json:"git_commit,omitempty"`
	BuildDate    string `json:"build_date,omitempty"`
}

var versionFormat string

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show pdepp build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch strings.ToLower(versionFormat) {
		case "pretty":
			renderVersionPretty(cmd.OutOrStdout())
			return nil
		case "json":
			return renderVersionJSON(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}

func renderVersionPretty(out io.Writer) {
	fmt.Fprintln(out, version.Info())
	fmt.Fprintf(out, "preprocessor %s\n", preproc.Version)
}

func renderVersionJSON(out io.Writer) error {
	payload := versionPayload{
		Tool:         "pdepp",
		Version:      strings.TrimSpace(version.Version),
		Preprocessor: preproc.Version,
		GitCommit:    strings.TrimSpace(version.GitCommit),
		BuildDate:    strings.TrimSpace(version.BuildDate),
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
