package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/codeanticode/processing-openjdk/internal/simplify"
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify [flags] [message...]",
	Short: "Explain a raw parser or compiler message in plain language",
	Long: `Explain a raw parser or compiler message in plain language. Each
argument is one message; without arguments messages are read from stdin, one
per line. Messages no strategy recognizes are echoed unchanged.`,
	RunE: runSimplify,
}

func init() {
	simplifyCmd.Flags().String("lang", "en", "language of the summaries (BCP 47 tag)")
	simplifyCmd.Flags().String("format", "pretty", "output format (pretty|plain|json)")
}

type simplifyJSON struct {
	Raw        string `json:"raw"`
	Simplified bool   `json:"simplified"`
	simplify.Simplification
}

func runSimplify(cmd *cobra.Command, args []string) error {
	lang, err := cmd.Flags().GetString("lang")
	if err != nil {
		return fmt.Errorf("failed to get lang flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", lang, err)
	}
	chain := simplify.New(tag, simplify.Strategies()...)

	messages := args
	if len(messages) == 0 {
		messages, err = readMessages(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	results := make([]simplifyJSON, 0, len(messages))
	for _, raw := range messages {
		s, ok := chain.Simplify(raw)
		results = append(results, simplifyJSON{Raw: raw, Simplified: ok, Simplification: s})
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "plain":
		for _, r := range results {
			if r.Simplified {
				fmt.Fprintln(out, r.Summary)
			} else {
				fmt.Fprintln(out, r.Raw)
			}
		}
		return nil
	case "pretty":
		useColor, err := colorEnabled(cmd)
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Fprintln(out, hintBox(r, useColor))
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func readMessages(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), "\r"); strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

// hintBox frames one result: the summary (or the raw message when nothing
// matched) with the raw message and strategy underneath.
func hintBox(r simplifyJSON, useColor bool) string {
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	title := lipgloss.NewStyle().Bold(true)
	dim := lipgloss.NewStyle()
	if useColor {
		title = title.Foreground(lipgloss.Color("2"))
		dim = dim.Foreground(lipgloss.Color("8"))
		box = box.BorderForeground(lipgloss.Color("6"))
	}

	if !r.Simplified {
		if useColor {
			title = title.Foreground(lipgloss.Color("3"))
		}
		return box.Render(title.Render(r.Raw) + "\n" + dim.Render("no simpler explanation"))
	}
	return box.Render(title.Render(r.Summary) + "\n" + dim.Render(r.Raw+"  ("+r.Strategy+")"))
}
