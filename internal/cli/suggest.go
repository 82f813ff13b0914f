package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/TiredRebel/personal-assistant/internal/command"
	"github.com/spf13/cobra"
)

var suggestTopN int

// suggestCmd ranks commands for text that may not parse.
var suggestCmd = &cobra.Command{
	Use:   "suggest <text>",
	Short: "Suggest commands similar to the given text",
	Long: `Suggest ranks every known phrasing against the text and lists the best
distinct commands above the suggestion threshold (suggest_threshold in the
config). This is what the interactive session shows under "Did you mean".`,
	Example: `  pa suggest "ad contcat"
  pa suggest "lst" --top 5
  pa suggest "nots" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := strings.Join(args, " ")
		w := cmd.OutOrStdout()

		suggestions := newMatcher(nil).Suggestions(input, suggestTopN)
		if jsonOutput {
			return writeSuggestJSON(w, suggestions)
		}
		if len(suggestions) == 0 {
			fmt.Fprintf(w, "No suggestions for %q\n", input)
			return nil
		}
		tbl := NewTable(w, useColor(w, settings.Color, noColor), "COMMAND", "PHRASE", "SCORE")
		for _, s := range suggestions {
			tbl.Row(s.Command, s.Phrase, fmt.Sprintf("%.2f", s.Score))
		}
		return tbl.Flush()
	},
}

func init() {
	suggestCmd.Flags().IntVar(&suggestTopN, "top", 0, "maximum number of suggestions (default max_suggestions)")
	rootCmd.AddCommand(suggestCmd)
}

func writeSuggestJSON(w io.Writer, suggestions []command.Suggestion) error {
	if suggestions == nil {
		suggestions = []command.Suggestion{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(suggestions)
}
