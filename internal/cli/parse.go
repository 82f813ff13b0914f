package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/TiredRebel/personal-assistant/internal/cmdparse"
	"github.com/TiredRebel/personal-assistant/internal/intent"
	"github.com/spf13/cobra"
)

// parseResult is the JSON shape of pa parse.
type parseResult struct {
	Input      string        `json:"input"`
	Matched    bool          `json:"matched"`
	Command    string        `json:"command,omitempty"`
	Args       cmdparse.Args `json:"args,omitempty"`
	Confidence *float64      `json:"confidence,omitempty"`
	Intent     intent.Intent `json:"intent"`
	Parameters cmdparse.Args `json:"parameters,omitempty"`
}

var parseCmd = &cobra.Command{
	Use:   "parse <text>",
	Short: "Show how a line would be interpreted",
	Long: `Run a line through the command interpreter without executing it.

Shows the resolved command, the extracted arguments and the confidence
(empty for exact phrase matches). The loose intent reading and any
names, phones, emails or hashtags found in the text are shown as well.`,
	Example: `  pa parse "add contact \"John Doe\" +380501234567"
  pa parse "serch contcat john"
  pa parse --json "show all notes"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := strings.Join(args, " ")
		p, ok := newMatcher(nil).Parse(input)
		res := parseResult{
			Input:      input,
			Matched:    ok,
			Command:    p.Command,
			Args:       p.Args,
			Confidence: p.Confidence,
			Intent:     intent.Recognize(input),
			Parameters: intent.ExtractParameters(input),
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		tbl := NewTable(os.Stdout, useColor(os.Stdout, settings.Color, noColor), "FIELD", "VALUE")
		if ok {
			tbl.Row("command", res.Command)
			conf := "exact"
			if res.Confidence != nil {
				conf = strconv.FormatFloat(*res.Confidence, 'f', 2, 64)
			}
			tbl.Row("confidence", conf)
			for _, k := range sortedKeys(res.Args) {
				tbl.Row("arg "+k, formatArg(res.Args[k]))
			}
		} else {
			tbl.Row("command", "(not recognized)")
		}
		if res.Intent.Action != "" || res.Intent.Entity != "" {
			tbl.Row("intent", fmt.Sprintf("%s %s (%.1f)", res.Intent.Action, res.Intent.Entity, res.Intent.Confidence))
		}
		for _, k := range sortedKeys(res.Parameters) {
			tbl.Row("found "+k, formatArg(res.Parameters[k]))
		}
		return tbl.Flush()
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func sortedKeys(a cmdparse.Args) []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatArg(v cmdparse.ArgValue) string {
	switch v := v.(type) {
	case cmdparse.Text:
		return strconv.Quote(string(v))
	case cmdparse.List:
		q := make([]string, len(v))
		for i, s := range v {
			q[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(q, ", ") + "]"
	default:
		return ""
	}
}
