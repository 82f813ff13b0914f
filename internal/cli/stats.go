package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show contact and note statistics",
	Long: `Display counts of contacts, notes and tags, the average number of tags
per note, notes without tags or titles, and the most used tags.`,
	Example: `  pa stats
  pa stats --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		s := a.session(os.Stdin, os.Stdout, false)
		return s.stats(cmd.Context(), nil, "")
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
