package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/TiredRebel/personal-assistant/internal/cmdparse"
	"github.com/spf13/cobra"
)

var doCmd = &cobra.Command{
	Use:   "do <line>",
	Short: "Run assistant commands without the interactive prompt",
	Long: `Run one or more command lines as if typed into the interactive session.
Lines are separated by ; or && (outside double quotes). Any questions a
command asks are read from standard input.

The exit status is non-zero when any line fails or is not recognized;
the remaining lines still run.`,
	Example: `  pa do 'add contact "John Doe" +380501234567'
  pa do 'list contacts; birthdays --days 30'
  pa do 'add note "Groceries" --content "milk, eggs" #home'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lines := cmdparse.Split(strings.Join(args, " "))
		if len(lines) == 0 {
			return fmt.Errorf("nothing to run")
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		s := a.session(os.Stdin, os.Stdout, false)
		failed := 0
		for _, line := range lines {
			if err := s.Execute(cmd.Context(), line); err != nil {
				failed++
			}
			if s.Done() {
				break
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d command(s) failed", failed, len(lines))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doCmd)
}
