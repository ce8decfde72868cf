package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lacquerai/deriv/internal/history"
	"github.com/lacquerai/deriv/internal/repl"
)

var replHistorySize int

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive differentiation session",
	Long: `Start an interactive session. Input is highlighted as you type.

  enter    derive the input
  ctrl+r   derive the last result again
  ctrl+p   only parse the input
  ctrl+d   toggle parser stack diagnostics
  ctrl+l   clear the screen
  up/down  walk the history
  esc      quit

History is saved to $HOME/.deriv/history unless repl.history-file says otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(viper.GetString("repl.history-file"), replHistorySize)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		return repl.Run(store, viper.GetBool("debug"))
	},
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().String("history-file", "", "history file (default $HOME/.deriv/history)")
	replCmd.Flags().IntVar(&replHistorySize, "history-size", history.DefaultLimit, "number of history entries to keep")
	_ = viper.BindPFlag("repl.history-file", replCmd.Flags().Lookup("history-file"))
}
