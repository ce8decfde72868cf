package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lacquerai/deriv/internal/parser"
	"github.com/lacquerai/deriv/internal/server"
	"github.com/lacquerai/deriv/internal/style"
)

var parseTree bool

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <expression>",
	Short: "Print the canonical form of an expression",
	Long: `Parse an expression and print it in canonical form: like terms folded,
constants combined and the minimum of parentheses.

Rejected input is reported with a caret under the offending character; add
--debug to also see the parser's operand and operator stacks.`,
	Example: `
  drv parse "x*2 + 3"            # 2x+3
  drv parse "sin[x]^2" --tree    # include the expression tree
  drv parse "2++3" --debug       # show parser stacks on failure`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(&parseTree, "tree", false, "include the expression tree")
}

func runParse(cmd *cobra.Command, text string) error {
	e, err := parser.Parse(text)
	if err != nil {
		return reportError(cmd, err)
	}
	log.Debug().Str("input", text).Str("canonical", e.String()).Msg("Parsed expression")

	resp := server.NewParseResponse(text, e, parseTree)
	if printed, err := style.Print(cmd.OutOrStdout(), viper.GetString("output"), resp); printed {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, style.HighlightExpression(resp.Canonical))
	if parseTree {
		return style.PrintJSON(w, resp.Tree)
	}
	return nil
}
