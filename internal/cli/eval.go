package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lacquerai/deriv/internal/parser"
	"github.com/lacquerai/deriv/internal/server"
	"github.com/lacquerai/deriv/internal/style"
)

var (
	evalAt     float64
	evalParams []string
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an expression at a value of x",
	Example: `
  drv eval "x^2+1" --at 3            # 10
  drv eval "a*sin[x]" --at 0.5 -p a=2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseBindings(evalParams)
		if err != nil {
			return err
		}

		e, err := parser.Parse(args[0])
		if err != nil {
			return reportError(cmd, err)
		}

		v, err := e.Evaluate(evalAt, params)
		if err != nil {
			return reportError(cmd, err)
		}

		format := viper.GetString("output")
		if format != "text" {
			resp, err := server.NewEvaluateResponse(args[0], evalAt, v)
			if err != nil {
				return reportError(cmd, err)
			}
			if printed, err := style.Print(cmd.OutOrStdout(), format, resp); printed {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatValue(v))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().Float64Var(&evalAt, "at", 0, "value of x")
	evalCmd.Flags().StringSliceVarP(&evalParams, "param", "p", nil, "parameter value as name=value (repeatable)")
}
