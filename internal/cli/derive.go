package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lacquerai/deriv/internal/parser"
	"github.com/lacquerai/deriv/internal/server"
	"github.com/lacquerai/deriv/internal/style"
)

var (
	deriveOrder  int
	deriveAt     float64
	deriveParams []string
)

// deriveCmd represents the derive command
var deriveCmd = &cobra.Command{
	Use:     "derive <expression>",
	Aliases: []string{"diff", "d"},
	Short:   "Differentiate an expression with respect to x",
	Long: `Compute the derivative of an expression with respect to x.

With --order n every successive derivative up to the n-th is printed. With --at
each derivative is also evaluated at that value of x; parameters other than x
are bound with --param.`,
	Example: `
  drv derive "x*sin[x]"                 # sin[x]+x*cos[x]
  drv d "x^4" -n 3                      # 4x^3, 12x^2, 24x
  drv derive "a*x^2" --at 2 -p a=3      # 2ax = 12`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDerive(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(deriveCmd)

	deriveCmd.Flags().IntVarP(&deriveOrder, "order", "n", 0, "number of successive derivatives (default derive.order, 1)")
	deriveCmd.Flags().Float64Var(&deriveAt, "at", 0, "evaluate each derivative at this value of x")
	deriveCmd.Flags().StringSliceVarP(&deriveParams, "param", "p", nil, "parameter value as name=value (repeatable)")
}

// deriveOutput is a derive response with optional point values.
type deriveOutput struct {
	server.DeriveResponse `yaml:",inline"`

	At     *float64  `json:"at,omitempty" yaml:"at,omitempty"`
	Values []float64 `json:"values,omitempty" yaml:"values,omitempty"`
}

func runDerive(cmd *cobra.Command, text string) error {
	order := deriveOrder
	if order == 0 {
		order = viper.GetInt("derive.order")
	}
	if order < 1 || order > server.MaxOrder {
		return fmt.Errorf("order must be between 1 and %d", server.MaxOrder)
	}

	params, err := parseBindings(deriveParams)
	if err != nil {
		return err
	}

	e, err := parser.Parse(text)
	if err != nil {
		return reportError(cmd, err)
	}

	ds, err := e.NthDerivative(order)
	if err != nil {
		return reportError(cmd, err)
	}
	out := deriveOutput{DeriveResponse: server.DerivativesResponse(text, e, ds)}
	format := viper.GetString("output")

	if cmd.Flags().Changed("at") {
		at := deriveAt
		out.At = &at
		for _, d := range ds {
			v, err := d.Evaluate(at, params)
			if err == nil && format != "text" {
				err = server.CheckFinite(d.String(), at, v)
			}
			if err != nil {
				return reportError(cmd, err)
			}
			out.Values = append(out.Values, v)
		}
	}

	if printed, err := style.Print(cmd.OutOrStdout(), format, out); printed {
		return err
	}

	w := cmd.OutOrStdout()
	for i, d := range out.Derivatives {
		line := style.HighlightExpression(d)
		if order > 1 {
			line = style.MutedStyle.Render(derivativeLabel(i+1)) + line
		}
		if out.At != nil {
			line += style.MutedStyle.Render(fmt.Sprintf("  (x=%s: ", formatValue(*out.At))) +
				style.AccentStyle.Render(formatValue(out.Values[i])) + style.MutedStyle.Render(")")
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// derivativeLabel renders f', f'' and so on, padded to line up.
func derivativeLabel(n int) string {
	label := "f" + strings.Repeat("'", n)
	if n > 3 {
		label = fmt.Sprintf("f(%d)", n)
	}
	return fmt.Sprintf("%-6s", label)
}
