package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lacquerai/deriv/internal/server"
	"github.com/lacquerai/deriv/internal/style"
)

// functionsCmd represents the functions command
var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the built-in functions",
	Long: `List the functions that can be called with square brackets, with the
derivative rule each one follows. Functions without a rule can be evaluated but
not differentiated.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp := server.NewFunctionsResponse()
		if printed, err := style.Print(cmd.OutOrStdout(), viper.GetString("output"), resp); printed {
			return err
		}

		rows := make([][]string, 0, len(resp.Functions))
		for _, fn := range resp.Functions {
			derivative := fn.Derivative
			if derivative == "" {
				derivative = "-"
			}
			rows = append(rows, []string{fn.Name + "[x]", derivative, fn.Description})
		}
		printTable(cmd.OutOrStdout(), []string{"Function", "Derivative", "Description"}, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(functionsCmd)
}
