package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lacquerai/deriv/internal/parser"
	"github.com/lacquerai/deriv/internal/style"
)

var (
	formatFile  string
	formatDiff  bool
	formatCheck bool
)

// formatCmd represents the format command
var formatCmd = &cobra.Command{
	Use:   "format [expressions...]",
	Short: "Rewrite expressions in canonical form",
	Long: `Print the canonical rendering of each expression. Expressions come from the
arguments, or one per line from --file ("-" reads standard input).

--diff shows what canonicalization changed and --check fails when any input is
not already canonical, which suits pre-commit hooks and CI.`,
	Example: `
  drv format "x*2+3" "1+x^2"     # 2x+3, x^2+1
  drv format --file exprs.txt --diff
  drv format --check "2x+3"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs := args
		if formatFile != "" {
			lines, err := readExpressionLines(formatFile)
			if err != nil {
				return err
			}
			inputs = append(inputs, lines...)
		}
		if len(inputs) == 0 {
			return fmt.Errorf("no expressions given")
		}
		return runFormat(cmd, inputs)
	},
}

func init() {
	rootCmd.AddCommand(formatCmd)

	formatCmd.Flags().StringVarP(&formatFile, "file", "f", "", "read expressions from a file, one per line")
	formatCmd.Flags().BoolVar(&formatDiff, "diff", false, "show the difference between input and canonical form")
	formatCmd.Flags().BoolVar(&formatCheck, "check", false, "exit with an error if any input is not canonical")
}

// FormatResult pairs an input with its canonical rendering.
type FormatResult struct {
	Input     string `json:"input" yaml:"input"`
	Canonical string `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	Changed   bool   `json:"changed" yaml:"changed"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runFormat(cmd *cobra.Command, inputs []string) error {
	results := make([]FormatResult, 0, len(inputs))
	var errs parser.MultiError
	changed := 0

	for _, input := range inputs {
		result := FormatResult{Input: input}
		e, err := parser.Parse(input)
		if err != nil {
			result.Error = err.Error()
			errs.Add(fmt.Errorf("%q: %w", input, err))
		} else {
			result.Canonical = e.String()
			result.Changed = result.Canonical != strings.TrimSpace(input)
		}
		if result.Changed {
			changed++
		}
		results = append(results, result)
	}

	printed, err := style.Print(cmd.OutOrStdout(), viper.GetString("output"), results)
	if err != nil {
		return err
	}
	if !printed {
		w := cmd.OutOrStdout()
		for _, result := range results {
			switch {
			case result.Error != "":
				fmt.Fprintf(w, "%s %s\n", style.ErrorIcon(), result.Input)
			case formatDiff && result.Changed:
				fmt.Fprintln(w, renderDiff(strings.TrimSpace(result.Input), result.Canonical))
			case formatDiff:
				fmt.Fprintf(w, "%s %s\n", style.SuccessIcon(), style.HighlightExpression(result.Canonical))
			default:
				fmt.Fprintln(w, style.HighlightExpression(result.Canonical))
			}
		}
	}

	if err := errs.ToError(); err != nil {
		return err
	}
	if formatCheck && changed > 0 {
		return fmt.Errorf("%d of %d expression(s) not in canonical form", changed, len(inputs))
	}
	return nil
}

// renderDiff marks removed text as [-text-] and inserted text as {+text+}.
func renderDiff(from, to string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(from, to, false))

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString(style.ErrorStyle.Render("[-" + d.Text + "-]"))
		case diffmatchpatch.DiffInsert:
			b.WriteString(style.SuccessStyle.Render("{+" + d.Text + "+}"))
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// readExpressionLines returns the non-empty lines of path that are not
// comments. "-" reads standard input.
func readExpressionLines(path string) ([]string, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		f, err = os.Open(path) // #nosec G304 - path is given by the user
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
		defer f.Close()
	}

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return lines, nil
}
