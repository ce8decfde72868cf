package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/lacquerai/deriv/internal/parser"
	"github.com/lacquerai/deriv/internal/server"
	"github.com/lacquerai/deriv/internal/style"
)

var batchShowAll bool

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <files...>",
	Short: "Differentiate every expression in one or more files",
	Long: `Parse and differentiate the expressions listed in files.

Plain files hold one expression per line; blank lines and lines starting with #
are skipped. YAML files (.yaml, .yml) hold an expressions list whose entries are
either strings or objects with expr and order:

  expressions:
    - x^2
    - expr: sin[x]
      order: 2

Failures are reported with their file position and the command exits non-zero
when any entry fails.`,
	Example: `
  drv batch exprs.txt                    # Differentiate every line
  drv batch a.yaml b.txt --show-all      # Print successful results as well
  drv batch exprs.yaml --output json     # JSON output for CI/CD`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().BoolVar(&batchShowAll, "show-all", false, "show all results, including successful ones")
}

// BatchEntry is one expression read from a batch file.
type BatchEntry struct {
	Expr  string `yaml:"expr"`
	Order int    `yaml:"order"`

	line   int
	column int
}

// UnmarshalYAML accepts either a plain string or an {expr, order} mapping.
func (e *BatchEntry) UnmarshalYAML(node *yaml.Node) error {
	target := node
	if node.Kind == yaml.ScalarNode {
		e.Expr = node.Value
	} else {
		type plain BatchEntry
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*e = BatchEntry(p)
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "expr" {
				target = node.Content[i+1]
			}
		}
	}

	e.line, e.column = target.Line, target.Column
	if target.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		e.column++
	}
	return nil
}

type batchFile struct {
	Expressions []BatchEntry `yaml:"expressions"`
}

// BatchResult represents the outcome of one entry
type BatchResult struct {
	File        string   `json:"file" yaml:"file"`
	Line        int      `json:"line" yaml:"line"`
	Expression  string   `json:"expression" yaml:"expression"`
	Derivatives []string `json:"derivatives,omitempty" yaml:"derivatives,omitempty"`
	Error       string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchSummary represents the summary of all batch results
type BatchSummary struct {
	Total      int           `json:"total" yaml:"total"`
	Succeeded  int           `json:"succeeded" yaml:"succeeded"`
	Failed     int           `json:"failed" yaml:"failed"`
	DurationMS int64         `json:"duration_ms" yaml:"duration_ms"`
	Results    []BatchResult `json:"results" yaml:"results"`

	duration time.Duration
}

func runBatch(cmd *cobra.Command, files []string) error {
	start := time.Now()
	text := viper.GetString("output") == "text"
	showProgress := text && !viper.GetBool("quiet")

	var errs parser.MultiError
	summary := BatchSummary{}

	spin := style.NewSpinner(cmd.ErrOrStderr())
	for _, file := range files {
		if showProgress {
			spin.SetSuffix(fmt.Sprintf(" %s", file))
			spin.Start()
		}

		results, err := batchSingleFile(file, &errs)
		if showProgress {
			spin.Stop()
		}
		if err != nil {
			return err
		}

		for _, result := range results {
			if result.Error == "" {
				summary.Succeeded++
			} else {
				summary.Failed++
			}
			if text {
				printBatchResult(cmd, result)
			}
		}
		summary.Results = append(summary.Results, results...)
	}

	summary.Total = len(summary.Results)
	summary.duration = time.Since(start)
	summary.DurationMS = summary.duration.Milliseconds()

	printed, err := style.Print(cmd.OutOrStdout(), viper.GetString("output"), summary)
	if err != nil {
		return err
	}
	if !printed {
		printBatchSummary(cmd, summary)
	}

	return errs.ToError()
}

func batchSingleFile(file string, errs *parser.MultiError) ([]BatchResult, error) {
	data, err := os.ReadFile(file) // #nosec G304 - path is given by the user
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", file, err)
	}

	entries, err := readBatchEntries(file, data)
	if err != nil {
		return nil, err
	}

	results := make([]BatchResult, 0, len(entries))
	for _, entry := range entries {
		result := BatchResult{File: file, Line: entry.line, Expression: entry.Expr}

		order := entry.Order
		if order == 0 {
			order = viper.GetInt("derive.order")
		}

		e, err := parser.Parse(entry.Expr)
		if err == nil {
			var resp server.DeriveResponse
			resp, err = server.NewDeriveResponse(entry.Expr, e, order)
			result.Derivatives = resp.Derivatives
		}

		if err != nil {
			var parseErr *parser.ParseError
			if errors.As(err, &parseErr) {
				pos := parseErr.Position
				parseErr.Locate(file, entry.line+pos.Line-1)
				if pos.Line == 1 {
					parseErr.Position.Column = entry.column + parseErr.Offset
				}
				context := parser.ExtractContext(string(data), parseErr.Position, 1)
				result.Error = parseErr.Error() + "\n" + context
			} else {
				result.Error = fmt.Sprintf("%s:%d: %s", file, entry.line, err)
			}
			errs.Add(err)
		}

		log.Debug().
			Str("file", file).
			Int("line", entry.line).
			Bool("ok", result.Error == "").
			Msg("Processed batch entry")

		results = append(results, result)
	}
	return results, nil
}

func readBatchEntries(file string, data []byte) ([]BatchEntry, error) {
	switch filepath.Ext(file) {
	case ".yaml", ".yml":
		var doc batchFile
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid batch file %s: %w", file, err)
		}
		return doc.Expressions, nil
	}

	var entries []BatchEntry
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for line := 1; scanner.Scan(); line++ {
		raw := scanner.Text()
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		entries = append(entries, BatchEntry{Expr: raw, line: line, column: 1})
	}
	return entries, scanner.Err()
}

func printBatchResult(cmd *cobra.Command, result BatchResult) {
	w := cmd.OutOrStdout()
	if result.Error != "" {
		fmt.Fprintf(w, "%s %s\n", style.ErrorIcon(), style.MutedStyle.Render(fmt.Sprintf("%s:%d", result.File, result.Line)))
		for _, line := range strings.Split(strings.TrimRight(result.Error, "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
		return
	}
	if batchShowAll || viper.GetBool("verbose") {
		fmt.Fprintf(w, "%s %s → %s\n", style.SuccessIcon(),
			style.HighlightExpression(strings.TrimSpace(result.Expression)),
			style.HighlightExpression(strings.Join(result.Derivatives, ", ")))
	}
}

func printBatchSummary(cmd *cobra.Command, summary BatchSummary) {
	if viper.GetBool("quiet") {
		return
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	if summary.Failed == 0 {
		style.Success(w, fmt.Sprintf("All %d expression(s) differentiated (%v)", summary.Total, summary.duration.Round(time.Millisecond)))
	} else {
		style.Error(w, fmt.Sprintf("%d of %d expression(s) failed (%v)", summary.Failed, summary.Total, summary.duration.Round(time.Millisecond)))
	}

	if viper.GetBool("verbose") {
		fmt.Fprintln(w)
		rows := make([][]string, len(summary.Results))
		for i, result := range summary.Results {
			status := "ok"
			if result.Error != "" {
				status = "failed"
			}
			rows[i] = []string{fmt.Sprintf("%s:%d", result.File, result.Line), strings.TrimSpace(result.Expression), status}
		}
		printTable(w, []string{"Location", "Expression", "Status"}, rows)
	}
}
