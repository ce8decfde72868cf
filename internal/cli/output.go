package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lacquerai/deriv/internal/algebra"
	"github.com/lacquerai/deriv/internal/parser"
	"github.com/lacquerai/deriv/internal/server"
	"github.com/lacquerai/deriv/internal/style"
)

// printTable outputs data in a human-readable table format
func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	cell := func(i int, text string) string {
		return text + strings.Repeat(" ", widths[i]-lipgloss.Width(text)+2)
	}

	var b strings.Builder
	for i, header := range headers {
		b.WriteString(cell(i, header))
	}
	fmt.Fprintln(w, style.TitleStyle.Render(strings.TrimRight(b.String(), " ")))

	b.Reset()
	for i := range headers {
		b.WriteString(cell(i, strings.Repeat("-", widths[i])))
	}
	fmt.Fprintln(w, style.MutedStyle.Render(strings.TrimRight(b.String(), " ")))

	for _, row := range rows {
		b.Reset()
		for i, text := range row {
			if i < len(widths) {
				b.WriteString(cell(i, text))
			}
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

// reportError writes the structured error for json/yaml output, or the
// caret diagnostic of a parse error for text output, and returns err for
// the command to fail with.
func reportError(cmd *cobra.Command, err error) error {
	debug := viper.GetBool("debug")
	if printed, printErr := style.Print(cmd.OutOrStdout(), viper.GetString("output"), server.NewErrorResponse(err, debug)); printed {
		if printErr != nil {
			return printErr
		}
		return err
	}

	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		w := cmd.ErrOrStderr()
		for _, line := range strings.Split(strings.TrimRight(parseErr.Diagnostic(debug), "\n"), "\n") {
			fmt.Fprintln(w, style.MutedStyle.Render(line))
		}
		if parseErr.Suggestion != "" {
			fmt.Fprint(w, style.RenderSuggestion(parseErr.Suggestion, nil))
		}
	}
	return err
}

// parseBindings reads name=value pairs given with --param.
func parseBindings(pairs []string) (algebra.Bindings, error) {
	bindings := make(algebra.Bindings, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || len(name) != 1 || !isParameterName(name[0]) {
			return nil, fmt.Errorf("invalid parameter %q (expected a=1.5)", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for parameter %s: %w", name, err)
		}
		bindings[name] = v
	}
	return bindings, nil
}

func isParameterName(c byte) bool {
	return ((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) && string(c) != algebra.VariableName
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
