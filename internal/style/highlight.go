package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"github.com/lacquerai/deriv/internal/parser"
)

var (
	NumberStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F78C6C"))
	VariableStyle  = lipgloss.NewStyle().Foreground(PrimaryTextColor).Bold(true)
	ParameterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C3E88D"))
	FunctionStyle  = lipgloss.NewStyle().Foreground(InfoColor)
	OperatorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#89DDFF"))

	// bracket colors cycle with nesting depth
	bracketStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(WarningColor),
		lipgloss.NewStyle().Foreground(AccentColor),
		lipgloss.NewStyle().Foreground(SuccessColor),
	}

	TokenErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor).Underline(true)
)

// TokenStyle returns the style for a highlighted token.
func TokenStyle(tok parser.Token) lipgloss.Style {
	switch tok.Kind {
	case parser.TokenNumber:
		return NumberStyle
	case parser.TokenVariable:
		return VariableStyle
	case parser.TokenParameter:
		return ParameterStyle
	case parser.TokenFunction:
		return FunctionStyle
	case parser.TokenOperator, parser.TokenComma:
		return OperatorStyle
	case parser.TokenBracket:
		return bracketStyles[tok.Depth%len(bracketStyles)]
	case parser.TokenError:
		return TokenErrorStyle
	}
	return lipgloss.NewStyle()
}

// HighlightExpression renders text with syntax colors.
func HighlightExpression(text string) string {
	var b strings.Builder
	for _, tok := range parser.Highlight(text) {
		b.WriteString(TokenStyle(tok).Render(tok.Text))
	}
	return b.String()
}
