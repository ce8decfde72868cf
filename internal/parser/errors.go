package parser

import (
	"fmt"
	"strings"
)

// ParseError reports malformed expression text. Offset is the byte offset of
// the offending character in Source.
type ParseError struct {
	Message    string          `json:"message"`
	Offset     int             `json:"offset"`
	Source     string          `json:"source"`
	Position   Position        `json:"position"`
	Suggestion string          `json:"suggestion,omitempty"`
	Operands   []string        `json:"operands,omitempty"`
	Operators  []StackOperator `json:"operators,omitempty"`
}

// StackOperator is an operator waiting on the operator stack when parsing
// failed.
type StackOperator struct {
	Op     string `json:"op"`
	Offset int    `json:"offset"`
}

func newParseError(source, message string, offset int) *ParseError {
	return &ParseError{
		Message:    message,
		Offset:     offset,
		Source:     source,
		Position:   ExtractPosition(source, offset),
		Suggestion: suggestionFor(message),
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	var result strings.Builder

	result.WriteString(fmt.Sprintf("Parse error at %s: %s", e.Position.String(), e.Message))

	if e.Suggestion != "" {
		result.WriteString(fmt.Sprintf("\nSuggestion: %s", e.Suggestion))
	}

	return result.String()
}

// Locate records where the expression came from, for errors raised while
// reading expressions out of a file.
func (e *ParseError) Locate(file string, line int) *ParseError {
	e.Position.File = file
	e.Position.Line = line
	return e
}

// Diagnostic renders the failing source line with a caret under the failing
// character. With debug set it also lists the operand and operator stacks.
func (e *ParseError) Diagnostic(debug bool) string {
	var b strings.Builder

	lineStart, line := e.sourceLine()
	b.WriteString(line)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", e.Offset-lineStart))
	b.WriteString("^here\n")

	if !debug {
		return b.String()
	}

	b.WriteString("Operand stack:\n")
	if len(e.Operands) == 0 {
		b.WriteString("  <empty>\n")
	}
	for i, operand := range e.Operands {
		b.WriteString(fmt.Sprintf("  %d = %s\n", i, operand))
	}

	b.WriteString("Operator stack:\n")
	if len(e.Operators) == 0 {
		b.WriteString("  <empty>\n")
		return b.String()
	}
	marks := []byte(strings.Repeat(" ", len(line)+1))
	for i, op := range e.Operators {
		b.WriteString(fmt.Sprintf("  %d = %s at %d\n", i, op.Op, op.Offset))
		if at := op.Offset - lineStart; at >= 0 && at < len(marks) {
			marks[at] = '^'
		}
	}
	b.WriteString(line)
	b.WriteByte('\n')
	b.WriteString(strings.TrimRight(string(marks), " "))
	b.WriteByte('\n')
	return b.String()
}

// sourceLine returns the line of Source holding Offset and where it starts.
func (e *ParseError) sourceLine() (int, string) {
	at := min(max(e.Offset, 0), len(e.Source))
	start := strings.LastIndexByte(e.Source[:at], '\n') + 1
	end := len(e.Source)
	if i := strings.IndexByte(e.Source[at:], '\n'); i >= 0 {
		end = at + i
	}
	return start, e.Source[start:end]
}

func suggestionFor(message string) string {
	switch {
	case strings.HasPrefix(message, "invalid character"):
		return "expressions use letters, digits, '.', ',', + - * / ^ and brackets ( ) [ ]"
	case strings.Contains(message, "function name"):
		return "call functions as name[argument], for example sin[x]"
	case strings.HasPrefix(message, "unexpected number"):
		return "write an operator between the two operands, for example x*2"
	case strings.Contains(message, "argument"):
		return "functions take one argument, or two as in log[value,base]"
	case strings.HasPrefix(message, "unexpected operator"):
		return "a sign may follow '(', '*', '/' or '^'; wrap signed operands in parentheses"
	}
	return ""
}

// MultiError represents multiple parsing or calculation errors
type MultiError struct {
	Errors []error `json:"errors"`
}

// Error implements the error interface for MultiError
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Multiple errors (%d):\n", len(e.Errors)))

	for i, err := range e.Errors {
		result.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}

	return result.String()
}

// Add adds an error to the MultiError
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (e *MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns the MultiError as an error if there are errors, nil otherwise
func (e *MultiError) ToError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}
