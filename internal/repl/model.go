package repl

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/rs/zerolog/log"

	"github.com/lacquerai/deriv/internal/algebra"
	"github.com/lacquerai/deriv/internal/parser"
	"github.com/lacquerai/deriv/internal/style"
)

// maxLines bounds the scrollback.
const maxLines = 500

// Store persists entered expressions.
type Store interface {
	Add(entry string) error
	Entries() []string
}

var (
	promptStyle = lipgloss.NewStyle().Foreground(style.AccentColor).Bold(true)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	arrowStyle  = lipgloss.NewStyle().Foreground(style.MutedColor)
	helpText    = "enter derive • ctrl+r derive again • ctrl+p parse • ctrl+d debug • ctrl+l clear • esc quit"
)

// Model is the interactive differentiation session.
type Model struct {
	input   textinput.Model
	store   Store
	history []string
	// position while walking history; len(history) means the draft
	cursor int
	draft  string

	lines  []string
	last   *algebra.Expression
	debug  bool
	height int
	width  int
}

// New creates a session. store may be nil, in which case history lives only
// in memory.
func New(store Store, debug bool) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "x*sin[x]"
	ti.Focus()

	m := Model{input: ti, store: store, debug: debug}
	if store != nil {
		m.history = store.Entries()
	}
	m.cursor = len(m.history)
	return m
}

// Run starts the session on the terminal.
func Run(store Store, debug bool) error {
	_, err := tea.NewProgram(New(store, debug)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			m.derive()
			return m, nil
		case "ctrl+r":
			m.recalc()
			return m, nil
		case "ctrl+p":
			m.parse()
			return m, nil
		case "ctrl+d":
			m.debug = !m.debug
			m.print(arrowStyle.Render(fmt.Sprintf("debug %s", onOff(m.debug))))
			return m, nil
		case "ctrl+l":
			m.lines = nil
			return m, nil
		case "up":
			m.walk(-1)
			return m, nil
		case "down":
			m.walk(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// derive parses the input and shows its derivative.
func (m *Model) derive() {
	e, ok := m.submit()
	if !ok {
		return
	}
	m.showDerivative(e)
}

// recalc differentiates the last result again.
func (m *Model) recalc() {
	if m.last == nil {
		m.print(style.WarningIcon() + " nothing to derive yet")
		return
	}
	m.print(promptStyle.Render("d/dx ") + style.HighlightExpression(m.last.String()))
	m.showDerivative(m.last)
}

// parse shows the canonical form of the input without differentiating.
func (m *Model) parse() {
	e, ok := m.submit()
	if !ok {
		return
	}
	m.last = e
	m.print(arrowStyle.Render("  = ") + style.HighlightExpression(e.String()))
}

func (m *Model) submit() (*algebra.Expression, bool) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	m.print(promptStyle.Render("> ") + style.HighlightExpression(text))
	m.remember(text)
	m.input.Reset()

	e, err := parser.Parse(text)
	if err != nil {
		m.printError(err)
		return nil, false
	}
	return e, true
}

func (m *Model) showDerivative(e *algebra.Expression) {
	d, err := e.Derivative()
	if err != nil {
		m.printError(err)
		return
	}
	m.last = d
	m.print(arrowStyle.Render("  → ") + style.HighlightExpression(d.String()))
}

func (m *Model) printError(err error) {
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		for _, line := range strings.Split(strings.TrimRight(parseErr.Diagnostic(m.debug), "\n"), "\n") {
			m.print("  " + style.MutedStyle.Render(line))
		}
		m.print("  " + style.ErrorIcon() + " " + style.ErrorStyle.Render(parseErr.Message))
		return
	}
	m.print("  " + style.ErrorIcon() + " " + style.ErrorStyle.Render(err.Error()))
}

func (m *Model) remember(text string) {
	if n := len(m.history); n == 0 || m.history[n-1] != text {
		m.history = append(m.history, text)
	}
	m.cursor = len(m.history)
	m.draft = ""

	if m.store == nil {
		return
	}
	if err := m.store.Add(text); err != nil {
		log.Warn().Err(err).Msg("Failed to save history")
	}
}

// walk moves through history; stepping past the newest entry restores the
// text being typed.
func (m *Model) walk(step int) {
	next := m.cursor + step
	if next < 0 || next > len(m.history) {
		return
	}
	if m.cursor == len(m.history) {
		m.draft = m.input.Value()
	}
	m.cursor = next

	if next == len(m.history) {
		m.input.SetValue(m.draft)
	} else {
		m.input.SetValue(m.history[next])
	}
	m.input.CursorEnd()
}

func (m *Model) print(line string) {
	m.lines = append(m.lines, line)
	if over := len(m.lines) - maxLines; over > 0 {
		m.lines = m.lines[over:]
	}
}

func (m Model) View() string {
	var b strings.Builder

	lines := m.lines
	// keep room for the input and help lines
	if m.height > 2 && len(lines) > m.height-2 {
		lines = lines[len(lines)-(m.height-2):]
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString(promptStyle.Render("> "))
	value := []rune(m.input.Value())
	pos := len(string(value[:min(m.input.Position(), len(value))]))
	b.WriteString(renderInput(string(value), pos))
	b.WriteByte('\n')

	help := helpText
	if m.debug {
		help += " • debug on"
	}
	b.WriteString(style.MutedStyle.Render(help))
	return b.String()
}

// renderInput highlights text and marks the cursor at byte offset pos.
func renderInput(text string, pos int) string {
	var b strings.Builder
	for _, tok := range parser.Highlight(text) {
		ts := style.TokenStyle(tok)
		end := tok.Offset + len(tok.Text)
		if pos < tok.Offset || pos >= end {
			b.WriteString(ts.Render(tok.Text))
			continue
		}
		at := pos - tok.Offset
		if at > 0 {
			b.WriteString(ts.Render(tok.Text[:at]))
		}
		_, size := utf8.DecodeRuneInString(tok.Text[at:])
		b.WriteString(cursorStyle.Render(tok.Text[at : at+size]))
		if at+size < len(tok.Text) {
			b.WriteString(ts.Render(tok.Text[at+size:]))
		}
	}
	if pos >= len(text) {
		b.WriteString(cursorStyle.Render(" "))
	}
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
