package repl

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	entries []string
}

func (s *memoryStore) Add(entry string) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memoryStore) Entries() []string {
	return append([]string(nil), s.entries...)
}

func press(m Model, key tea.KeyPressMsg) Model {
	next, _ := m.Update(key)
	return next.(Model)
}

var (
	enter = tea.KeyPressMsg{Code: tea.KeyEnter}
	up    = tea.KeyPressMsg{Code: tea.KeyUp}
	down  = tea.KeyPressMsg{Code: tea.KeyDown}
)

func ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

// plain strips styling so assertions see the text a user reads.
func plain(m Model) []string {
	out := make([]string, len(m.lines))
	for i, line := range m.lines {
		out[i] = ansi.Strip(line)
	}
	return out
}

func submit(m Model, text string, key tea.KeyPressMsg) Model {
	m.input.SetValue(text)
	return press(m, key)
}

func TestDerive(t *testing.T) {
	store := &memoryStore{}
	m := New(store, false)

	m = submit(m, "x*sin[x]", enter)
	assert.Equal(t, []string{"> x*sin[x]", "  → sin[x]+x*cos[x]"}, plain(m))
	assert.Empty(t, m.input.Value())
	assert.Equal(t, []string{"x*sin[x]"}, store.entries)

	m = press(m, ctrl('l'))
	m = submit(m, "x^3", enter)
	m = press(m, ctrl('r'))
	assert.Equal(t, []string{"> x^3", "  → 3x^2", "d/dx 3x^2", "  → 6x"}, plain(m))
	assert.Equal(t, []string{"x*sin[x]", "x^3"}, store.entries)
}

func TestParseOnly(t *testing.T) {
	m := submit(New(nil, false), "x * 2 + 3", ctrl('p'))
	assert.Equal(t, []string{"> x * 2 + 3", "  = 2x+3"}, plain(m))
	require.NotNil(t, m.last)

	m = press(m, ctrl('r'))
	assert.Equal(t, "  → 2", plain(m)[len(m.lines)-1])
}

func TestErrors(t *testing.T) {
	m := submit(New(nil, false), "2++3", enter)
	assert.Equal(t, []string{"> 2++3", "  2++3", "    ^here", "  ✗ unexpected operator +"}, plain(m))

	m = press(m, ctrl('l'))
	assert.Empty(t, m.lines)

	m = press(m, ctrl('d'))
	assert.True(t, m.debug)
	m = submit(m, "2++3", enter)
	lines := plain(m)
	assert.Contains(t, lines, "  Operand stack:")
	assert.Contains(t, lines, "    0 = + at 1")

	m = press(m, ctrl('l'))
	m = submit(m, "abs[x]", enter)
	assert.Equal(t, `  ✗ function "abs" is not defined`, plain(m)[1])

	m = press(New(nil, false), ctrl('r'))
	assert.Equal(t, []string{"⚠ nothing to derive yet"}, plain(m))
}

func TestHistory(t *testing.T) {
	store := &memoryStore{entries: []string{"x^2", "sin[x]"}}
	m := New(store, false)

	m.input.SetValue("draft")
	m = press(m, up)
	assert.Equal(t, "sin[x]", m.input.Value())
	m = press(m, up)
	assert.Equal(t, "x^2", m.input.Value())
	m = press(m, up)
	assert.Equal(t, "x^2", m.input.Value())
	m = press(m, down)
	m = press(m, down)
	assert.Equal(t, "draft", m.input.Value())

	m = submit(m, "sin[x]", enter)
	m = submit(m, "sin[x]", enter)
	assert.Equal(t, []string{"x^2", "sin[x]"}, m.history)
}

func TestQuit(t *testing.T) {
	for _, key := range []tea.KeyPressMsg{{Code: tea.KeyEscape}, ctrl('c')} {
		_, cmd := New(nil, false).Update(key)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestView(t *testing.T) {
	m := New(nil, false)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 4})
	m = next.(Model)

	for _, in := range []string{"x^2", "x^3", "x^4"} {
		m = submit(m, in, enter)
	}
	m.input.SetValue("sin[x]")
	m.input.CursorEnd()

	view := ansi.Strip(m.View())
	lines := strings.Split(view, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "> x^4", lines[0])
	assert.Equal(t, "  → 4x^3", lines[1])
	assert.Equal(t, "> sin[x] ", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "enter derive"))
}

func TestRenderInput(t *testing.T) {
	assert.Equal(t, "sin[x] ", ansi.Strip(renderInput("sin[x]", 6)))
	assert.Equal(t, "sin[x]", ansi.Strip(renderInput("sin[x]", 1)))
	assert.Equal(t, " ", ansi.Strip(renderInput("", 0)))
}
