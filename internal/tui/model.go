package tui

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/papapumpkin/when/internal/convert"
	"github.com/papapumpkin/when/internal/expr"
	"github.com/papapumpkin/when/internal/ui"
)

// maxHistory bounds the number of kept expressions.
const maxHistory = 50

// msgTick drives the refresh of relative results.
type msgTick struct{ Time time.Time }

type model struct {
	conv    *convert.Converter
	local   *time.Location
	printer *ui.Printer
	now     func() time.Time
	keys    keyMap
	input   textinput.Model

	result *convert.Result
	err    error

	history []string
	histPos int
	width   int
}

func newModel(conv *convert.Converter, local *time.Location, s settings) model {
	ti := textinput.New()
	ti.Prompt = "▸ "
	ti.Placeholder = "5pm in vienna -> tokyo"
	ti.CharLimit = 256
	ti.Focus()

	m := model{
		conv:    conv,
		local:   local,
		printer: ui.New(io.Discard, io.Discard, resolveColors(s.colors)),
		now:     s.now,
		keys:    defaultKeyMap(),
		input:   ti,
	}
	if s.initial != "" {
		m.input.SetValue(s.initial)
		m.recompute()
	}
	return m
}

// Init starts the blinking cursor and the refresh timer.
func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd())
}

// tickCmd returns a command that sends a tick every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return msgTick{Time: t}
	})
}

// Update handles all messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case msgTick:
		if m.result != nil && m.result.IsRelative {
			m.recompute()
		}
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		m.remember(m.input.Value())
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		if m.histPos > 0 {
			m.histPos--
			m.input.SetValue(m.history[m.histPos])
			m.input.CursorEnd()
			m.recompute()
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		if m.histPos < len(m.history) {
			m.histPos++
			value := ""
			if m.histPos < len(m.history) {
				value = m.history[m.histPos]
			}
			m.input.SetValue(value)
			m.input.CursorEnd()
			m.recompute()
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.input.Reset()
		m.recompute()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.recompute()
	}
	return m, cmd
}

// remember appends a non-empty input to the history, skipping repeats of the
// newest entry.
func (m *model) remember(input string) {
	input = strings.TrimSpace(input)
	if input != "" && (len(m.history) == 0 || m.history[len(m.history)-1] != input) {
		m.history = append(m.history, input)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
	}
	m.histPos = len(m.history)
}

func (m *model) recompute() {
	input := m.input.Value()
	if strings.TrimSpace(input) == "" {
		m.result, m.err = nil, nil
		return
	}
	m.result, m.err = m.conv.ConvertAt(input, m.local, m.now())
}

// View renders the prompt, the current result and the help line.
func (m model) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("when"))
	b.WriteString("\n\n")
	b.WriteString(stylePrompt.Render(m.input.View()))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styleError.Render(m.err.Error()))
		b.WriteByte('\n')
		var perr *expr.ParseError
		if errors.As(m.err, &perr) {
			for _, line := range strings.Split(perr.Caret(), "\n") {
				b.WriteString(styleHint.Render("  " + line))
				b.WriteByte('\n')
			}
		}
	case m.result != nil:
		b.WriteString(m.printer.FormatLong(m.result))
	default:
		b.WriteString(styleHint.Render("type an expression such as \"noon tomorrow in new york -> vienna\""))
		b.WriteByte('\n')
	}

	if n := len(m.history); n > 0 {
		b.WriteByte('\n')
		for _, h := range m.history[max(n-5, 0):] {
			b.WriteString(styleHistory.Render("  " + h))
			b.WriteByte('\n')
		}
	}

	b.WriteByte('\n')
	b.WriteString(styleHint.Render(m.keys.help()))
	return b.String()
}
