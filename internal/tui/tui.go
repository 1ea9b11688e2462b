// Package tui is an interactive prompt that converts as you type.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/papapumpkin/when/internal/convert"
	"github.com/papapumpkin/when/internal/ui"
)

// Option configures the prompt.
type Option func(*settings)

type settings struct {
	colors  ui.ColorMode
	now     func() time.Time
	initial string
	progOpt []tea.ProgramOption
}

// WithColorMode selects when results are colored.
func WithColorMode(m ui.ColorMode) Option {
	return func(s *settings) { s.colors = m }
}

// WithInitial pre-fills the prompt.
func WithInitial(input string) Option {
	return func(s *settings) { s.initial = input }
}

// WithOutput directs TUI output to the given writer.
func WithOutput(w io.Writer) Option {
	return func(s *settings) { s.progOpt = append(s.progOpt, tea.WithOutput(w)) }
}

// WithInput reads key presses from r instead of the terminal.
func WithInput(r io.Reader) Option {
	return func(s *settings) { s.progOpt = append(s.progOpt, tea.WithInput(r)) }
}

// Run starts the prompt and blocks until the user quits or ctx is done.
func Run(ctx context.Context, conv *convert.Converter, local *time.Location, opts ...Option) error {
	s := settings{colors: ui.ColorAuto, now: time.Now}
	for _, o := range opts {
		o(&s)
	}
	m := newModel(conv, local, s)

	progOpts := append([]tea.ProgramOption{tea.WithContext(ctx)}, s.progOpt...)
	p := tea.NewProgram(m, progOpts...)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// resolveColors turns auto into a concrete mode based on the terminal,
// since the printer renders into strings rather than a terminal writer.
func resolveColors(m ui.ColorMode) ui.ColorMode {
	if m != ui.ColorAuto {
		return m
	}
	if lipgloss.ColorProfile() == termenv.Ascii {
		return ui.ColorNever
	}
	return ui.ColorAlways
}

func joinHelp(parts []string) string {
	return strings.Join(parts, " · ")
}
