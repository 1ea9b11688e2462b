package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // cyan, times
	colorAccent  = lipgloss.Color("#FFD700") // gold, relative hints
	colorDanger  = lipgloss.Color("#FF5252") // red, errors
	colorMuted   = lipgloss.Color("#8C8C8C") // gray, labels and zone details
	colorWhite   = lipgloss.Color("#EEEEEE") // place names
)

// ColorMode selects when output is colored.
type ColorMode string

// Color modes accepted by --colors.
const (
	ColorAuto   ColorMode = "auto"
	ColorNever  ColorMode = "never"
	ColorAlways ColorMode = "always"
)

// styles are bound to one renderer so each writer gets its own color
// profile.
type styles struct {
	place    lipgloss.Style
	label    lipgloss.Style
	time     lipgloss.Style
	detail   lipgloss.Style
	relative lipgloss.Style
	err      lipgloss.Style
}

func newRenderer(r *lipgloss.Renderer, mode ColorMode) *lipgloss.Renderer {
	switch mode {
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	case ColorAlways:
		if r.ColorProfile() == termenv.Ascii {
			r.SetColorProfile(termenv.ANSI256)
		}
	}
	return r
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		place:    r.NewStyle().Foreground(colorWhite).Bold(true),
		label:    r.NewStyle().Foreground(colorMuted),
		time:     r.NewStyle().Foreground(colorPrimary).Bold(true),
		detail:   r.NewStyle().Foreground(colorMuted),
		relative: r.NewStyle().Foreground(colorAccent).Italic(true),
		err:      r.NewStyle().Foreground(colorDanger).Bold(true),
	}
}
