package tui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary    = lipgloss.Color("#00BFFF") // Cyan, prompt and accents
	colorDanger     = lipgloss.Color("#FF5252") // Red, errors
	colorMuted      = lipgloss.Color("#636363") // Gray, help and history
	colorMutedLight = lipgloss.Color("#8C8C8C") // Lighter gray, headers
	colorSurface    = lipgloss.Color("#1E1E2E") // Dark surface, title bar bg
	colorWhite      = lipgloss.Color("#EEEEEE") // Off-white, primary text
)

// Title bar.
var styleTitle = lipgloss.NewStyle().
	Background(colorSurface).
	Foreground(colorWhite).
	Bold(true).
	Padding(0, 1)

// Body styles.
var (
	stylePrompt  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(colorDanger)
	styleHint    = lipgloss.NewStyle().Foreground(colorMuted)
	styleHistory = lipgloss.NewStyle().Foreground(colorMutedLight)
)
