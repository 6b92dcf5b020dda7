package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha subset — true-color hex values
// https://catppuccin.com/palette

const (
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(colorMauve).Bold(true)

	activeViewStyle = lipgloss.NewStyle().
			Background(colorSurface0).
			Foreground(colorMauve).
			Bold(true).
			Padding(0, 1)
	inactiveViewStyle = lipgloss.NewStyle().
				Background(colorMantle).
				Foreground(colorOverlay1).
				Padding(0, 1)

	labelStyle    = lipgloss.NewStyle().Foreground(colorOverlay1)
	valueStyle    = lipgloss.NewStyle().Foreground(colorPeach)
	selectedStyle = lipgloss.NewStyle().Foreground(colorLavender).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorSubtext0)

	okStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	warnStyle = lipgloss.NewStyle().Foreground(colorYellow)
	errStyle  = lipgloss.NewStyle().Foreground(colorRed)

	sliderOnStyle  = lipgloss.NewStyle().Foreground(colorTeal)
	sliderOffStyle = lipgloss.NewStyle().Foreground(colorSurface1)
	barStyle       = lipgloss.NewStyle().Foreground(colorBlue)
	barActiveStyle = lipgloss.NewStyle().Foreground(colorMauve)

	helpKeyStyle  = lipgloss.NewStyle().Foreground(colorMauve).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorOverlay1)
)
