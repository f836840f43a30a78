package tui

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all views.
const (
	ColorHeader    = lipgloss.Color("12")
	ColorLabel     = lipgloss.Color("14")
	ColorValue     = lipgloss.Color("15")
	ColorMuted     = lipgloss.Color("8")
	ColorOK        = lipgloss.Color("10")
	ColorWarning   = lipgloss.Color("11")
	ColorCritical  = lipgloss.Color("9")
	ColorHighlight = lipgloss.Color("13")
	ColorBorder    = lipgloss.Color("8")
)

// Shared lipgloss styles.
//
//nolint:gochecknoglobals // Lipgloss styles are package-level by convention.
var (
	HeaderStyle = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	LabelStyle  = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle  = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	SubtleStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	InfoStyle   = lipgloss.NewStyle().Foreground(ColorLabel)

	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	CriticalStyle = lipgloss.NewStyle().Foreground(ColorCritical).Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorHeader).
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(ColorBorder).
				BorderBottom(true)

	TableSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorHighlight).
				Bold(true)
)

// Keyboard shortcuts shared by all views.
const (
	keyQuit       = "q"
	keyCtrlC      = "ctrl+c"
	keyEnter      = "enter"
	keyEsc        = "esc"
	keyPause      = "p"
	keySort       = "s"
	keyInvalidate = "i"
	keyClear      = "x"
)

// Default display dimensions used before the first WindowSizeMsg arrives.
const (
	defaultWidth  = 100
	defaultHeight = 30

	borderPadding  = 2
	minTableHeight = 5
)
