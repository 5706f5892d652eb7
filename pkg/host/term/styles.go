package term

import "github.com/charmbracelet/lipgloss"

// Color Palette
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // focused window, header
	coralPink   = lipgloss.Color("#FFCCCB") // window titles
	mintGreen   = lipgloss.Color("#A8E6CF") // notifications, flags that are on
	mutedGray   = lipgloss.Color("#6B7280") // secondary text, unfocused borders
	brightWhite = lipgloss.Color("#F9FAFB")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(coralPink).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	valueStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	onStyle = lipgloss.NewStyle().
		Foreground(mintGreen)

	noticeStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Italic(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	windowStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedGray).
			Padding(0, 1).
			MarginRight(1)

	focusedWindowStyle = windowStyle.
				BorderForeground(salmonPink)

	vanishedWindowStyle = windowStyle.
				BorderStyle(lipgloss.HiddenBorder()).
				Faint(true)

	trayStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(mutedGray).
			MarginTop(1)

	disabledItemStyle = lipgloss.NewStyle().
				Foreground(mutedGray).
				Italic(true)
)
