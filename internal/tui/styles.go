package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorAccent    = lipgloss.Color("#5FAFD7")
	colorRed       = lipgloss.Color("#FF5555")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginTop(1)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorLightGray).MarginBottom(1)

	menuItemStyle         = lipgloss.NewStyle().Foreground(colorLightGray)
	menuItemSelectedStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	commandDescStyle      = lipgloss.NewStyle().Foreground(colorGray).PaddingLeft(1)

	// conversation box and input box on the ask screen
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorDarkGray)

	questionStyle = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(colorGray).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(colorDarkGray).Italic(true).MarginTop(1)
)

const logo = `
   ____ ______/ /______/ /___  __________
  / __ '/ ___/ //_/ __  / __ \/ ___/ ___/
 / /_/ (__  ) ,< / /_/ / /_/ / /__(__  )
 \__,_/____/_/|_|\__,_/\____/\___/____/
`
