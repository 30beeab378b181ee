package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// returns a new welcome screen
func NewWelcome(client *Client) *Welcome {
	return &Welcome{
		client: client,
		commands: []Command{
			{Name: "ask", Description: "ask questions about the docs"},
			{Name: "status", Description: "check which corpus the server answers from"},
			{Name: "quit", Description: "exit askdocs"},
		},
	}
}

func (m *Welcome) Update(msg tea.Msg) (*Welcome, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			m.cursor = (m.cursor + len(m.commands) - 1) % len(m.commands)
		case "down", "j", "tab":
			m.cursor = (m.cursor + 1) % len(m.commands)
		case "enter":
			return m, m.run(m.commands[m.cursor].Name)
		case "q":
			return m, tea.Quit
		}

	case StatusMsg:
		m.status = msg.identity
	}

	return m, nil
}

func (m *Welcome) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("answers from your documentation"))
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("server: " + m.client.Endpoint()))
	b.WriteString("\n")

	corpus := "unknown"
	if m.status != "" {
		corpus = m.status
	}
	b.WriteString(infoStyle.Render("corpus: " + corpus))
	b.WriteString("\n\n")

	for i, cmd := range m.commands {
		style, marker := menuItemStyle, "  "
		if i == m.cursor {
			style, marker = menuItemSelectedStyle, "> "
		}

		b.WriteString(style.Render(marker + cmd.Name))
		b.WriteString(commandDescStyle.Render("- " + cmd.Description))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("up/down to move, enter to select, q or ctrl+c to quit."))

	return b.String()
}

func (m *Welcome) run(name string) tea.Cmd {
	switch name {
	case "ask":
		return func() tea.Msg { return EnterAskMsg{} }
	case "status":
		return m.client.StatusCmd()
	case "quit":
		return tea.Quit
	default:
		return func() tea.Msg {
			return ErrorMsg{err: fmt.Errorf("unknown command: %s", name)}
		}
	}
}
