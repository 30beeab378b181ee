package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// creates the app for the server at endpoint
func NewApp(endpoint string) *Model {
	client := NewClient(endpoint)

	return &Model{
		state:   StateWelcome,
		client:  client,
		welcome: NewWelcome(client),
		ask:     NewAskModel(client),
	}
}

func (m *Model) Init() tea.Cmd {
	return m.client.StatusCmd()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			// on the ask screen ctrl+c goes back to welcome
			if m.state == StateAsk {
				m.state = StateWelcome
				return m, nil
			}
			return m, tea.Quit
		}

		// any key dismisses an error
		if m.err != nil {
			m.err = nil
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// the ask screen keeps its layout even while hidden
		m.ask, _ = m.ask.Update(msg)
		return m, nil

	case ErrorMsg:
		m.err = msg.err
		return m, nil

	case EnterAskMsg:
		m.state = StateAsk
		return m, m.ask.Init()

	case AnswerMsg, AnswerErrorMsg:
		// answers land on the ask screen even if the user went back
		var cmd tea.Cmd
		m.ask, cmd = m.ask.Update(msg)
		return m, cmd
	}

	switch m.state {
	case StateWelcome:
		var cmd tea.Cmd
		m.welcome, cmd = m.welcome.Update(msg)
		return m, cmd

	case StateAsk:
		var cmd tea.Cmd
		m.ask, cmd = m.ask.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

func (m *Model) View() string {
	if m.err != nil {
		return errorView(m.err)
	}

	switch m.state {
	case StateWelcome:
		return m.welcome.View()

	case StateAsk:
		return m.ask.View()

	default:
		return "Unknown state"
	}
}

func errorView(err error) string {
	return fmt.Sprintf("\n  Error: %v\n\n  Press any key to continue, Ctrl+C to exit\n", err)
}
