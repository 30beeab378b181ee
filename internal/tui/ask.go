package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const (
	searchPrefix = "/search "
	// rows taken by the header, input box and status line
	chromeHeight = 8
)

// returns a new question/answer screen
func NewAskModel(client *Client) *AskModel {
	ti := textinput.New()
	ti.Placeholder = "ask a question about the docs..."
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 80
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorLightGray)
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorWhite)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorGray)

	return &AskModel{
		client:  client,
		input:   ti,
		spinner: sp,
	}
}

func (m *AskModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *AskModel) Update(msg tea.Msg) (*AskModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			query := strings.TrimSpace(m.input.Value())
			if query == "" || m.isFetching {
				return m, nil
			}

			m.isFetching = true
			m.input.SetValue("")

			if rest, ok := strings.CutPrefix(query, searchPrefix); ok {
				return m, tea.Batch(m.spinner.Tick, m.client.SearchCmd(strings.TrimSpace(rest)))
			}
			return m, tea.Batch(m.spinner.Tick, m.client.AskCmd(query))

		case "ctrl+l":
			m.input.SetValue("")
			m.history = nil
			m.isFetching = false
			m.refresh()
			return m, nil
		}

	case AnswerMsg:
		m.isFetching = false
		m.history = append(m.history, Exchange{Question: msg.question, Answer: msg.answer})
		m.shouldScrollBottom = true
		m.refresh()
		m.input.Focus()
		return m, nil

	case AnswerErrorMsg:
		m.isFetching = false
		m.history = append(m.history, Exchange{Question: msg.question, Err: msg.err})
		m.shouldScrollBottom = true
		m.refresh()
		m.input.Focus()
		return m, nil

	case spinner.TickMsg:
		if m.isFetching {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *AskModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-10, 10)

	vpHeight := max(height-chromeHeight, 3)

	if !m.ready {
		m.viewport = viewport.New(width-4, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width - 4
		m.viewport.Height = vpHeight
	}

	// word wrap depends on the width, so the renderer is rebuilt
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-8, 20)),
	)
	if err == nil {
		m.renderer = renderer
	}

	m.refresh()
}

// re-renders the conversation into the viewport
func (m *AskModel) refresh() {
	if !m.ready {
		return
	}

	m.viewport.SetContent(m.renderHistory())

	if m.shouldScrollBottom {
		m.viewport.GotoBottom()
		m.shouldScrollBottom = false
	}
}

func (m *AskModel) renderHistory() string {
	if len(m.history) == 0 {
		return infoStyle.Render("ready! ask a question below and press enter. prefix with /search to see the raw sections.")
	}

	var b strings.Builder

	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n")
		}

		b.WriteString(questionStyle.Render("Q: " + ex.Question))
		b.WriteString("\n")

		if ex.Err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", ex.Err)))
			b.WriteString("\n")
			continue
		}

		b.WriteString(m.renderMarkdown(ex.Answer))
	}

	return b.String()
}

func (m *AskModel) renderMarkdown(md string) string {
	if m.renderer == nil {
		return md + "\n"
	}

	out, err := m.renderer.Render(md)
	if err != nil {
		return md + "\n"
	}
	return out
}

func (m *AskModel) View() string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorWhite).
		Render("ASK")

	help := lipgloss.NewStyle().
		Foreground(colorGray).
		Render("[Enter: Send] [Ctrl+L: Clear] [Ctrl+C: Back]")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left,
		header,
		strings.Repeat(" ", max(0, m.width-lipgloss.Width(header)-lipgloss.Width(help)-2)),
		help,
	))
	b.WriteString("\n\n")

	if m.ready {
		b.WriteString(borderStyle.Width(m.width - 4).Render(m.viewport.View()))
	} else {
		b.WriteString(m.renderHistory())
	}
	b.WriteString("\n")

	b.WriteString(borderStyle.Width(m.width - 4).Padding(0, 1).Render(m.input.View()))
	b.WriteString("\n")

	if m.isFetching {
		b.WriteString(infoStyle.Render(m.spinner.View() + " waiting for the server..."))
	}

	return b.String()
}

func (m *AskModel) History() []Exchange {
	return m.history
}
