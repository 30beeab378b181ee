package main

import (
	"fmt"
	"os"

	"codeberg.org/askdocs/server/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	endpoint := os.Getenv("ASKDOCS_API_ENDPOINT")
	if len(os.Args) > 1 {
		endpoint = os.Args[1]
	}

	app := tui.NewApp(endpoint)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running askdocs: %v\n", err)
		os.Exit(1)
	}
}
