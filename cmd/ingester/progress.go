package main

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/charmbracelet/x/term"
)

// progress bar on stderr, drawn only when stderr is a terminal
type barProgress struct {
	desc string
	bar  *progressbar.ProgressBar
}

func newProgress(desc string) *barProgress {
	return &barProgress{desc: desc}
}

func progressEnabled() bool {
	return term.IsTerminal(os.Stderr.Fd())
}

// total is -1 when unknown, which draws a spinner
func (p *barProgress) Start(total int) {
	if !progressEnabled() || total == 0 {
		return
	}

	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(p.desc),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (p *barProgress) Increment() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

func (p *barProgress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}
