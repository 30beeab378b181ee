package tui

import (
	"net/http"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// represents the current state of the TUI
type AppState int

const (
	StateWelcome AppState = iota
	StateAsk
)

// main TUI application model
type Model struct {
	state   AppState
	width   int
	height  int
	err     error
	client  *Client
	welcome *Welcome
	ask     *AskModel
}

// sent when an error occurs
type ErrorMsg struct {
	err error
}

// sent to transition to the ask screen
type EnterAskMsg struct{}

// one question and its answer
type Exchange struct {
	Question string
	Answer   string
	// set when the request failed
	Err error
}

// question/answer screen
type AskModel struct {
	client             *Client
	input              textinput.Model
	viewport           viewport.Model
	spinner            spinner.Model
	renderer           *glamour.TermRenderer
	history            []Exchange
	width              int
	height             int
	ready              bool
	isFetching         bool
	shouldScrollBottom bool
}

// sent when the server answered a question
type AnswerMsg struct {
	question string
	answer   string
}

// sent when a question could not be answered
type AnswerErrorMsg struct {
	question string
	err      error
}

// welcome screen model
type Welcome struct {
	client   *Client
	cursor   int
	status   string
	commands []Command
}

// represents an available TUI command
type Command struct {
	Name        string
	Description string
}

// sent when the status probe returns
type StatusMsg struct {
	identity string
}

// talks to the askdocs REST API
type Client struct {
	endpoint   string
	httpClient *http.Client
}

type queryRequest struct {
	Query string `json:"query"`
}

type answerResponse struct {
	Result string `json:"result"`
}

type searchResponse struct {
	Result []string `json:"result"`
}

type statusResponse struct {
	Result string `json:"result"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
