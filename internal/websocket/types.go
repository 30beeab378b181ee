package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"codeberg.org/askdocs/server/internal/agent"
)

// message types, client to server: query, ping.
// server to client: answer, error, pong, server_shutdown.
const (
	TypeQuery          = "query"
	TypeAnswer         = "answer"
	TypeError          = "error"
	TypePing           = "ping"
	TypePong           = "pong"
	TypeServerShutdown = "server_shutdown"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// bytes per inbound frame
	maxMessageSize = 16 * 1024

	// per connection, refilled evenly over a minute
	maxQueriesPerMinute = 10

	queryTimeout = 2 * time.Minute

	maxConnectionsPerIP = 10

	sendBuffer = 64
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrInvalidMessage   = errors.New("invalid message format")
)

// envelope for every frame in both directions
type Message struct {
	Type string `json:"type"`
	// echoed back so clients can match answers to queries
	ID        string          `json:"id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type QueryPayload struct {
	Query string `json:"query"`
}

type AnswerPayload struct {
	Result   string   `json:"result"`
	Sections []string `json:"sections,omitempty"`
	Cached   bool     `json:"cached,omitempty"`
	Fallback bool     `json:"fallback,omitempty"`
}

type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

type Answerer interface {
	Answer(ctx context.Context, query string) (*agent.Answer, error)
}

// one upgraded connection
type Client struct {
	ID        string
	IPAddress string

	conn    *websocket.Conn
	hub     *Hub
	outbox  chan []byte
	queries *rate.Limiter

	mu     sync.RWMutex
	closed bool
}

// owns the client set; Run serializes joins and leaves
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	answerer Answerer

	mu      sync.RWMutex
	clients map[string]*Client
	perIP   map[string]int

	shutdown  chan struct{}
	closeOnce sync.Once

	// canceled on shutdown so in-flight answers stop
	ctx     context.Context
	cancel  context.CancelFunc
	queries sync.WaitGroup
}
