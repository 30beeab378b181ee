package websocket

import (
	"context"
	"strings"
	"time"

	"codeberg.org/askdocs/server/internal/errors"
	"codeberg.org/askdocs/server/internal/logger"
)

func NewHub(answerer Answerer) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		answerer:   answerer,
		clients:    make(map[string]*Client),
		perIP:      make(map[string]int),
		shutdown:   make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	h.perIP[client.IPAddress]++

	logger.Debug("client registered", "client_id", client.ID, "ip", client.IPAddress)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	delete(h.clients, client.ID)

	h.perIP[client.IPAddress]--
	if h.perIP[client.IPAddress] <= 0 {
		delete(h.perIP, client.IPAddress)
	}

	client.Close()

	logger.Debug("client unregistered", "client_id", client.ID)
}

func (h *Hub) handleMessage(client *Client, msg *Message) {
	switch msg.Type {
	case TypePing:
		if pong, err := NewMessage(TypePong, msg.ID, nil); err == nil {
			client.Send(pong) //nolint:errcheck,gosec // G104: best effort
		}

	case TypeQuery:
		var payload QueryPayload
		if err := msg.decode(&payload); err != nil || strings.TrimSpace(payload.Query) == "" {
			client.SendError(msg.ID, errors.CodeValidationError, "query payload requires a non-empty query")
			return
		}

		if !client.checkQueryRateLimit(time.Now()) {
			client.SendError(msg.ID, errors.CodeTooManyRequests, "query rate limit reached, try again later")
			return
		}

		h.queries.Add(1)
		go func() {
			defer h.queries.Done()
			h.answer(client, msg.ID, payload.Query)
		}()

	default:
		client.SendError(msg.ID, errors.CodeBadRequest, "unknown message type "+msg.Type)
	}
}

func (h *Hub) answer(client *Client, id, query string) {
	ctx, cancel := context.WithTimeout(h.ctx, queryTimeout)
	defer cancel()

	answer, err := h.answerer.Answer(ctx, query)
	if err != nil {
		logger.ErrorErr(err, "failed to answer websocket query", "client_id", client.ID)
		client.SendError(id, errors.CodeServerError, "failed to answer query")
		return
	}

	msg, err := NewMessage(TypeAnswer, id, AnswerPayload{
		Result:   answer.Text,
		Sections: answer.Sections,
		Cached:   answer.Cached,
		Fallback: answer.Fallback,
	})
	if err != nil {
		logger.ErrorErr(err, "failed to create answer message", "client_id", client.ID)
		return
	}

	if err := client.Send(msg); err != nil {
		logger.Debug("client went away before the answer", "client_id", client.ID)
	}
}

// number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// checks if a new connection should be allowed based on limits
func (h *Hub) CanAcceptConnection(ipAddress string) (bool, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.perIP[ipAddress] >= maxConnectionsPerIP {
		return false, "maximum connections per IP address exceeded"
	}

	return true, ""
}

// hands a new client to Run. returns false once the hub is shutting down,
// the caller then owns the connection.
func (h *Hub) Join(client *Client) bool {
	select {
	case <-h.shutdown:
		return false
	default:
	}

	select {
	case h.Register <- client:
		return true
	case <-h.shutdown:
		return false
	}
}

// notifies clients, cancels in-flight queries and closes every connection.
// safe to call more than once.
func (h *Hub) Shutdown() {
	h.cancel()
	h.closeOnce.Do(func() { close(h.shutdown) })
	h.queries.Wait()
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("closing websocket connections", "clients", len(h.clients))

	shutdownMsg, err := NewMessage(TypeServerShutdown, "", ServerShutdownPayload{
		Reason: "server is shutting down",
	})

	for id, client := range h.clients {
		if err == nil {
			client.Send(shutdownMsg) //nolint:errcheck,gosec // G104: best effort
		}

		client.Close()
		delete(h.clients, id)
	}

	h.perIP = make(map[string]int)
}
