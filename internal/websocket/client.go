package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"codeberg.org/askdocs/server/internal/errors"
	"codeberg.org/askdocs/server/internal/logger"
)

func NewClient(id, ipAddress string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:        id,
		IPAddress: ipAddress,
		conn:      conn,
		hub:       hub,
		outbox:    make(chan []byte, sendBuffer),
		queries:   rate.NewLimiter(rate.Every(time.Minute/maxQueriesPerMinute), maxQueriesPerMinute),
	}
}

// decodes inbound frames and hands them to the hub until the peer goes away.
// a frame that is not a Message gets an error reply and the loop continues.
func (c *Client) ReadPump() {
	defer c.leave()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read failed", "client_id", c.ID, "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(frame, &msg); err != nil {
			c.SendError("", errors.CodeBadRequest, ErrInvalidMessage.Error())
			continue
		}

		msg.Timestamp = time.Now()
		c.hub.handleMessage(c, &msg)
	}
}

func (c *Client) leave() {
	select {
	case c.hub.Unregister <- c:
	case <-c.hub.shutdown:
	}
	c.conn.Close() //nolint:errcheck,gosec
}

// drains the outbox onto the connection and pings on an interval.
// returns once the outbox is closed or a write fails.
func (c *Client) WritePump() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer c.conn.Close() //nolint:errcheck,gosec

	for {
		var err error

		select {
		case frame, ok := <-c.outbox:
			if !ok {
				c.write(websocket.CloseMessage, nil) //nolint:errcheck,gosec
				return
			}
			err = c.write(websocket.TextMessage, frame)

		case <-ping.C:
			err = c.write(websocket.PingMessage, nil)
		}

		if err != nil {
			return
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// queues msg without blocking; a full outbox counts as a dead client
func (c *Client) Send(msg *Message) error {
	frame, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.outbox <- frame:
		return nil
	default:
		return ErrConnectionClosed
	}
}

func (c *Client) SendError(id, code, message string) {
	msg, err := NewMessage(TypeError, id, errors.ErrorResponse{
		Error:   code,
		Message: message,
	})
	if err != nil {
		logger.ErrorErr(err, "failed to build error message", "client_id", c.ID)
		return
	}

	c.Send(msg) //nolint:errcheck,gosec
}

// closes the outbox, which ends WritePump. safe to call twice.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.outbox)
}

func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// takes one query token at now
func (c *Client) checkQueryRateLimit(now time.Time) bool {
	return c.queries.AllowN(now, 1)
}
