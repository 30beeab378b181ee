package websocket

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"

	"codeberg.org/askdocs/server/internal/logger"
)

// builds a message with a JSON payload
func NewMessage(msgType, id string, payload any) (*Message, error) {
	msg := &Message{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now(),
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = raw
	}

	return msg, nil
}

func (m *Message) decode(v any) error {
	if len(m.Payload) == 0 {
		return ErrInvalidMessage
	}

	return json.Unmarshal(m.Payload, v)
}

// origin check for the upgrader. outside production every origin is allowed,
// in production only the configured ones.
func OriginChecker(allowedOrigins []string, production bool) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if !production {
			return true
		}

		origin := r.Header.Get("Origin")
		if origin == "" {
			// non-browser clients (the terminal client) send no origin
			return true
		}

		if slices.Contains(allowedOrigins, origin) {
			return true
		}

		logger.Warn("websocket origin rejected", "origin", origin, "allowed_origins", allowedOrigins)
		return false
	}
}

func NewClientID() string {
	return uuid.NewString()
}
