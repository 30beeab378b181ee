package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/askdocs/server/internal/agent"
	ws "codeberg.org/askdocs/server/internal/websocket"
)

type staticAnswerer struct{}

func (staticAnswerer) Answer(_ context.Context, q string) (*agent.Answer, error) {
	return &agent.Answer{Text: "answer to " + q}, nil
}

func TestWebSocketHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := ws.NewHub(staticAnswerer{})
	go hub.Run()
	defer hub.Shutdown()

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), hub, ws.OriginChecker(nil, false))

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg, err := ws.NewMessage(ws.TypeQuery, "q1", ws.QueryPayload{Query: "what is a stage?"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var got ws.Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, ws.TypeAnswer, got.Type)
	assert.Equal(t, "q1", got.ID)
	assert.JSONEq(t, `{"result": "answer to what is a stage?"}`, string(got.Payload))
}

func TestWebSocketHandlerAfterShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := ws.NewHub(staticAnswerer{})
	go hub.Run()
	hub.Shutdown()

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), hub, ws.OriginChecker(nil, false))

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
