package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/askdocs/server/internal/errors"
	"codeberg.org/askdocs/server/internal/logger"
	ws "codeberg.org/askdocs/server/internal/websocket"
)

// WebSocketHandler godoc
// @Summary Interactive question channel
// @Description Upgrade to a websocket; send {"type":"query","id":"1","payload":{"query":"..."}} and receive "answer" or "error" messages with the same id
// @Tags query
// @Router /api/v1/ws [get]
func WebSocketHandler(hub *ws.Hub, checkOrigin func(r *http.Request) bool) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	return func(c *gin.Context) {
		ipAddress := c.ClientIP()

		if ok, reason := hub.CanAcceptConnection(ipAddress); !ok {
			errors.TooManyRequests(c, reason)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// the upgrader already wrote the error response
			logger.ErrorErr(err, "failed to upgrade connection", "ip", ipAddress)
			return
		}

		client := ws.NewClient(ws.NewClientID(), ipAddress, conn, hub)
		if !hub.Join(client) {
			// upgraded while the server was stopping
			closing := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server is shutting down")
			conn.WriteMessage(websocket.CloseMessage, closing) //nolint:errcheck,gosec
			conn.Close()                                       //nolint:errcheck,gosec
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}
