// sends one question over the websocket endpoint and prints the answer.
// usage: go run ./scripts/ask_websocket [-addr localhost:8080] <question>
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"codeberg.org/askdocs/server/internal/errors"
	ws "codeberg.org/askdocs/server/internal/websocket"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "server host:port")
	timeout := flag.Duration("timeout", 2*time.Minute, "how long to wait for the answer")
	flag.Parse()

	question := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(question) == "" {
		fmt.Println("Usage: go run ./scripts/ask_websocket [-addr host:port] <question>")
		os.Exit(1)
	}

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/api/v1/ws"}
	fmt.Printf("Connecting to %s\n", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer c.Close() //nolint:errcheck

	msg, err := ws.NewMessage(ws.TypeQuery, "q1", ws.QueryPayload{Query: question})
	if err != nil {
		log.Fatal("encode:", err)
	}

	if err := c.WriteJSON(msg); err != nil {
		log.Fatal("write:", err)
	}

	c.SetReadDeadline(time.Now().Add(*timeout)) //nolint:errcheck,gosec

	for {
		var reply ws.Message
		if err := c.ReadJSON(&reply); err != nil {
			log.Fatal("read:", err)
		}

		switch reply.Type {
		case ws.TypeAnswer:
			var answer ws.AnswerPayload
			if err := json.Unmarshal(reply.Payload, &answer); err != nil {
				log.Fatal("decode answer:", err)
			}

			fmt.Println(answer.Result)
			if answer.Cached {
				fmt.Println("\n(cached)")
			}
			for i, s := range answer.Sections {
				fmt.Printf("\n--- section %d ---\n%s\n", i+1, s)
			}

			closeConn(c)
			return

		case ws.TypeError:
			var e errors.ErrorResponse
			json.Unmarshal(reply.Payload, &e) //nolint:errcheck,gosec
			closeConn(c)
			log.Fatalf("server error: %s: %s", e.Error, e.Message)

		case ws.TypeServerShutdown:
			log.Fatal("server is shutting down")
		}
	}
}

func closeConn(c *websocket.Conn) {
	c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")) //nolint:errcheck,gosec
}
