package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/viant/hitl/model"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsMessage struct {
	Type     string           `json:"type"`
	Requests []*model.Request `json:"requests,omitempty"`
	Event    *model.Event     `json:"event,omitempty"`
}

// handleWebSocket upgrades the connection, replays the pending snapshot and
// then streams change events until the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	observer, pending, err := s.hub.Connect(r.Context())
	if err != nil {
		_ = conn.WriteJSON(wsMessage{Type: "error"})
		return
	}
	defer s.hub.Disconnect(observer)

	if err := conn.WriteJSON(wsMessage{Type: "initial_snapshot", Requests: pending}); err != nil {
		return
	}

	// Drain client frames so close and pong frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-observer.Events():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(wsMessage{Type: "update", Event: event}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
