package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Broadcast marshals v once and writes it to every connected admin.
// Dead connections are dropped from the registry on write failure.
func (hub *Hub) Broadcast(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		hub.logger.Error(context.Background(), "ws_broadcast_marshal_failed",
			"Failed to marshal broadcast payload", err, nil)
		return
	}

	hub.admins.Range(func(key, value any) bool {
		conn := key.(*websocket.Conn)
		if err := hub.wsWriteMessage(conn, websocket.TextMessage, payload); err != nil {
			hub.logger.Error(context.Background(), "ws_broadcast_write_failed",
				"Failed to write to admin connection, dropping it", err,
				map[string]any{"admin_id": value})
			hub.admins.Delete(conn)
			_ = conn.Close()
		}
		return true
	})
}

// ConnectedAdmins reports how many admin dashboards are attached.
func (hub *Hub) ConnectedAdmins() int {
	n := 0
	hub.admins.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// wsWriteClose sends a close control frame with the given code and reason.
func (hub *Hub) wsWriteClose(conn *websocket.Conn, code int, reason string) {
	mu := hub.lockOf(conn)
	mu.Lock()
	defer mu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(wsCloseAckWindow),
	)
	hub.writeLocks.Delete(conn)
}

// wsWriteMessage sets a short write deadline and writes a message.
func (hub *Hub) wsWriteMessage(conn *websocket.Conn, mt int, payload []byte) error {
	mu := hub.lockOf(conn)
	mu.Lock()
	defer mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(mt, payload)
}

// lockOf returns the writer mutex for a specific connection.
func (hub *Hub) lockOf(conn *websocket.Conn) *sync.Mutex {
	if v, ok := hub.writeLocks.Load(conn); ok {
		if mu, ok := v.(*sync.Mutex); ok && mu != nil {
			return mu
		}
	}
	mu := &sync.Mutex{}
	actual, _ := hub.writeLocks.LoadOrStore(conn, mu)
	return actual.(*sync.Mutex)
}
