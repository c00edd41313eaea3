package websocket

import (
	"net/http"
	"sync"
	"time"

	"courier-dispatch/internal/domain/user"
	"courier-dispatch/internal/general/jwt"
	"courier-dispatch/internal/general/logger"

	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout   = 5 * time.Second
	wsCloseAckWindow = 2 * time.Second
	ctrlTimeout      = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub fans shipment status events out to connected admin dashboards.
// Connections authenticate with an admin JWT; the token may arrive in the
// Authorization header or, for browser clients, in the query string.
type Hub struct {
	logger *logger.Logger
	jwtMgr *jwt.Manager

	writeLocks sync.Map // key: *websocket.Conn -> *sync.Mutex
	admins     sync.Map // key: *websocket.Conn -> subject (admin user id)
}

// NewHub creates an admin feed hub.
func NewHub(logger *logger.Logger, jwtMgr *jwt.Manager) *Hub {
	return &Hub{
		logger: logger,
		jwtMgr: jwtMgr,
	}
}

// ConnectAdmin upgrades the request and keeps the connection registered for
// broadcasts until the client goes away.
func (hub *Hub) ConnectAdmin(w http.ResponseWriter, r *http.Request) {
	// 1) Authenticate before upgrading; a plain 401 is friendlier than a
	// close frame for clients with a stale token.
	raw, err := jwt.FromAuthorization(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	_, claims, err := hub.jwtMgr.ParseAndValidate(raw)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if err := jwt.RoleAllowed(claims, user.RoleAdmin); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	adminID := claims.Subject

	// 2) Upgrade HTTP -> WS
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error(r.Context(), "websocket_upgrade_failed", "Failed to upgrade to WebSocket", err, nil)
		return
	}

	// Teardown order (LIFO on return):
	defer conn.Close()
	defer hub.writeLocks.Delete(conn)

	conn.SetReadLimit(1 << 20) // 1 MiB

	hub.logger.Info(r.Context(), "ws_connected", "Admin WebSocket connected",
		map[string]any{"admin_id": adminID})

	// 3) Keepalive: pong resets the read deadline, ping loop every 30s
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(_ string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			mu := hub.lockOf(conn)
			mu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(ctrlTimeout))
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctrlTimeout))
			mu.Unlock()
			if err != nil {
				// Close socket to unblock reader; goroutine exits.
				_ = conn.Close()
				return
			}
		}
	}()

	// 4) Register for broadcasts; unregister on exit
	hub.admins.Store(conn, adminID)
	defer hub.admins.Delete(conn)

	// 5) Read loop. The admin feed is outbound-only: inbound frames are
	// drained so pings/pongs flow, everything else is ignored.
	for {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				hub.logger.Error(r.Context(), "ws_unexpected_close", "Admin connection closed unexpectedly", err, map[string]any{
					"admin_id": adminID,
				})
				hub.wsWriteClose(conn, websocket.CloseInternalServerErr, "internal error")
			} else {
				hub.logger.Info(r.Context(), "ws_connection_closed", "Admin connection closed normally", map[string]any{
					"admin_id": adminID,
				})
				hub.wsWriteClose(conn, websocket.CloseNormalClosure, "bye")
			}
			return
		}
	}
}
