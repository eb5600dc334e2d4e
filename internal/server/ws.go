package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/raphaelgruber/flowmind/internal/flow"
)

const wsWriteTimeout = 10 * time.Second

// Hub fans flow events out to each user's connected WebSocket clients.
type Hub struct {
	mu    sync.Mutex
	conns map[string]map[*websocket.Conn]struct{}
	log   *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		conns: make(map[string]map[*websocket.Conn]struct{}),
		log:   log,
	}
}

func (h *Hub) add(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

func (h *Hub) remove(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns[userID], conn)
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}

// Broadcast sends one event to every connection a user holds. Failed writes
// close the connection; the read loop then cleans it up.
func (h *Hub) Broadcast(userID string, ev flow.Event) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns[userID]))
	for conn := range h.conns[userID] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			h.log.Debug("websocket write failed, dropping client", "user", userID, "error", err)
			_ = conn.Close()
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer for API calls; the feed carries
	// only the user's own events and requires a valid access token.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWebSocket upgrades the connection and streams the user's session
// events until the client disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	s.hub.add(userID, conn)
	s.log.Debug("websocket client connected", "user", userID)

	defer func() {
		s.hub.remove(userID, conn)
		_ = conn.Close()
		s.log.Debug("websocket client disconnected", "user", userID)
	}()

	// Clients only listen; the read loop exists to notice the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
