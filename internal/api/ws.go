package api

import (
	"encoding/json"
	"net/http"
	gosync "sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"kitchensync/internal/logger"
	"kitchensync/internal/sync"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the dashboard runs on a separate origin
	},
}

// ProgressHub fans sync progress events out to the websocket connections of
// each owner.
type ProgressHub struct {
	mu      gosync.RWMutex
	clients map[string]map[*wsClient]bool
	log     *logger.Logger
}

// NewProgressHub creates an empty hub.
func NewProgressHub(baseLog *logger.Logger) *ProgressHub {
	return &ProgressHub{
		clients: make(map[string]map[*wsClient]bool),
		log:     baseLog.With("component", "ws"),
	}
}

// SinkFor returns a progress sink publishing to the owner's connections.
func (h *ProgressHub) SinkFor(ownerID string) sync.ProgressSink {
	return sync.SinkFunc(func(event sync.ProgressEvent) {
		h.Publish(ownerID, event)
	})
}

// Publish broadcasts an event to every connection of the owner. Slow
// consumers get dropped messages, never a blocked pipeline.
func (h *ProgressHub) Publish(ownerID string, event sync.ProgressEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal progress event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[ownerID] {
		select {
		case client.send <- data:
		default:
			h.log.Warn("progress buffer full, dropping event", "owner", ownerID)
		}
	}
}

func (h *ProgressHub) register(ownerID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[ownerID] == nil {
		h.clients[ownerID] = make(map[*wsClient]bool)
	}
	h.clients[ownerID][client] = true
}

func (h *ProgressHub) unregister(ownerID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[ownerID], client)
	if len(h.clients[ownerID]) == 0 {
		delete(h.clients, ownerID)
	}
}

// wsClient maintains one WebSocket connection with a dashboard.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// handleProgressWS upgrades the connection and starts the pumps.
func (s *Server) handleProgressWS(c *gin.Context) {
	ownerID := OwnerID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("failed to upgrade connection", "error", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.hub.register(ownerID, client)

	go client.writePump()
	go client.readPump(func() { s.hub.unregister(ownerID, client) })
}

// readPump discards inbound messages; the feed is one-way. It exists to
// notice closed connections and honor the ping/pong deadline.
func (c *wsClient) readPump(onClose func()) {
	defer func() {
		onClose()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump pumps events from the hub to the WebSocket connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
