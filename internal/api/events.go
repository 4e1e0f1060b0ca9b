package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"menuperf/internal/logger"
	"menuperf/internal/menuengine"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans sync events out to websocket subscribers of the same restaurant
type Hub struct {
	mu      sync.RWMutex
	clients map[*subscriber]struct{}
	log     *logger.Logger
}

type subscriber struct {
	conn         *websocket.Conn
	restaurantID string
	send         chan []byte
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{clients: make(map[*subscriber]struct{}), log: log}
}

// Publish implements menuengine.EventPublisher. Slow subscribers drop events.
func (h *Hub) Publish(event menuengine.SyncEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("marshal sync event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.clients {
		if sub.restaurantID != event.RestaurantID {
			continue
		}
		select {
		case sub.send <- data:
		default:
			h.log.Warn("websocket buffer full, dropping sync event", "restaurant_id", event.RestaurantID)
		}
	}
}

// Subscribers returns the number of connected clients
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.clients {
		delete(h.clients, sub)
		close(sub.send)
	}
}

// Serve upgrades the request and streams the caller's restaurant events
func (h *Hub) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	sub := &subscriber{conn: conn, restaurantID: restaurantID(c), send: make(chan []byte, 64)}
	h.mu.Lock()
	h.clients[sub] = struct{}{}
	h.mu.Unlock()

	go h.writePump(sub)
	go h.readPump(sub)
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[sub]; ok {
		delete(h.clients, sub)
		close(sub.send)
	}
}

// readPump only watches for the close; the feed is one way.
func (h *Hub) readPump(sub *subscriber) {
	defer func() {
		h.remove(sub)
		sub.conn.Close()
	}()

	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		sub.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket error", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case message, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
