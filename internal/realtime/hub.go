// Package realtime pushes every status change to websocket subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"mower-core/internal/common/constants"
	"mower-core/internal/models"
	"mower-core/internal/utils"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Envelope is the websocket frame.
type Envelope struct {
	Type string        `json:"type"`
	Seq  uint64        `json:"seq"`
	Data models.Status `json:"data"`
}

// Hub tracks subscribers and fans frames out to them. Slow subscribers are
// disconnected instead of blocking the broadcast.
type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}

	mu    sync.RWMutex
	count int

	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Run serves register/unregister/broadcast until ctx is done, then closes
// every subscriber.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setCount()
			utils.Logger.Infof("Realtime client connected (%d total)", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				utils.Logger.Infof("Realtime client disconnected (%d remaining)", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.drop(c)
					utils.Logger.Warn("Dropped slow realtime client")
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.setCount()
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

// ClientCount is safe to call from any goroutine.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Push implements status.Sink. It never blocks: a frame is dropped when the
// broadcast queue is full.
func (h *Hub) Push(s models.Status) error {
	data, err := json.Marshal(Envelope{
		Type: constants.RealtimeTypeStatus,
		Seq:  utils.NextPushSequence(),
		Data: s,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal realtime frame: %w", err)
	}

	select {
	case h.broadcast <- data:
		return nil
	default:
		return fmt.Errorf("realtime broadcast queue full")
	}
}

// ServeHTTP upgrades the request and blocks until the subscriber leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Logger.Warnf("Websocket upgrade failed: %v", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	c.run()
}
