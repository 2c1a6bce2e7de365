// Package websocket serves the live feeds pushed to browsers, such as the
// minigame leaderboard.
// file: websocket/hub.go
package websocket

import (
	"encoding/json"
	"sync"

	"hspace-portal/logger"
	"hspace-portal/metrics"
)

// DefaultTopic is used when a client does not name one.
const DefaultTopic = "leaderboard"

// Hub fans broadcast messages out to the registered connections. Messages
// carrying a "topic" field only reach connections subscribed to that topic.
type Hub struct {
	mu          sync.RWMutex
	connections map[*Connection]bool

	broadcast chan []byte
	metrics   metrics.Publisher
}

func NewHub(publisher metrics.Publisher) *Hub {
	if publisher == nil {
		publisher = metrics.Noop{}
	}
	return &Hub{
		connections: make(map[*Connection]bool),
		broadcast:   make(chan []byte, 64),
		metrics:     publisher,
	}
}

// HandleMessages listens for messages on the broadcast channel and distributes
// them to connections. It returns when done is closed; a nil done runs forever.
func (h *Hub) HandleMessages(done <-chan struct{}) {
	for {
		select {
		case msg := <-h.broadcast:
			h.deliver(msg)
		case <-done:
			return
		}
	}
}

func (h *Hub) deliver(msg []byte) {
	var envelope struct {
		Topic string `json:"topic"`
	}
	if err := json.Unmarshal(msg, &envelope); err != nil {
		logger.Debug.Printf("[Hub.deliver] non-JSON message, sending to everyone: %v", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections {
		if envelope.Topic != "" && c.Topic() != envelope.Topic {
			continue
		}
		select {
		case c.send <- msg:
		default:
			logger.Warn.Printf("[Hub.deliver] Dropping message for slow connection %v", c.conn.RemoteAddr())
		}
	}
}

// Count returns the number of registered connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	h.connections[c] = true
	n := len(h.connections)
	h.mu.Unlock()

	logger.Info.Printf("[Hub] connection %v joined %q (%d open)", c.conn.RemoteAddr(), c.Topic(), n)
	h.metrics.PutMetric("LiveFeedConnections", float64(n), metrics.UnitCount)
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	if _, ok := h.connections[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.connections, c)
	close(c.send)
	n := len(h.connections)
	h.mu.Unlock()

	logger.Info.Printf("[Hub] connection %v left (%d open)", c.conn.RemoteAddr(), n)
	h.metrics.PutMetric("LiveFeedConnections", float64(n), metrics.UnitCount)
}
