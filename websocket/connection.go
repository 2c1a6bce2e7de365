// Package websocket provides the WebSocket server and connection handling.
// file: websocket/connection.go
package websocket

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hspace-portal/logger"
)

// WSConn is an interface for the WebSocket connection.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// Connection represents a single WebSocket connection for one client.
type Connection struct {
	hub  *Hub
	conn WSConn
	send chan []byte

	mu    sync.Mutex
	topic string
}

// Configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 2048
	sendBuffer     = 256
)

// upgrader keeps gorilla's default same-origin check.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func newConnection(h *Hub, conn WSConn, topic string) *Connection {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Connection{hub: h, conn: conn, send: make(chan []byte, sendBuffer), topic: topic}
}

// Topic returns the feed the connection listens to.
func (c *Connection) Topic() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topic
}

func (c *Connection) setTopic(topic string) {
	c.mu.Lock()
	c.topic = topic
	c.mu.Unlock()
}

// ServeWs upgrades the HTTP request to a WebSocket connection and starts the read and write pumps.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")

	logger.Info.Printf("[ServeWs] Upgrading to WS: remoteAddr=%v, topic=%q", r.RemoteAddr, topic)
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		logger.Error.Printf("[ServeWs] WebSocket upgrade error: %v", err)
		return
	}

	c := newConnection(h, wsConn, topic)
	h.register(c)

	go c.readPump()
	go c.writePump()
}

// readPump handles inbound messages from the client.
func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Debug.Printf("[readPump] Read error from %v: %v", c.conn.RemoteAddr(), err)
			break
		}
		if messageType != websocket.TextMessage {
			logger.Debug.Printf("[readPump] Ignoring non-text messageType=%d", messageType)
			continue
		}

		var cm ClientMessage
		if err := json.Unmarshal(message, &cm); err != nil {
			logger.Warn.Printf("[readPump] Invalid JSON from %v: %v", c.conn.RemoteAddr(), err)
			continue
		}
		c.handleIncoming(cm)
	}
}

// writePump handles outbound messages to the client, including periodic pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn.Printf("[writePump] Error writing to %v: %v", c.conn.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn.Printf("[writePump] Ping error for %v: %v", c.conn.RemoteAddr(), err)
				return
			}
		}
	}
}

// ClientMessage represents the JSON structure of messages from clients.
type ClientMessage struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

// handleIncoming processes inbound messages.
func (c *Connection) handleIncoming(cm ClientMessage) {
	logger.Debug.Printf("[handleIncoming] Action=%s, Topic=%s", cm.Action, cm.Topic)
	switch cm.Action {
	case "subscribe":
		if cm.Topic == "" {
			return
		}
		c.setTopic(cm.Topic)
		c.reply(map[string]interface{}{"action": "subscribed", "topic": cm.Topic})
	case "ping":
		c.reply(map[string]interface{}{"action": "pong"})
	default:
		logger.Debug.Printf("Unhandled action: %s", cm.Action)
	}
}

// reply queues a message for this connection only.
func (c *Connection) reply(msg map[string]interface{}) {
	out, err := json.Marshal(msg)
	if err != nil {
		logger.Error.Printf("[reply] Error marshaling %v: %v", msg["action"], err)
		return
	}
	select {
	case c.send <- out:
	default:
		logger.Warn.Printf("[reply] Dropping reply for %v", c.conn.RemoteAddr())
	}
}
