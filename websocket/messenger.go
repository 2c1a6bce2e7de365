// file: websocket/messenger.go
package websocket

import (
	"encoding/json"

	"hspace-portal/logger"
)

// Messenger is an interface for broadcasting messages.
type Messenger interface {
	BroadcastMessage(topic string, msg map[string]interface{})
	BroadcastRaw(msg []byte)
}

var _ Messenger = (*Hub)(nil)

// BroadcastMessage tags msg with topic, marshals it and queues it for delivery.
func (h *Hub) BroadcastMessage(topic string, msg map[string]interface{}) {
	payload := make(map[string]interface{}, len(msg)+1)
	for k, v := range msg {
		payload[k] = v
	}
	if topic != "" {
		payload["topic"] = topic
	}

	m, err := json.Marshal(payload)
	if err != nil {
		logger.Error.Printf("Hub: Error marshalling message: %v", err)
		return
	}
	h.BroadcastRaw(m)
	logger.Debug.Printf("Hub: BroadcastMessage %v sent to topic %q", msg["action"], topic)
}

// BroadcastRaw queues a raw JSON message. When the queue is full the message
// is dropped rather than stalling the caller.
func (h *Hub) BroadcastRaw(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		logger.Warn.Printf("Hub: broadcast queue full, dropping %d bytes", len(msg))
	}
}
