//go:build integration
// +build integration

// file: websocket/connection_integration_test.go
package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestServer serves hub over a real listener and dials one client.
func startTestServer(t *testing.T, hub *Hub, query string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "WebSocket connection should succeed")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, hub *Hub, n int) {
	t.Helper()
	assert.Eventually(t, func() bool { return hub.Count() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestServeWs_BroadcastReachesSubscriber(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	defer close(done)
	go hub.HandleMessages(done)

	conn := startTestServer(t, hub, "?topic=leaderboard")
	waitForConnections(t, hub, 1)

	hub.BroadcastMessage("leaderboard", map[string]interface{}{"action": "scoreSubmitted"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	msgType, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, msgType)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(msg, &payload))
	assert.Equal(t, "scoreSubmitted", payload["action"])
}

func TestServeWs_PingPong(t *testing.T) {
	hub := NewHub(nil)
	conn := startTestServer(t, hub, "")
	waitForConnections(t, hub, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"ping"}`)))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "pong")
}

func TestServeWs_UnregistersOnClientClose(t *testing.T) {
	hub := NewHub(nil)
	conn := startTestServer(t, hub, "")
	waitForConnections(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForConnections(t, hub, 0)
}
