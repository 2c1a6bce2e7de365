//go:build integration
// +build integration

// integration/connection_test.go
package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hspace-portal/db/sqlite"
	"hspace-portal/models"
	"hspace-portal/services"
	hub "hspace-portal/websocket"
)

// startLiveFeed serves a running hub over a real listener and dials one client.
func startLiveFeed(t *testing.T) (*hub.Hub, *websocket.Conn) {
	t.Helper()
	h := hub.NewHub(nil)
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	go h.HandleMessages(done)

	server := httptest.NewServer(http.HandlerFunc(h.ServeWs))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?topic=leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "WebSocket connection should succeed")
	t.Cleanup(func() { _ = conn.Close() })

	assert.Eventually(t, func() bool { return h.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	return h, conn
}

func openDB(t *testing.T) *sqlite.Database {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "integration.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// A stored score reaches live subscribers as the refreshed top 10.
func TestSubmitScore_PushesLeaderboard(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	h, conn := startLiveFeed(t)

	user := models.User{Username: "tetromino", PasswordHash: "x"}
	require.NoError(t, db.CreateUser(ctx, &user))

	minigame := services.NewMinigameService(db, h, nil)
	_, err := minigame.SubmitScore(ctx, user.ID, 4200, 3)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	msgType, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, msgType)

	var payload struct {
		Action      string                    `json:"action"`
		Topic       string                    `json:"topic"`
		Leaderboard []services.LeaderboardRow `json:"leaderboard"`
	}
	require.NoError(t, json.Unmarshal(msg, &payload))
	assert.Equal(t, "scoreSubmitted", payload.Action)
	assert.Equal(t, "leaderboard", payload.Topic)
	require.Len(t, payload.Leaderboard, 1)
	assert.Equal(t, 1, payload.Leaderboard[0].Rank)
	assert.Equal(t, "tetromino", payload.Leaderboard[0].Username)
	assert.Equal(t, 4200, payload.Leaderboard[0].Score)
	assert.Equal(t, 3, payload.Leaderboard[0].Level)
}

// Subscribers of another topic do not see leaderboard pushes.
func TestSubmitScore_OtherTopicStaysQuiet(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	h, conn := startLiveFeed(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"subscribe","topic":"wargame"}`)))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, ack, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(ack), "subscribed")

	user := models.User{Username: "quiet", PasswordHash: "x"}
	require.NoError(t, db.CreateUser(ctx, &user))
	_, err = services.NewMinigameService(db, h, nil).SubmitScore(ctx, user.ID, 10, 1)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "no message expected on the wargame topic")
}
