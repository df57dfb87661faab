package api

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
	"github.com/wn7ant/eve-value/pkg/server/refresh"
)

func newTestWebSocket(t *testing.T) (*WebSocketServer, *websocket.Conn) {
	t.Helper()

	s := NewWebSocketServer(":0", nil)
	go s.broadcastUpdates()
	t.Cleanup(s.Stop)

	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	// The handshake finishes before the server registers the client;
	// wait until it shows up.
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		n := len(s.clients)
		s.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	return s, conn
}

func TestWebSocket_BroadcastsSnapshots(t *testing.T) {
	s, conn := newTestWebSocket(t)

	s.SendUpdate(readySnapshot())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg SnapshotMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "snapshot", msg.Type)
	require.NotNil(t, msg.Snapshot)
	assert.Equal(t, refresh.StateReady, msg.Snapshot.State)
	require.Len(t, msg.Snapshot.Offers, 1)
	assert.Equal(t, "500 PLEX", msg.Snapshot.Offers[0].Name)
}

func TestWebSocket_PingPong(t *testing.T) {
	_, conn := newTestWebSocket(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "ping"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]string
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "pong", msg["type"])
}

func TestWebSocket_NilSnapshotIgnored(t *testing.T) {
	s, conn := newTestWebSocket(t)

	s.SendUpdate(nil)
	s.SendUpdate(readySnapshot())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg SnapshotMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "snapshot", msg.Type)
	require.NotNil(t, msg.Snapshot)
}
