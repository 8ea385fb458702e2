package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/glycocare/internal/domain"
)

func dial(t *testing.T, h *Hub, userID string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.Serve(w, r, userID)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestPublishReachesOnlyTargetUser(t *testing.T) {
	h := NewHub()
	alice := dial(t, h, "alice")
	bob := dial(t, h, "bob")

	require.Eventually(t, func() bool {
		return h.Connections("alice") == 1 && h.Connections("bob") == 1
	}, time.Second, 5*time.Millisecond)

	h.Publish("alice", domain.Event{Type: "meal_analyzed", Data: map[string]string{"dish": "Dal"}})

	var got domain.Event
	require.NoError(t, alice.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, alice.ReadJSON(&got))
	assert.Equal(t, "meal_analyzed", got.Type)
	assert.Equal(t, map[string]any{"dish": "Dal"}, got.Data)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(50*time.Millisecond)))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err)
}

func TestClosedClientIsRemoved(t *testing.T) {
	h := NewHub()
	conn := dial(t, h, "carol")

	require.Eventually(t, func() bool { return h.Connections("carol") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return h.Connections("carol") == 0 }, time.Second, 5*time.Millisecond)
}

func TestPublishWithoutClients(t *testing.T) {
	h := NewHub()
	assert.NotPanics(t, func() { h.Publish("nobody", domain.Event{Type: "x"}) })
}
