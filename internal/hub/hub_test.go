package hub

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowOrigins(t *testing.T) {
	open := AllowOrigins(nil)
	assert.True(t, open("http://anything.example"))

	restricted := AllowOrigins([]string{"http://site.example"})
	assert.True(t, restricted("http://site.example"))
	assert.False(t, restricted("http://evil.example"))
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	h := New(nil, nil)
	defer h.Shutdown()

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+srv.URL[len("http"):], nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	h.Broadcast(Message{Type: "content", Fingerprint: "abc123"})

	_, payload, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "content", msg.Type)
	assert.Equal(t, "abc123", msg.Fingerprint)
}

func TestHub_RouteMessage(t *testing.T) {
	h := New(nil, nil)
	defer h.Shutdown()

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+srv.URL[len("http"):], nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	h.Broadcast(Message{Type: "route", Route: "deep-currents"})

	_, payload, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "route", msg.Type)
	assert.Equal(t, "deep-currents", msg.Route)
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	h := New(nil, nil)
	defer h.Shutdown()

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+srv.URL[len("http"):], nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close(websocket.StatusNormalClosure, "")

	assert.Eventually(t, func() bool {
		return h.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ShutdownIdempotent(t *testing.T) {
	h := New(nil, nil)
	h.Shutdown()
	h.Shutdown()

	// Broadcast after shutdown must not block.
	done := make(chan struct{})
	go func() {
		h.Broadcast(Message{Type: "content"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked after shutdown")
	}
}
