// internal/websocket/client_test.go
package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub() *Hub {
	return NewHub(nil, nil, zap.NewNop())
}

func newTestClient(hub *Hub) *Client {
	return NewClient(hub, nil, &ClientAuth{
		IdentityID: "ident-1",
		SessionID:  "sess-1",
		Role:       "customer",
		Device:     "web",
	})
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)

	client.Close()

	assert.NotPanics(t, func() {
		client.Send(NewMessage(EventPong, nil))
	})
	assert.Empty(t, client.send)
}

func TestCloseIsIdempotent(t *testing.T) {
	client := newTestClient(newTestHub())

	assert.NotPanics(t, func() {
		client.Close()
		client.Close()
	})
}

func TestConcurrentSendAndClose(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				client.Send(NewMessage(EventWashUpdate, &WashEvent{Event: "accepted"}))
			}
		}()
	}

	client.Close()
	wg.Wait()
}

func TestNotifyDoesNotBlockWhenQueueFull(t *testing.T) {
	hub := newTestHub()

	// Hub loop is not running, so the queue only fills.
	for i := 0; i < cap(hub.broadcast); i++ {
		hub.Notify("ident-1", "accepted", "ok", true)
	}

	done := make(chan struct{})
	go func() {
		hub.Notify("ident-1", "accepted", "ok", true)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full queue")
	}
}

func TestBroadcastSystemAlertDoesNotBlockWhenQueueFull(t *testing.T) {
	hub := newTestHub()

	for i := 0; i < cap(hub.broadcast); i++ {
		hub.Notify("ident-1", "accepted", "ok", true)
	}
	require.Len(t, hub.broadcast, cap(hub.broadcast))

	done := make(chan struct{})
	go func() {
		hub.BroadcastSystemAlert("maintenance window")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastSystemAlert blocked on a full queue")
	}
}
