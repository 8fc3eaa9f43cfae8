package websocket

import (
	"testing"
	"time"

	"multichat-be/internal/model"

	"github.com/google/uuid"
)

type quietLogger struct{}

func (quietLogger) Debug(string, string, map[string]interface{}) {}
func (quietLogger) Info(string, string, map[string]interface{})  {}
func (quietLogger) Warn(string, string, map[string]interface{})  {}
func (quietLogger) Error(string, string, map[string]interface{}) {}
func (quietLogger) Sync() error                                  { return nil }

func (h *Hub) clientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func TestSendDeliversToRegisteredClient(t *testing.T) {
	hub := NewHub(nil, quietLogger{})
	go hub.Run()

	userID := uuid.New()
	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 4)}
	hub.register <- client

	hub.Send(userID, model.StreamEvent{Type: model.StreamEventChunk, Chunk: "hi"})

	select {
	case msg := <-client.Send:
		if len(msg) == 0 {
			t.Error("empty payload delivered")
		}
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}

// A client whose buffer is full gets dropped, and repeated sends while it
// drains must not close its channel twice.
func TestSendDropsSlowClientOnce(t *testing.T) {
	hub := NewHub(nil, quietLogger{})
	go hub.Run()

	userID := uuid.New()
	slow := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 1)}
	hub.register <- slow

	// First send fills the buffer, the second hits the full-buffer path.
	hub.Send(userID, model.StreamEvent{Type: model.StreamEventChunk, Chunk: "x"})
	hub.Send(userID, model.StreamEvent{Type: model.StreamEventChunk, Chunk: "x"})

	deadline := time.After(time.Second)
	for hub.clientCount(userID) != 0 {
		select {
		case <-deadline:
			t.Fatal("slow client was never unregistered")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Channel must be closed exactly once by the unregister handler.
	for {
		if _, ok := <-slow.Send; !ok {
			return
		}
	}
}
