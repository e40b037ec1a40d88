// internal/websocket/message.go
package websocket

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventConnected   EventType = "connected"
	EventPing        EventType = "ping"
	EventPong        EventType = "pong"
	EventWashUpdate  EventType = "wash_request.updated"
	EventSystemAlert EventType = "system.alert"
	EventError       EventType = "error"
)

// Message is the wire envelope for every frame the hub sends or
// receives.
type Message struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// WashEvent is the payload behind EventWashUpdate toasts.
type WashEvent struct {
	Event   string `json:"event"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func NewMessage(t EventType, data interface{}) *Message {
	return &Message{Type: t, Data: data, Timestamp: time.Now()}
}

func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
