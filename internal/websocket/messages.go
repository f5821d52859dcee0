package websocket

import "time"

type MessageType string

const (
	MessageTypeSessionStarted     MessageType = "session_started"
	MessageTypeConversationOpened MessageType = "conversation_opened"
	MessageTypeSessionFinalized   MessageType = "session_finalized"
)

type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

type sessionPayload struct {
	SessionKey   string         `json:"sessionKey"`
	Conversation string         `json:"conversation,omitempty"`
	Summary      map[string]any `json:"summary,omitempty"`
}

// Notifier adapts the hub to the session lifecycle callbacks
type Notifier struct {
	hub *Hub
}

// NewNotifier wraps a hub for session lifecycle broadcasting
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) SessionStarted(key string) {
	n.hub.Broadcast(Message{
		Type:      MessageTypeSessionStarted,
		Timestamp: time.Now(),
		Payload:   sessionPayload{SessionKey: key},
	})
}

func (n *Notifier) ConversationOpened(key, name string) {
	n.hub.Broadcast(Message{
		Type:      MessageTypeConversationOpened,
		Timestamp: time.Now(),
		Payload:   sessionPayload{SessionKey: key, Conversation: name},
	})
}

func (n *Notifier) SessionFinalized(key string, summary map[string]any) {
	n.hub.Broadcast(Message{
		Type:      MessageTypeSessionFinalized,
		Timestamp: time.Now(),
		Payload:   sessionPayload{SessionKey: key, Summary: summary},
	})
}
