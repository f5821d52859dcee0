package session

// Notifier receives session lifecycle events for live consumers (the
// WebSocket hub). Implementations must not block.
type Notifier interface {
	SessionStarted(key string)
	ConversationOpened(key, name string)
	SessionFinalized(key string, summary map[string]any)
}

// NopNotifier discards all lifecycle events
type NopNotifier struct{}

func (NopNotifier) SessionStarted(string) {}

func (NopNotifier) ConversationOpened(string, string) {}

func (NopNotifier) SessionFinalized(string, map[string]any) {}
