package core

import "time"

// EventKind is a notification the core emits to connections.
type EventKind int

const (
	// EventNewMessage carries a durably persisted message to channel subscribers.
	EventNewMessage EventKind = iota
	// EventChatCleared notifies channel subscribers that history was deleted.
	EventChatCleared
	// EventError reports a failed intent to the originating connection only.
	EventError
)

// Event is sent to connections to describe what happened.
type Event struct {
	Kind    EventKind
	Channel ChannelKey
	Message *Message
	Cleared *ClearedInfo
	Error   *CoreError
}

// Message is the domain view of a persisted chat message.
type Message struct {
	ID             int64
	SenderID       int64
	SenderUsername string
	ReceiverID     int64
	Text           string
	CreatedAt      time.Time
}

// ClearedInfo describes a chat_cleared broadcast.
type ClearedInfo struct {
	ClearedBy string
	ClearedAt time.Time
}
