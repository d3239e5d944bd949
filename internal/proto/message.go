package proto

import "encoding/json"

// Inbound is the envelope for intents coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinChat    = "join_chat"
	InboundTypeLeaveChat   = "leave_chat"
	InboundTypeSendMessage = "send_message"
	InboundTypeClearChat   = "clear_chat"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventNameNewMessage  = "new_message"
	EventNameChatCleared = "chat_cleared"

	// TimestampFormat is the wire format for event timestamps (UTC).
	TimestampFormat = "2006-01-02 15:04:05"
)

// JoinChatData subscribes the connection to the chat with receiver_id.
type JoinChatData struct {
	ReceiverID      int64  `json:"receiver_id"`
	CurrentUserID   int64  `json:"current_user_id"`
	CurrentUsername string `json:"current_username"`
}

// LeaveChatData unsubscribes the connection from the chat with receiver_id.
type LeaveChatData struct {
	ReceiverID    int64 `json:"receiver_id"`
	CurrentUserID int64 `json:"current_user_id"`
}

// SendMessageData is a chat message from the client.
type SendMessageData struct {
	Text            string `json:"text"`
	ReceiverID      int64  `json:"receiver_id"`
	CurrentUserID   int64  `json:"current_user_id"`
	CurrentUsername string `json:"current_username"`
}

// ClearChatData requests deletion of the pair's history.
type ClearChatData struct {
	ReceiverID      int64  `json:"receiver_id"`
	CurrentUserID   int64  `json:"current_user_id"`
	CurrentUsername string `json:"current_username"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventNewMessage is broadcast to channel subscribers after a message is
// durably persisted.
type EventNewMessage struct {
	ID             int64  `json:"id"`
	SenderID       int64  `json:"sender_id"`
	SenderUsername string `json:"sender_username"`
	ReceiverID     int64  `json:"receiver_id"`
	Text           string `json:"text"`
	Timestamp      string `json:"timestamp"`
}

// EventChatCleared is broadcast to channel subscribers after history deletion.
type EventChatCleared struct {
	ClearedBy string `json:"cleared_by"`
	Timestamp string `json:"timestamp"`
}

// Error describes a failed intent, delivered to the origin only.
type Error struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
