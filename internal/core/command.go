package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinChat subscribes the connection to the pair channel.
	CommandJoinChat CommandKind = iota
	// CommandLeaveChat unsubscribes the connection from the pair channel.
	CommandLeaveChat
	// CommandSendMessage validates, persists and fans out a message.
	CommandSendMessage
	// CommandClearChat deletes the pair's history and fans out the event.
	CommandClearChat
)

// Command represents an intent issued by a connection. UserID and Username
// are the identity claimed in the payload; the router checks them against
// the connection's authenticated identity.
type Command struct {
	Kind       CommandKind
	ReceiverID int64
	UserID     int64
	Username   string
	Text       string
}
