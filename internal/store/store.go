package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered user.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Message represents a persisted chat message between two users.
type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	Text       string
	CreatedAt  time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// ListUsers lists all users except the one with excludeID.
	ListUsers(ctx context.Context, excludeID int64) ([]*User, error)
}

// MessageStore handles message persistence for user pairs.
type MessageStore interface {
	// AppendMessage persists a message, assigning its ID and UTC timestamp.
	// On error no record is visible to subsequent reads.
	AppendMessage(ctx context.Context, senderID, receiverID int64, text string) (*Message, error)

	// History returns all messages between the two users regardless of
	// direction, ordered by timestamp ascending, ties broken by ID.
	History(ctx context.Context, userA, userB int64) ([]*Message, error)

	// ClearConversation atomically deletes all messages between the two
	// users and returns the number deleted. Fails without partial effect.
	ClearConversation(ctx context.Context, userA, userB int64) (int64, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
