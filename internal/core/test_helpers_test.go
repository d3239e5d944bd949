package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pairchat/pairchat-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("expected no event, got kind %v (%+v)", ev.Kind, ev)
	case <-time.After(150 * time.Millisecond):
	}
}

func newTestHub(t *testing.T, st store.Store) *Hub {
	t.Helper()

	logger := zerolog.New(nil)
	hub := NewHub(st, NewRegistry(), &logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub
}

// memStore is an in-memory store.Store with switchable failure modes.
type memStore struct {
	mu         sync.Mutex
	users      map[int64]*store.User
	messages   []*store.Message
	nextMsgID  int64
	nextUserID int64
	failAppend bool
	failClear  bool
}

func newMemStore(usernames ...string) *memStore {
	m := &memStore{users: make(map[int64]*store.User)}
	for _, name := range usernames {
		m.nextUserID++
		m.users[m.nextUserID] = &store.User{
			ID:        m.nextUserID,
			Username:  name,
			CreatedAt: time.Now().UTC(),
		}
	}
	return m
}

func (m *memStore) CreateUser(_ context.Context, username, passwordHash string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUserID++
	u := &store.User{ID: m.nextUserID, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	return u, nil
}

func (m *memStore) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, store.ErrNotFound)
}

func (m *memStore) ListUsers(_ context.Context, excludeID int64) ([]*store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.User
	for _, u := range m.users {
		if u.ID != excludeID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memStore) AppendMessage(_ context.Context, senderID, receiverID int64, text string) (*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppend {
		return nil, errors.New("disk full")
	}
	m.nextMsgID++
	msg := &store.Message{
		ID:         m.nextMsgID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memStore) History(_ context.Context, userA, userB int64) ([]*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*store.Message
	for _, msg := range m.messages {
		if samePair(msg, userA, userB) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memStore) ClearConversation(_ context.Context, userA, userB int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failClear {
		return 0, errors.New("disk full")
	}
	var kept []*store.Message
	var deleted int64
	for _, msg := range m.messages {
		if samePair(msg, userA, userB) {
			deleted++
			continue
		}
		kept = append(kept, msg)
	}
	m.messages = kept
	return deleted, nil
}

func (m *memStore) Close() error { return nil }

func samePair(msg *store.Message, a, b int64) bool {
	return (msg.SenderID == a && msg.ReceiverID == b) || (msg.SenderID == b && msg.ReceiverID == a)
}

var _ store.Store = (*memStore)(nil)
