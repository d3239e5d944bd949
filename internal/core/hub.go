package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pairchat/pairchat-server/internal/store"
)

type handlerFunc func(ctx context.Context, c *Client, cmd *Command)

// Hub routes intents from live connections: it resolves the pair channel,
// validates, persists through the store and fans events out to the
// registry's subscribers. Each connection's command stream is drained by
// its own goroutine, so intents from one connection are handled in order
// while different connections proceed concurrently.
type Hub struct {
	store    store.Store
	registry *Registry
	log      *zerolog.Logger
	handlers map[CommandKind]handlerFunc

	mu      sync.Mutex
	ctx     context.Context
	clients map[*Client]context.CancelFunc
}

// NewHub constructs a hub over the given store and registry.
func NewHub(st store.Store, registry *Registry, logger *zerolog.Logger) *Hub {
	h := &Hub{
		store:    st,
		registry: registry,
		log:      logger,
		clients:  make(map[*Client]context.CancelFunc),
	}
	h.handlers = map[CommandKind]handlerFunc{
		CommandJoinChat:    h.handleJoin,
		CommandLeaveChat:   h.handleLeave,
		CommandSendMessage: h.handleSend,
		CommandClearChat:   h.handleClear,
	}
	return h
}

// Run adopts ctx as the lifecycle for all client loops and blocks until it
// is cancelled, then stops every remaining loop.
func (h *Hub) Run(ctx context.Context) {
	h.mu.Lock()
	h.ctx = ctx
	h.mu.Unlock()

	<-ctx.Done()

	h.mu.Lock()
	for _, cancel := range h.clients {
		cancel()
	}
	h.mu.Unlock()
}

// RegisterClient starts processing the client's command stream.
func (h *Hub) RegisterClient(c *Client) {
	h.mu.Lock()
	base := h.ctx
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithCancel(base)
	h.clients[c] = cancel
	h.mu.Unlock()

	go h.serveClient(ctx, c)
}

// UnregisterClient stops the client's command loop and removes it from
// every channel. The transport calls this exactly once per terminated
// connection; skipping it would leak a stale subscriber.
func (h *Hub) UnregisterClient(c *Client) {
	h.mu.Lock()
	cancel, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()

	if ok {
		cancel()
	}
	h.registry.DropClient(c)
}

func (h *Hub) serveClient(ctx context.Context, c *Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-c.Commands:
			if cmd == nil {
				return
			}
			h.dispatch(ctx, c, cmd)
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, c *Client, cmd *Command) {
	// Claimed identity must match the authenticated connection.
	if cmd.UserID != 0 && cmd.UserID != c.UserID {
		h.sendError(c, ErrCodeUnauthorized, "Identity does not match session")
		return
	}
	if cmd.Username != "" && cmd.Username != c.Username {
		h.sendError(c, ErrCodeUnauthorized, "Identity does not match session")
		return
	}

	handler, ok := h.handlers[cmd.Kind]
	if !ok {
		h.log.Warn().Int("kind", int(cmd.Kind)).Str("client_id", c.ID).Msg("unknown command kind")
		return
	}
	handler(ctx, c, cmd)
}

func (h *Hub) handleJoin(_ context.Context, c *Client, cmd *Command) {
	if cmd.ReceiverID == 0 || cmd.UserID == 0 {
		h.sendError(c, ErrCodeInvalidTarget, "Missing required data")
		return
	}
	if cmd.ReceiverID == c.UserID {
		h.sendError(c, ErrCodeInvalidTarget, "Cannot chat with yourself")
		return
	}

	key := ChannelKeyFor(c.UserID, cmd.ReceiverID)
	h.registry.Join(key, c)
	h.log.Debug().Str("channel", string(key)).Str("username", c.Username).Msg("client joined channel")
}

func (h *Hub) handleLeave(_ context.Context, c *Client, cmd *Command) {
	if cmd.ReceiverID == 0 || cmd.UserID == 0 {
		return
	}

	key := ChannelKeyFor(c.UserID, cmd.ReceiverID)
	h.registry.Leave(key, c)
	h.log.Debug().Str("channel", string(key)).Str("username", c.Username).Msg("client left channel")
}

func (h *Hub) handleSend(ctx context.Context, c *Client, cmd *Command) {
	text, err := ValidateMessage(cmd.Text)
	if err != nil {
		h.sendCoreError(c, err)
		return
	}
	if cmd.ReceiverID == 0 || cmd.UserID == 0 || cmd.Username == "" {
		h.sendError(c, ErrCodeInvalidTarget, "Missing required data")
		return
	}
	if cmd.ReceiverID == c.UserID {
		h.sendError(c, ErrCodeInvalidTarget, "Cannot send messages to yourself")
		return
	}

	if _, err := h.store.GetUserByID(ctx, cmd.ReceiverID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.sendError(c, ErrCodeInvalidTarget, "Receiver not found")
		} else {
			h.log.Error().Err(err).Int64("receiver_id", cmd.ReceiverID).Msg("receiver lookup failed")
			h.sendError(c, ErrCodePersistence, "Failed to send message. Please try again.")
		}
		return
	}

	saved, err := h.store.AppendMessage(ctx, c.UserID, cmd.ReceiverID, text)
	if err != nil {
		h.log.Error().Err(err).Int64("sender_id", c.UserID).Int64("receiver_id", cmd.ReceiverID).Msg("append message failed")
		h.sendError(c, ErrCodePersistence, "Failed to send message. Please try again.")
		return
	}

	// Broadcast only after the message is durable.
	key := ChannelKeyFor(c.UserID, cmd.ReceiverID)
	h.broadcast(key, &Event{
		Kind:    EventNewMessage,
		Channel: key,
		Message: &Message{
			ID:             saved.ID,
			SenderID:       saved.SenderID,
			SenderUsername: c.Username,
			ReceiverID:     saved.ReceiverID,
			Text:           saved.Text,
			CreatedAt:      saved.CreatedAt,
		},
	})
}

func (h *Hub) handleClear(ctx context.Context, c *Client, cmd *Command) {
	if cmd.ReceiverID == 0 || cmd.UserID == 0 || cmd.Username == "" {
		h.sendError(c, ErrCodeInvalidTarget, "Missing required data")
		return
	}
	if cmd.ReceiverID == c.UserID {
		h.sendError(c, ErrCodeInvalidTarget, "Cannot clear chat with yourself")
		return
	}

	if _, err := h.store.GetUserByID(ctx, cmd.ReceiverID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.sendError(c, ErrCodeInvalidTarget, "Receiver not found")
		} else {
			h.log.Error().Err(err).Int64("receiver_id", cmd.ReceiverID).Msg("receiver lookup failed")
			h.sendError(c, ErrCodePersistence, "Failed to clear chat. Please try again.")
		}
		return
	}

	count, err := h.store.ClearConversation(ctx, c.UserID, cmd.ReceiverID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", c.UserID).Int64("receiver_id", cmd.ReceiverID).Msg("clear conversation failed")
		h.sendError(c, ErrCodePersistence, "Failed to clear chat. Please try again.")
		return
	}

	key := ChannelKeyFor(c.UserID, cmd.ReceiverID)
	h.log.Info().Str("channel", string(key)).Int64("deleted", count).Str("cleared_by", c.Username).Msg("chat cleared")

	// Subscribers are notified even when nothing was deleted.
	h.broadcast(key, &Event{
		Kind:    EventChatCleared,
		Channel: key,
		Cleared: &ClearedInfo{
			ClearedBy: c.Username,
			ClearedAt: time.Now().UTC(),
		},
	})
}

// broadcast delivers the event to every current subscriber of the channel
// and nobody else.
func (h *Hub) broadcast(key ChannelKey, ev *Event) {
	for _, sub := range h.registry.Subscribers(key) {
		h.deliver(sub, ev)
	}
}

func (h *Hub) deliver(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
		h.log.Warn().Str("client_id", c.ID).Msg("event dropped for slow consumer")
	}
}

func (h *Hub) sendError(c *Client, code, msg string) {
	h.deliver(c, &Event{Kind: EventError, Error: coreError(code, msg)})
}

func (h *Hub) sendCoreError(c *Client, err error) {
	var ce *CoreError
	if errors.As(err, &ce) {
		h.deliver(c, &Event{Kind: EventError, Error: ce})
		return
	}
	h.deliver(c, &Event{Kind: EventError, Error: coreError(ErrCodePersistence, err.Error())})
}
