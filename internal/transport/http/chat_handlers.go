package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pairchat/pairchat-server/internal/proto"
	"github.com/pairchat/pairchat-server/internal/store"
)

// ChatHandlers provides HTTP handlers for chat history.
type ChatHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewChatHandlers creates a new chat handlers instance.
func NewChatHandlers(st store.Store, logger *zerolog.Logger) *ChatHandlers {
	return &ChatHandlers{
		store: st,
		log:   logger,
	}
}

// MessageResponse represents a message in API responses. Timestamps use the
// same wire format as WebSocket events.
type MessageResponse struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp"`
}

// History returns the full ordered message history between the caller and
// another user.
// GET /api/chats/:user_id/messages
func (h *ChatHandlers) History(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		h.log.Error().Msg("user_id not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	otherID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || otherID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}
	if otherID == uid {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot chat with yourself"})
		return
	}

	if _, err := h.store.GetUserByID(c.Request.Context(), otherID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", otherID).Msg("failed to look up user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	messages, err := h.store.History(c.Request.Context(), uid, otherID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Int64("other_id", otherID).Msg("failed to load history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, MessageResponse{
			ID:         msg.ID,
			SenderID:   msg.SenderID,
			ReceiverID: msg.ReceiverID,
			Text:       msg.Text,
			Timestamp:  msg.CreatedAt.UTC().Format(proto.TimestampFormat),
		})
	}

	c.JSON(http.StatusOK, response)
}
