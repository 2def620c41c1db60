package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ghostnote-im/ghostnote-backend/internal/api/middleware"
	"github.com/ghostnote-im/ghostnote-backend/internal/api/response"
	apperrors "github.com/ghostnote-im/ghostnote-backend/internal/errors"
	"github.com/ghostnote-im/ghostnote-backend/internal/services"
	"github.com/ghostnote-im/ghostnote-backend/internal/validator"
	"github.com/labstack/echo/v4"
)

// parseIdentityParam validates and converts a 6-digit identity path or
// query parameter.
func parseIdentityParam(raw string) (int, error) {
	if err := validator.ValidateIdentityID(raw); err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(raw))
}

// MessageHandler handles message-related HTTP requests
type MessageHandler struct {
	messages *services.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// SendMessageRequest represents the request body for sending a text message
type SendMessageRequest struct {
	TargetID int    `json:"target_id"`
	Content  string `json:"content"`
}

// Send handles POST /api/messages
func (h *MessageHandler) Send(c echo.Context) error {
	senderID, ok := middleware.IdentityID(c)
	if !ok {
		return response.Unauthorized(c, "no session identity")
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.TargetID == 0 {
		return response.BadRequest(c, "target_id is required")
	}

	content := validator.SanitizeContent(req.Content)
	if content == "" {
		return response.BadRequest(c, "content is required")
	}

	message, err := h.messages.SendText(c.Request().Context(), senderID, req.TargetID, content)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnknownReceiver):
			return response.NotFound(c, "target identity does not exist")
		case errors.Is(err, apperrors.ErrInvalidInput):
			return response.BadRequest(c, "content is required")
		}
		return response.InternalError(c, "failed to send message")
	}

	return response.Created(c, map[string]string{"message_id": message.MessageID})
}

// Conversation handles GET /api/conversations/:peer_id
func (h *MessageHandler) Conversation(c echo.Context) error {
	ownerID, ok := middleware.IdentityID(c)
	if !ok {
		return response.Unauthorized(c, "no session identity")
	}

	peerID, err := parseIdentityParam(c.Param("peer_id"))
	if err != nil {
		return response.BadRequest(c, "invalid peer ID")
	}

	conversation, err := h.messages.Conversation(c.Request().Context(), ownerID, peerID)
	if err != nil {
		return response.InternalError(c, "failed to load conversation")
	}

	return response.Success(c, conversation)
}

// PollNew handles GET /api/conversations/:peer_id/new, the long-poll
// claim step. The polling cadence lives in the client; this endpoint
// returns immediately with the newly claimed messages, or none.
func (h *MessageHandler) PollNew(c echo.Context) error {
	ownerID, ok := middleware.IdentityID(c)
	if !ok {
		return response.Unauthorized(c, "no session identity")
	}

	peerID, err := parseIdentityParam(c.Param("peer_id"))
	if err != nil {
		return response.BadRequest(c, "invalid peer ID")
	}

	claimed, err := h.messages.PollNew(c.Request().Context(), ownerID, peerID)
	if err != nil {
		return response.InternalError(c, "failed to poll messages")
	}

	return response.Success(c, claimed)
}
