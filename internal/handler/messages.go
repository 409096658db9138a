package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"famlink/internal/middleware"
	"famlink/internal/queue"
	"famlink/internal/repository"
	"famlink/internal/service"
)

// MessageHandler serves direct messages. Messaging is user-to-user, not
// family-scoped: two users can talk without sharing a family.
type MessageHandler struct {
	Messages *service.MessageService
}

func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{Messages: messages}
}

type sendMessageReq struct {
	RecipientID uint64 `json:"recipient_id"`
	Content     string `json:"content"`
}

// Conversations returns one summary per counterpart, newest conversation
// first, with per-conversation unread counts.
func (h *MessageHandler) Conversations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sums, err := h.Messages.ListConversations(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list conversations failed"})
	}
	return c.JSON(http.StatusOK, sums)
}

// Thread returns the full history with one counterpart, oldest first.
func (h *MessageHandler) Thread(c echo.Context) error {
	counterpartID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil || counterpartID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msgs, err := h.Messages.ListMessages(ctx, middleware.CurrentUserID(c), counterpartID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list messages failed"})
	}
	return c.JSON(http.StatusOK, msgs)
}

// Send stores a message and emits a message.sent event. The publish is
// best-effort in the background; a broker outage never fails the send.
func (h *MessageHandler) Send(c echo.Context) error {
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RecipientID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "recipient_id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Messages.Send(ctx, middleware.CurrentUserID(c), req.RecipientID, req.Content)
	if err != nil {
		var ve service.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "recipient not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send message failed"})
	}

	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = queue.PublishMessageSent(pubCtx, queue.MessageSentEvent{
			MessageID:         m.ID,
			SenderID:          m.SenderID,
			SenderUsername:    m.SenderUsername,
			RecipientID:       m.RecipientID,
			RecipientUsername: m.RecipientUsername,
			ContentLength:     utf8.RuneCountInString(m.Content),
			SentAt:            m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, m)
}

// MarkRead marks a message addressed to the caller as read. Repeating
// the call returns the message unchanged.
func (h *MessageHandler) MarkRead(c echo.Context) error {
	messageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || messageID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Messages.MarkRead(ctx, middleware.CurrentUserID(c), messageID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the recipient can mark a message read"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mark read failed"})
	}
	return c.JSON(http.StatusOK, m)
}

// UnreadCount returns the caller's total unread messages.
func (h *MessageHandler) UnreadCount(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Messages.UnreadCount(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unread count failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"unread_count": n})
}
