package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"famlink/internal/model"
	"famlink/internal/repository"
)

// Longest accepted message content in characters, after trimming.
const MaxMessageLen = 5000

// MessageService implements direct messages: the append-only log,
// derived conversation views and read/unread tracking. Conversation
// summaries and unread counts are recomputed from message rows on every
// call; there is no cached state that could drift from the log.
type MessageService struct {
	messages MessageStore
	users    UserStore
}

func NewMessageService(messages MessageStore, users UserStore) *MessageService {
	return &MessageService{messages: messages, users: users}
}

// Send validates and appends a message. The recipient must exist and
// differ from the sender; content must be 1..5000 characters after trim.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID uint64, content string) (model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Message{}, ValidationError("message content is required")
	}
	if utf8.RuneCountInString(content) > MaxMessageLen {
		return model.Message{}, ValidationError("message content must be at most 5000 characters")
	}
	if senderID == recipientID {
		return model.Message{}, ValidationError("cannot send a message to yourself")
	}
	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		return model.Message{}, err
	}
	return s.messages.Insert(ctx, senderID, recipientID, content)
}

// ListConversations groups the viewer's messages by counterpart and
// returns one summary per counterpart, ordered by the timestamp of the
// last message, newest conversation first. The store hands back a single
// scan in descending order, so the first row seen per counterpart is the
// conversation's last message; unread messages addressed to the viewer
// are tallied in the same pass.
func (s *MessageService) ListConversations(ctx context.Context, viewerID uint64) ([]model.ConversationSummary, error) {
	msgs, err := s.messages.ListInvolving(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	order := make([]uint64, 0)
	byCounterpart := make(map[uint64]*model.ConversationSummary)
	for _, m := range msgs {
		cp := m.SenderID
		cpName := m.SenderUsername
		if m.SenderID == viewerID {
			cp = m.RecipientID
			cpName = m.RecipientUsername
		}
		sum, ok := byCounterpart[cp]
		if !ok {
			sum = &model.ConversationSummary{
				CounterpartID:       cp,
				CounterpartUsername: cpName,
				LastMessage:         m,
			}
			byCounterpart[cp] = sum
			order = append(order, cp)
		}
		if m.RecipientID == viewerID && !m.IsRead {
			sum.UnreadCount++
		}
	}

	out := make([]model.ConversationSummary, 0, len(order))
	for _, cp := range order {
		out = append(out, *byCounterpart[cp])
	}
	return out, nil
}

// ListMessages returns the full history between the viewer and the
// counterpart, ascending. An unknown counterpart is ErrNotFound; a known
// counterpart with no history is an empty list, not an error.
func (s *MessageService) ListMessages(ctx context.Context, viewerID, counterpartID uint64) ([]model.Message, error) {
	if _, err := s.users.GetByID(ctx, counterpartID); err != nil {
		return nil, err
	}
	return s.messages.ListBetween(ctx, viewerID, counterpartID)
}

// MarkRead marks a message addressed to the viewer as read. Only the
// recipient may mark; a repeat call is a no-op and read_at keeps its
// original value.
func (s *MessageService) MarkRead(ctx context.Context, viewerID, messageID uint64) (model.Message, error) {
	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return model.Message{}, err
	}
	if m.RecipientID != viewerID {
		return model.Message{}, repository.ErrForbidden
	}
	if m.IsRead {
		return m, nil
	}
	if err := s.messages.MarkRead(ctx, messageID, viewerID); err != nil {
		return model.Message{}, err
	}
	return s.messages.GetByID(ctx, messageID)
}

// UnreadCount counts unread messages addressed to the viewer, computed
// fresh per call.
func (s *MessageService) UnreadCount(ctx context.Context, viewerID uint64) (int, error) {
	return s.messages.CountUnread(ctx, viewerID)
}
