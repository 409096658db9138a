package model

import "time"

// Message is a single direct message between two users. A row is
// immutable once written except for the read-state pair: IsRead only
// moves false→true and ReadAt is set exactly once on that transition.
// Sender and recipient usernames are denormalized into the struct by
// repository JOINs for display; they are not stored on the row.
type Message struct {
	ID                uint64     `json:"id"`
	SenderID          uint64     `json:"sender_id"`
	SenderUsername    string     `json:"sender_username,omitempty"`
	RecipientID       uint64     `json:"recipient_id"`
	RecipientUsername string     `json:"recipient_username,omitempty"`
	Content           string     `json:"content"`
	IsRead            bool       `json:"is_read"`
	ReadAt            *time.Time `json:"read_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ConversationSummary is the derived per-counterpart view over the
// message log. It is recomputed from message rows on every request and
// never persisted, so it cannot drift from the log.
type ConversationSummary struct {
	CounterpartID       uint64  `json:"counterpart_id"`
	CounterpartUsername string  `json:"counterpart_username"`
	LastMessage         Message `json:"last_message"`
	UnreadCount         int     `json:"unread_count"`
}
