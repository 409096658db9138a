// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// MessageSentEvent is published after a direct message is stored. It
// carries enough for downstream consumers to log or notify without
// querying the primary database.
type MessageSentEvent struct {
	MessageID         uint64 `json:"message_id"`
	SenderID          uint64 `json:"sender_id"`
	SenderUsername    string `json:"sender_username"`
	RecipientID       uint64 `json:"recipient_id"`
	RecipientUsername string `json:"recipient_username"`
	ContentLength     int    `json:"content_length"`
	SentAt            string `json:"sent_at"`
}
