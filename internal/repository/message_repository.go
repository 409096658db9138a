package repository

import (
	"context"
	"database/sql"

	"famlink/internal/model"
)

// MessageRepo provides access to the append-only 'messages' table.
// Conversation views and unread counts are always derived from these
// rows on demand; nothing about them is materialized.
type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

const messageSelect = `SELECT m.id, m.sender_id, s.username, m.recipient_id, r.username,
       m.content, m.is_read, m.read_at, m.created_at
  FROM messages m
  JOIN users s ON s.id = m.sender_id
  JOIN users r ON r.id = m.recipient_id`

func scanMessage(row interface{ Scan(...any) error }) (model.Message, error) {
	var m model.Message
	var readAt sql.NullTime
	err := row.Scan(&m.ID, &m.SenderID, &m.SenderUsername, &m.RecipientID, &m.RecipientUsername,
		&m.Content, &m.IsRead, &readAt, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return m, ErrNotFound
	}
	if err != nil {
		return m, err
	}
	if readAt.Valid {
		t := readAt.Time
		m.ReadAt = &t
	}
	return m, nil
}

// Insert appends a message row and returns it fully populated.
func (r *MessageRepo) Insert(ctx context.Context, senderID, recipientID uint64, content string) (model.Message, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO messages (sender_id, recipient_id, content) VALUES (?,?,?)",
		senderID, recipientID, content)
	if err != nil {
		return model.Message{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Message{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a single message.
func (r *MessageRepo) GetByID(ctx context.Context, id uint64) (model.Message, error) {
	row := r.DB.QueryRowContext(ctx, messageSelect+" WHERE m.id=? LIMIT 1", id)
	return scanMessage(row)
}

// MarkRead flips is_read for a message addressed to recipientID. The
// guard on is_read=0 means read_at is written at most once no matter how
// many callers race; a second call simply matches zero rows.
func (r *MessageRepo) MarkRead(ctx context.Context, id, recipientID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE messages SET is_read=1, read_at=NOW() WHERE id=? AND recipient_id=? AND is_read=0",
		id, recipientID)
	return err
}

// ListBetween returns the full history between the unordered user pair,
// ascending by creation time with the id as a tiebreak so display order
// is total.
func (r *MessageRepo) ListBetween(ctx context.Context, a, b uint64) ([]model.Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		messageSelect+` WHERE (m.sender_id=? AND m.recipient_id=?) OR (m.sender_id=? AND m.recipient_id=?)
		 ORDER BY m.created_at ASC, m.id ASC`, a, b, b, a)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// ListInvolving returns every message sent or received by the user,
// newest first (id breaks created_at ties). The message service derives
// conversation summaries from this single ordered scan.
func (r *MessageRepo) ListInvolving(ctx context.Context, userID uint64) ([]model.Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		messageSelect+` WHERE m.sender_id=? OR m.recipient_id=?
		 ORDER BY m.created_at DESC, m.id DESC`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// ListBetweenInWindow returns the pair's messages inside [from, to),
// ascending. Used by the daily summary endpoints.
func (r *MessageRepo) ListBetweenInWindow(ctx context.Context, a, b uint64, from, to string) ([]model.Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		messageSelect+` WHERE ((m.sender_id=? AND m.recipient_id=?) OR (m.sender_id=? AND m.recipient_id=?))
		   AND m.created_at >= ? AND m.created_at < ?
		 ORDER BY m.created_at ASC, m.id ASC`, a, b, b, a, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// CountUnread counts messages addressed to the user that are still
// unread. Computed fresh on every call; never cached.
func (r *MessageRepo) CountUnread(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE recipient_id=? AND is_read=0", userID).Scan(&n)
	return n, err
}

func collectMessages(rows *sql.Rows) ([]model.Message, error) {
	msgs := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
