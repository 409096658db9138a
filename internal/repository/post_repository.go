package repository

import (
	"context"
	"database/sql"
	"strings"

	"famlink/internal/model"
)

// PostRepo provides access to the 'posts', 'comments' and
// 'post_reactions' tables. Reaction changes run inside a transaction so
// the denormalized counters on the post row always match the reaction
// rows.
type PostRepo struct{ DB *sql.DB }

func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{DB: db} }

const postSelect = `SELECT p.id, p.user_id, u.username, p.family_id, p.content,
       p.likes_count, p.dislikes_count, p.comments_count, p.created_at, p.updated_at
  FROM posts p
  JOIN users u ON u.id = p.user_id`

func scanPost(row interface{ Scan(...any) error }) (model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.UserID, &p.AuthorUsername, &p.FamilyID, &p.Content,
		&p.LikesCount, &p.DislikesCount, &p.CommentsCount, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	return p, err
}

// Create inserts a post and returns the stored row.
func (r *PostRepo) Create(ctx context.Context, userID, familyID uint64, content string) (model.Post, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO posts (user_id, family_id, content) VALUES (?,?,?)",
		userID, familyID, content)
	if err != nil {
		return model.Post{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Post{}, err
	}
	return r.getByID(ctx, uint64(id))
}

func (r *PostRepo) getByID(ctx context.Context, id uint64) (model.Post, error) {
	return scanPost(r.DB.QueryRowContext(ctx, postSelect+" WHERE p.id=? LIMIT 1", id))
}

// GetInFamily fetches a post only when it belongs to the given family.
// Posts from other families are indistinguishable from missing ones.
func (r *PostRepo) GetInFamily(ctx context.Context, id, familyID uint64) (model.Post, error) {
	return scanPost(r.DB.QueryRowContext(ctx,
		postSelect+" WHERE p.id=? AND p.family_id=? LIMIT 1", id, familyID))
}

// ListByFamily returns the family feed, newest first.
func (r *PostRepo) ListByFamily(ctx context.Context, familyID uint64, offset, limit int) ([]model.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		postSelect+" WHERE p.family_id=? ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?",
		familyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

// ListByUser returns a user's posts across families, newest first.
func (r *PostRepo) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		postSelect+" WHERE p.user_id=? ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?",
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

// ListByFamilyInWindow returns the family's posts with created_at in
// [from, to), newest first. Used by the daily summary endpoints.
func (r *PostRepo) ListByFamilyInWindow(ctx context.Context, familyID uint64, from, to string) ([]model.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		postSelect+` WHERE p.family_id=? AND p.created_at >= ? AND p.created_at < ?
		 ORDER BY p.created_at DESC, p.id DESC`, familyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

// ListByUserInWindow returns one user's posts with created_at in
// [from, to), newest first.
func (r *PostRepo) ListByUserInWindow(ctx context.Context, userID uint64, from, to string) ([]model.Post, error) {
	rows, err := r.DB.QueryContext(ctx,
		postSelect+` WHERE p.user_id=? AND p.created_at >= ? AND p.created_at < ?
		 ORDER BY p.created_at DESC, p.id DESC`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

// Search matches post content case-insensitively and returns a page of
// results in the given family plus the total match count.
func (r *PostRepo) Search(ctx context.Context, familyID uint64, query string, offset, limit int) ([]model.Post, int, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var total int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE family_id=? AND LOWER(content) LIKE ?",
		familyID, pattern).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		postSelect+` WHERE p.family_id=? AND LOWER(p.content) LIKE ?
		 ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		familyID, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// UpdateContent replaces a post's content and returns the updated row.
func (r *PostRepo) UpdateContent(ctx context.Context, id uint64, content string) (model.Post, error) {
	if _, err := r.DB.ExecContext(ctx, "UPDATE posts SET content=? WHERE id=?", content, id); err != nil {
		return model.Post{}, err
	}
	return r.getByID(ctx, id)
}

// Delete removes a post; comments and reactions cascade at the schema
// level.
func (r *PostRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM posts WHERE id=?", id)
	return err
}

// GetReaction returns the caller's reaction on a post, or ErrNotFound.
func (r *PostRepo) GetReaction(ctx context.Context, postID, userID uint64) (model.Reaction, error) {
	var re model.Reaction
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, post_id, user_id, reaction_type, created_at FROM post_reactions WHERE post_id=? AND user_id=? LIMIT 1",
		postID, userID).Scan(&re.ID, &re.PostID, &re.UserID, &re.Type, &re.CreatedAt)
	if err == sql.ErrNoRows {
		return re, ErrNotFound
	}
	return re, err
}

// SetReaction records kind ("like"/"dislike") by userID on postID and
// keeps the post counters in step. Reacting with the current kind is a
// no-op; reacting with the other kind flips both counters. All writes
// happen in one transaction.
func (r *PostRepo) SetReaction(ctx context.Context, postID, userID uint64, kind string) (model.Reaction, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Reaction{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var re model.Reaction
	err = tx.QueryRowContext(ctx,
		"SELECT id, post_id, user_id, reaction_type, created_at FROM post_reactions WHERE post_id=? AND user_id=? FOR UPDATE",
		postID, userID).Scan(&re.ID, &re.PostID, &re.UserID, &re.Type, &re.CreatedAt)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.ExecContext(ctx,
			"INSERT INTO post_reactions (post_id, user_id, reaction_type) VALUES (?,?,?)",
			postID, userID, kind)
		if err != nil {
			return model.Reaction{}, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return model.Reaction{}, err
		}
		if err := bumpCounter(ctx, tx, postID, kind, +1); err != nil {
			return model.Reaction{}, err
		}
		re = model.Reaction{ID: uint64(id), PostID: postID, UserID: userID, Type: kind}
	case err != nil:
		return model.Reaction{}, err
	case re.Type == kind:
		// Already reacted this way; nothing to change.
		return re, tx.Commit()
	default:
		if _, err := tx.ExecContext(ctx,
			"UPDATE post_reactions SET reaction_type=? WHERE id=?", kind, re.ID); err != nil {
			return model.Reaction{}, err
		}
		if err := bumpCounter(ctx, tx, postID, re.Type, -1); err != nil {
			return model.Reaction{}, err
		}
		if err := bumpCounter(ctx, tx, postID, kind, +1); err != nil {
			return model.Reaction{}, err
		}
		re.Type = kind
	}
	if err := tx.Commit(); err != nil {
		return model.Reaction{}, err
	}
	return re, nil
}

// RemoveReaction deletes the caller's reaction and decrements the
// matching counter in the same transaction. ErrNotFound when no
// reaction exists.
func (r *PostRepo) RemoveReaction(ctx context.Context, postID, userID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var id uint64
	var kind string
	err = tx.QueryRowContext(ctx,
		"SELECT id, reaction_type FROM post_reactions WHERE post_id=? AND user_id=? FOR UPDATE",
		postID, userID).Scan(&id, &kind)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM post_reactions WHERE id=?", id); err != nil {
		return err
	}
	if err := bumpCounter(ctx, tx, postID, kind, -1); err != nil {
		return err
	}
	return tx.Commit()
}

func bumpCounter(ctx context.Context, tx *sql.Tx, postID uint64, kind string, delta int) error {
	col := "likes_count"
	if kind == model.ReactionDislike {
		col = "dislikes_count"
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE posts SET "+col+" = "+col+" + ? WHERE id=?", delta, postID)
	return err
}

const commentSelect = `SELECT c.id, c.post_id, c.user_id, u.username, c.content, c.created_at, c.updated_at
  FROM comments c
  JOIN users u ON u.id = c.user_id`

func scanComment(row interface{ Scan(...any) error }) (model.Comment, error) {
	var c model.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.AuthorUsername, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

// ListComments returns a post's comments, oldest first.
func (r *PostRepo) ListComments(ctx context.Context, postID uint64) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		commentSelect+" WHERE c.post_id=? ORDER BY c.created_at ASC, c.id ASC", postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := make([]model.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// GetComment fetches a single comment.
func (r *PostRepo) GetComment(ctx context.Context, id uint64) (model.Comment, error) {
	return scanComment(r.DB.QueryRowContext(ctx, commentSelect+" WHERE c.id=? LIMIT 1", id))
}

// CreateComment inserts a comment and bumps comments_count in one
// transaction.
func (r *PostRepo) CreateComment(ctx context.Context, postID, userID uint64, content string) (model.Comment, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Comment{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO comments (post_id, user_id, content) VALUES (?,?,?)",
		postID, userID, content)
	if err != nil {
		return model.Comment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Comment{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE posts SET comments_count = comments_count + 1 WHERE id=?", postID); err != nil {
		return model.Comment{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Comment{}, err
	}
	return r.GetComment(ctx, uint64(id))
}

// UpdateComment replaces a comment's content.
func (r *PostRepo) UpdateComment(ctx context.Context, id uint64, content string) (model.Comment, error) {
	if _, err := r.DB.ExecContext(ctx, "UPDATE comments SET content=? WHERE id=?", content, id); err != nil {
		return model.Comment{}, err
	}
	return r.GetComment(ctx, id)
}

// DeleteComment removes a comment and decrements comments_count in one
// transaction.
func (r *PostRepo) DeleteComment(ctx context.Context, id, postID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE posts SET comments_count = comments_count - 1 WHERE id=? AND comments_count > 0", postID); err != nil {
		return err
	}
	return tx.Commit()
}

func collectPosts(rows *sql.Rows) ([]model.Post, error) {
	posts := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
