package model

import "time"

// Reaction type values stored in post_reactions.reaction_type.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// Post is a family-scoped feed entry. The likes/dislikes/comments
// counters are denormalized onto the row and maintained transactionally
// together with the reaction and comment tables.
type Post struct {
	ID             uint64    `json:"id"`
	UserID         uint64    `json:"user_id"`
	AuthorUsername string    `json:"author_username,omitempty"`
	FamilyID       uint64    `json:"family_id"`
	Content        string    `json:"content"`
	LikesCount     int       `json:"likes_count"`
	DislikesCount  int       `json:"dislikes_count"`
	CommentsCount  int       `json:"comments_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Comment belongs to a post.
type Comment struct {
	ID             uint64    `json:"id"`
	PostID         uint64    `json:"post_id"`
	UserID         uint64    `json:"user_id"`
	AuthorUsername string    `json:"author_username,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Reaction is a single like/dislike by a user on a post. The
// (post_id, user_id) pair is unique; reacting again switches the type.
type Reaction struct {
	ID        uint64    `json:"id"`
	PostID    uint64    `json:"post_id"`
	UserID    uint64    `json:"user_id"`
	Type      string    `json:"reaction_type"`
	CreatedAt time.Time `json:"created_at"`
}
