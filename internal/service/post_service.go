package service

import (
	"context"
	"strings"

	"famlink/internal/model"
	"famlink/internal/repository"
)

// PostService covers the family feed: posts, comments and reactions.
// Every read and write is scoped to the caller's active family; posts
// from other families behave exactly like missing posts.
type PostService struct {
	posts PostStore
	users UserStore
}

func NewPostService(posts PostStore, users UserStore) *PostService {
	return &PostService{posts: posts, users: users}
}

// List returns the active family's feed, newest first.
func (s *PostService) List(ctx context.Context, familyID uint64, offset, limit int) ([]model.Post, error) {
	return s.posts.ListByFamily(ctx, familyID, offset, limit)
}

// Get returns a post from the active family.
func (s *PostService) Get(ctx context.Context, familyID, postID uint64) (model.Post, error) {
	return s.posts.GetInFamily(ctx, postID, familyID)
}

// Create appends a post to the active family's feed.
func (s *PostService) Create(ctx context.Context, userID, familyID uint64, content string) (model.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Post{}, ValidationError("post content is required")
	}
	return s.posts.Create(ctx, userID, familyID, content)
}

// Update replaces a post's content; only the author may edit.
func (s *PostService) Update(ctx context.Context, userID, familyID, postID uint64, content string) (model.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Post{}, ValidationError("post content is required")
	}
	p, err := s.posts.GetInFamily(ctx, postID, familyID)
	if err != nil {
		return model.Post{}, err
	}
	if p.UserID != userID {
		return model.Post{}, repository.ErrForbidden
	}
	return s.posts.UpdateContent(ctx, postID, content)
}

// Delete removes a post; only the author may delete.
func (s *PostService) Delete(ctx context.Context, userID, familyID, postID uint64) error {
	p, err := s.posts.GetInFamily(ctx, postID, familyID)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return repository.ErrForbidden
	}
	return s.posts.Delete(ctx, postID)
}

// React records a like or dislike. Reacting again with the same kind is
// a no-op; with the other kind it switches and both counters move.
func (s *PostService) React(ctx context.Context, userID, familyID, postID uint64, kind string) (model.Reaction, error) {
	if kind != model.ReactionLike && kind != model.ReactionDislike {
		return model.Reaction{}, ValidationError("unknown reaction type")
	}
	if _, err := s.posts.GetInFamily(ctx, postID, familyID); err != nil {
		return model.Reaction{}, err
	}
	return s.posts.SetReaction(ctx, postID, userID, kind)
}

// RemoveReaction drops the caller's reaction from a post.
func (s *PostService) RemoveReaction(ctx context.Context, userID, familyID, postID uint64) error {
	if _, err := s.posts.GetInFamily(ctx, postID, familyID); err != nil {
		return err
	}
	return s.posts.RemoveReaction(ctx, postID, userID)
}

// ListComments returns a post's comments, oldest first.
func (s *PostService) ListComments(ctx context.Context, familyID, postID uint64) ([]model.Comment, error) {
	if _, err := s.posts.GetInFamily(ctx, postID, familyID); err != nil {
		return nil, err
	}
	return s.posts.ListComments(ctx, postID)
}

// CreateComment adds a comment under a post in the active family.
func (s *PostService) CreateComment(ctx context.Context, userID, familyID, postID uint64, content string) (model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Comment{}, ValidationError("comment content is required")
	}
	if _, err := s.posts.GetInFamily(ctx, postID, familyID); err != nil {
		return model.Comment{}, err
	}
	return s.posts.CreateComment(ctx, postID, userID, content)
}

// UpdateComment edits a comment; only the author may edit.
func (s *PostService) UpdateComment(ctx context.Context, userID, commentID uint64, content string) (model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Comment{}, ValidationError("comment content is required")
	}
	c, err := s.posts.GetComment(ctx, commentID)
	if err != nil {
		return model.Comment{}, err
	}
	if c.UserID != userID {
		return model.Comment{}, repository.ErrForbidden
	}
	return s.posts.UpdateComment(ctx, commentID, content)
}

// DeleteComment removes a comment; only the author may delete.
func (s *PostService) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	c, err := s.posts.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return repository.ErrForbidden
	}
	return s.posts.DeleteComment(ctx, commentID, c.PostID)
}

// Search matches post content in the active family, newest first, and
// returns the total match count alongside the page.
func (s *PostService) Search(ctx context.Context, familyID uint64, query string, offset, limit int) ([]model.Post, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Post{}, 0, nil
	}
	return s.posts.Search(ctx, familyID, query, offset, limit)
}

// ListByUser returns a user's posts across families, verifying the user
// exists first.
func (s *PostService) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.Post, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.posts.ListByUser(ctx, userID, offset, limit)
}
