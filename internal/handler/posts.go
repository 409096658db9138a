package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"famlink/internal/middleware"
	"famlink/internal/model"
	"famlink/internal/repository"
	"famlink/internal/service"
)

// PostHandler serves the family feed, comments and reactions. All routes
// run behind the family scope middleware, so the active family claim is
// present and verified by the time a handler runs.
type PostHandler struct {
	Posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{Posts: posts}
}

type postContentReq struct {
	Content string `json:"content"`
}

// List returns the active family's feed, newest first.
func (h *PostHandler) List(c echo.Context) error {
	offset, limit := pageParams(c, 50)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	posts, err := h.Posts.List(ctx, middleware.CurrentFamilyID(c), offset, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list posts failed"})
	}
	return c.JSON(http.StatusOK, posts)
}

// Get returns one post from the active family.
func (h *PostHandler) Get(c echo.Context) error {
	postID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Posts.Get(ctx, middleware.CurrentFamilyID(c), postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load post failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// Create adds a post to the active family's feed.
func (h *PostHandler) Create(c echo.Context) error {
	var req postContentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Posts.Create(ctx, middleware.CurrentUserID(c), middleware.CurrentFamilyID(c), req.Content)
	if err != nil {
		var ve service.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create post failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

// Update edits a post's content; only the author may edit.
func (h *PostHandler) Update(c echo.Context) error {
	postID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}
	var req postContentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Posts.Update(ctx, middleware.CurrentUserID(c), middleware.CurrentFamilyID(c), postID, req.Content)
	if err != nil {
		var ve service.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the author can edit a post"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update post failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a post; only the author may delete.
func (h *PostHandler) Delete(c echo.Context) error {
	postID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Posts.Delete(ctx, middleware.CurrentUserID(c), middleware.CurrentFamilyID(c), postID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the author can delete a post"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete post failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "post deleted"})
}

// Like records a like; repeating the same reaction is a no-op, an
// existing dislike switches.
func (h *PostHandler) Like(c echo.Context) error {
	return h.react(c, model.ReactionLike)
}

// Dislike records a dislike, switching an existing like.
func (h *PostHandler) Dislike(c echo.Context) error {
	return h.react(c, model.ReactionDislike)
}

func (h *PostHandler) react(c echo.Context, kind string) error {
	postID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	r, err := h.Posts.React(ctx, middleware.CurrentUserID(c), middleware.CurrentFamilyID(c), postID, kind)
	if err != nil {
		var ve service.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "react failed"})
	}
	return c.JSON(http.StatusOK, r)
}

// Unreact removes the caller's reaction from a post.
func (h *PostHandler) Unreact(c echo.Context) error {
	postID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Posts.RemoveReaction(ctx, middleware.CurrentUserID(c), middleware.CurrentFamilyID(c), postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reaction not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove reaction failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reaction removed"})
}

// Comments lists a post's comments, oldest first.
func (h *PostHandler) Comments(c echo.Context) error {
	postID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	comments, err := h.Posts.ListComments(ctx, middleware.CurrentFamilyID(c), postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list comments failed"})
	}
	return c.JSON(http.StatusOK, comments)
}

// CreateComment adds a comment under a post.
func (h *PostHandler) CreateComment(c echo.Context) error {
	postID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid post id"})
	}
	var req postContentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cm, err := h.Posts.CreateComment(ctx, middleware.CurrentUserID(c), middleware.CurrentFamilyID(c), postID, req.Content)
	if err != nil {
		var ve service.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create comment failed"})
	}
	return c.JSON(http.StatusCreated, cm)
}

// UpdateComment edits a comment; only the author may edit.
func (h *PostHandler) UpdateComment(c echo.Context) error {
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid comment id"})
	}
	var req postContentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cm, err := h.Posts.UpdateComment(ctx, middleware.CurrentUserID(c), commentID, req.Content)
	if err != nil {
		var ve service.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the author can edit a comment"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update comment failed"})
	}
	return c.JSON(http.StatusOK, cm)
}

// DeleteComment removes a comment; only the author may delete.
func (h *PostHandler) DeleteComment(c echo.Context) error {
	commentID, ok := pathID(c, "commentId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid comment id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Posts.DeleteComment(ctx, middleware.CurrentUserID(c), commentID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only the author can delete a comment"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete comment failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "comment deleted"})
}

// ByUser lists one member's posts across families.
func (h *PostHandler) ByUser(c echo.Context) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	offset, limit := pageParams(c, 50)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	posts, err := h.Posts.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list posts failed"})
	}
	return c.JSON(http.StatusOK, posts)
}

func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}
