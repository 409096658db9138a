package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"famlink/internal/model"
	"famlink/internal/repository"
)

type fakePosts struct {
	postSeq    uint64
	commentSeq uint64
	posts      map[uint64]*model.Post
	comments   map[uint64]*model.Comment
	reactions  map[uint64]map[uint64]string // postID -> userID -> kind
}

func newFakePosts() *fakePosts {
	return &fakePosts{
		posts:     map[uint64]*model.Post{},
		comments:  map[uint64]*model.Comment{},
		reactions: map[uint64]map[uint64]string{},
	}
}

func (f *fakePosts) Create(_ context.Context, userID, familyID uint64, content string) (model.Post, error) {
	f.postSeq++
	p := &model.Post{ID: f.postSeq, UserID: userID, FamilyID: familyID, Content: content, CreatedAt: time.Now().UTC()}
	f.posts[p.ID] = p
	return *p, nil
}

func (f *fakePosts) GetInFamily(_ context.Context, id, familyID uint64) (model.Post, error) {
	p, ok := f.posts[id]
	if !ok || p.FamilyID != familyID {
		return model.Post{}, repository.ErrNotFound
	}
	return *p, nil
}

func (f *fakePosts) ListByFamily(_ context.Context, familyID uint64, offset, limit int) ([]model.Post, error) {
	out := make([]model.Post, 0)
	for _, p := range f.posts {
		if p.FamilyID == familyID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakePosts) ListByUser(_ context.Context, userID uint64, offset, limit int) ([]model.Post, error) {
	out := make([]model.Post, 0)
	for _, p := range f.posts {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakePosts) ListByFamilyInWindow(_ context.Context, familyID uint64, from, to string) ([]model.Post, error) {
	return f.ListByFamily(context.Background(), familyID, 0, 0)
}

func (f *fakePosts) ListByUserInWindow(_ context.Context, userID uint64, from, to string) ([]model.Post, error) {
	return f.ListByUser(context.Background(), userID, 0, 0)
}

func (f *fakePosts) Search(_ context.Context, familyID uint64, query string, offset, limit int) ([]model.Post, int, error) {
	out := make([]model.Post, 0)
	for _, p := range f.posts {
		if p.FamilyID == familyID && strings.Contains(strings.ToLower(p.Content), strings.ToLower(query)) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (f *fakePosts) UpdateContent(_ context.Context, id uint64, content string) (model.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return model.Post{}, repository.ErrNotFound
	}
	p.Content = content
	return *p, nil
}

func (f *fakePosts) Delete(_ context.Context, id uint64) error {
	delete(f.posts, id)
	return nil
}

func (f *fakePosts) GetReaction(_ context.Context, postID, userID uint64) (model.Reaction, error) {
	if kind, ok := f.reactions[postID][userID]; ok {
		return model.Reaction{PostID: postID, UserID: userID, Type: kind}, nil
	}
	return model.Reaction{}, repository.ErrNotFound
}

func (f *fakePosts) SetReaction(_ context.Context, postID, userID uint64, kind string) (model.Reaction, error) {
	p, ok := f.posts[postID]
	if !ok {
		return model.Reaction{}, repository.ErrNotFound
	}
	if f.reactions[postID] == nil {
		f.reactions[postID] = map[uint64]string{}
	}
	prev, had := f.reactions[postID][userID]
	if had && prev == kind {
		return model.Reaction{PostID: postID, UserID: userID, Type: kind}, nil
	}
	if had {
		f.bump(p, prev, -1)
	}
	f.reactions[postID][userID] = kind
	f.bump(p, kind, +1)
	return model.Reaction{PostID: postID, UserID: userID, Type: kind}, nil
}

func (f *fakePosts) RemoveReaction(_ context.Context, postID, userID uint64) error {
	kind, ok := f.reactions[postID][userID]
	if !ok {
		return repository.ErrNotFound
	}
	delete(f.reactions[postID], userID)
	if p, ok := f.posts[postID]; ok {
		f.bump(p, kind, -1)
	}
	return nil
}

func (f *fakePosts) bump(p *model.Post, kind string, delta int) {
	if kind == model.ReactionLike {
		p.LikesCount += delta
	} else {
		p.DislikesCount += delta
	}
}

func (f *fakePosts) ListComments(_ context.Context, postID uint64) ([]model.Comment, error) {
	out := make([]model.Comment, 0)
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePosts) GetComment(_ context.Context, id uint64) (model.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return model.Comment{}, repository.ErrNotFound
	}
	return *c, nil
}

func (f *fakePosts) CreateComment(_ context.Context, postID, userID uint64, content string) (model.Comment, error) {
	f.commentSeq++
	c := &model.Comment{ID: f.commentSeq, PostID: postID, UserID: userID, Content: content}
	f.comments[c.ID] = c
	if p, ok := f.posts[postID]; ok {
		p.CommentsCount++
	}
	return *c, nil
}

func (f *fakePosts) UpdateComment(_ context.Context, id uint64, content string) (model.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return model.Comment{}, repository.ErrNotFound
	}
	c.Content = content
	return *c, nil
}

func (f *fakePosts) DeleteComment(_ context.Context, id, postID uint64) error {
	if _, ok := f.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.comments, id)
	if p, ok := f.posts[postID]; ok && p.CommentsCount > 0 {
		p.CommentsCount--
	}
	return nil
}

func newPostFixture() (*PostService, *fakePosts, *fakeUsers) {
	users := newFakeUsers()
	users.add("ana")
	users.add("ben")
	posts := newFakePosts()
	return NewPostService(posts, users), posts, users
}

func TestPostFamilyScoping(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newPostFixture()

	p, err := svc.Create(ctx, 1, 10, "family ten post")
	require.NoError(t, err)

	t.Run("visible in its own family", func(t *testing.T) {
		got, err := svc.Get(ctx, 10, p.ID)
		require.NoError(t, err)
		require.Equal(t, p.ID, got.ID)
	})

	t.Run("another family sees not found", func(t *testing.T) {
		_, err := svc.Get(ctx, 11, p.ID)
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestPostAuthorOnlyEdits(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newPostFixture()

	p, err := svc.Create(ctx, 1, 10, "original")
	require.NoError(t, err)

	t.Run("author edits", func(t *testing.T) {
		got, err := svc.Update(ctx, 1, 10, p.ID, "edited")
		require.NoError(t, err)
		require.Equal(t, "edited", got.Content)
	})

	t.Run("non-author is forbidden", func(t *testing.T) {
		_, err := svc.Update(ctx, 2, 10, p.ID, "hijack")
		require.ErrorIs(t, err, repository.ErrForbidden)
		require.ErrorIs(t, svc.Delete(ctx, 2, 10, p.ID), repository.ErrForbidden)
	})

	t.Run("blank content rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, 1, 10, p.ID, "   ")
		var ve ValidationError
		require.ErrorAs(t, err, &ve)
	})
}

func TestReactions(t *testing.T) {
	ctx := context.Background()
	svc, posts, _ := newPostFixture()

	p, err := svc.Create(ctx, 1, 10, "react to me")
	require.NoError(t, err)

	t.Run("unknown kind rejected", func(t *testing.T) {
		_, err := svc.React(ctx, 2, 10, p.ID, "love")
		var ve ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("like then switch to dislike moves both counters", func(t *testing.T) {
		_, err := svc.React(ctx, 2, 10, p.ID, model.ReactionLike)
		require.NoError(t, err)
		got, _ := svc.Get(ctx, 10, p.ID)
		require.Equal(t, 1, got.LikesCount)

		_, err = svc.React(ctx, 2, 10, p.ID, model.ReactionDislike)
		require.NoError(t, err)
		got, _ = svc.Get(ctx, 10, p.ID)
		require.Equal(t, 0, got.LikesCount)
		require.Equal(t, 1, got.DislikesCount)
	})

	t.Run("repeating the same reaction is a no-op", func(t *testing.T) {
		_, err := svc.React(ctx, 2, 10, p.ID, model.ReactionDislike)
		require.NoError(t, err)
		got, _ := svc.Get(ctx, 10, p.ID)
		require.Equal(t, 1, got.DislikesCount)
	})

	t.Run("remove clears the counter", func(t *testing.T) {
		require.NoError(t, svc.RemoveReaction(ctx, 2, 10, p.ID))
		got, _ := svc.Get(ctx, 10, p.ID)
		require.Equal(t, 0, got.DislikesCount)
		require.Empty(t, posts.reactions[p.ID])
	})

	t.Run("reacting in the wrong family is not found", func(t *testing.T) {
		_, err := svc.React(ctx, 2, 11, p.ID, model.ReactionLike)
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newPostFixture()

	p, err := svc.Create(ctx, 1, 10, "discuss")
	require.NoError(t, err)

	cm, err := svc.CreateComment(ctx, 2, 10, p.ID, "nice one")
	require.NoError(t, err)

	t.Run("counter follows comment lifecycle", func(t *testing.T) {
		got, _ := svc.Get(ctx, 10, p.ID)
		require.Equal(t, 1, got.CommentsCount)

		require.NoError(t, svc.DeleteComment(ctx, 2, cm.ID))
		got, _ = svc.Get(ctx, 10, p.ID)
		require.Equal(t, 0, got.CommentsCount)
	})

	t.Run("non-author cannot edit a comment", func(t *testing.T) {
		cm, err := svc.CreateComment(ctx, 2, 10, p.ID, "mine")
		require.NoError(t, err)
		_, err = svc.UpdateComment(ctx, 1, cm.ID, "not yours")
		require.ErrorIs(t, err, repository.ErrForbidden)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newPostFixture()

	_, err := svc.Create(ctx, 1, 10, "Trip to the lake")
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, 10, "lake photos are up")
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, 11, "lake post in another family")
	require.NoError(t, err)

	t.Run("matches stay inside the family", func(t *testing.T) {
		results, total, err := svc.Search(ctx, 10, "lake", 0, 50)
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Len(t, results, 2)
	})

	t.Run("blank query is empty not error", func(t *testing.T) {
		results, total, err := svc.Search(ctx, 10, "   ", 0, 50)
		require.NoError(t, err)
		require.Zero(t, total)
		require.Empty(t, results)
	})
}
