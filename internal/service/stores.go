package service

import (
	"context"
	"time"

	"famlink/internal/model"
)

// The store interfaces below are what the services consume. The
// repository package provides the MySQL implementations; tests substitute
// in-memory fakes.

// UserStore accesses user rows.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash, fullName, bio string) (uint64, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context, excludeID uint64, offset, limit int) ([]model.User, error)
	UpdateProfile(ctx context.Context, id uint64, fullName, bio *string) (model.User, error)
}

// FamilyStore accesses family and membership rows.
type FamilyStore interface {
	GetByName(ctx context.Context, name string) (model.Family, error)
	GetByID(ctx context.Context, id uint64) (model.Family, error)
	Create(ctx context.Context, name string) (model.Family, error)
	AddMember(ctx context.Context, userID, familyID uint64) error
	IsMember(ctx context.Context, userID, familyID uint64) (bool, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Family, error)
	ListMembers(ctx context.Context, familyID uint64) ([]model.User, error)
}

// MessageStore accesses the append-only message log.
type MessageStore interface {
	Insert(ctx context.Context, senderID, recipientID uint64, content string) (model.Message, error)
	GetByID(ctx context.Context, id uint64) (model.Message, error)
	MarkRead(ctx context.Context, id, recipientID uint64) error
	ListBetween(ctx context.Context, a, b uint64) ([]model.Message, error)
	ListInvolving(ctx context.Context, userID uint64) ([]model.Message, error)
	ListBetweenInWindow(ctx context.Context, a, b uint64, from, to string) ([]model.Message, error)
	CountUnread(ctx context.Context, userID uint64) (int, error)
}

// TokenStore persists hashed refresh tokens.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// PostStore accesses posts, comments and reactions.
type PostStore interface {
	Create(ctx context.Context, userID, familyID uint64, content string) (model.Post, error)
	GetInFamily(ctx context.Context, id, familyID uint64) (model.Post, error)
	ListByFamily(ctx context.Context, familyID uint64, offset, limit int) ([]model.Post, error)
	ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.Post, error)
	ListByFamilyInWindow(ctx context.Context, familyID uint64, from, to string) ([]model.Post, error)
	ListByUserInWindow(ctx context.Context, userID uint64, from, to string) ([]model.Post, error)
	Search(ctx context.Context, familyID uint64, query string, offset, limit int) ([]model.Post, int, error)
	UpdateContent(ctx context.Context, id uint64, content string) (model.Post, error)
	Delete(ctx context.Context, id uint64) error
	GetReaction(ctx context.Context, postID, userID uint64) (model.Reaction, error)
	SetReaction(ctx context.Context, postID, userID uint64, kind string) (model.Reaction, error)
	RemoveReaction(ctx context.Context, postID, userID uint64) error
	ListComments(ctx context.Context, postID uint64) ([]model.Comment, error)
	GetComment(ctx context.Context, id uint64) (model.Comment, error)
	CreateComment(ctx context.Context, postID, userID uint64, content string) (model.Comment, error)
	UpdateComment(ctx context.Context, id uint64, content string) (model.Comment, error)
	DeleteComment(ctx context.Context, id, postID uint64) error
}
