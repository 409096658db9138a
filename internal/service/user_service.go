package service

import (
	"context"
	"strings"

	"famlink/internal/model"
)

// UserService covers the user directory and profile editing.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// List returns all users except the caller, ordered by username.
func (s *UserService) List(ctx context.Context, callerID uint64, offset, limit int) ([]model.User, error) {
	return s.users.List(ctx, callerID, offset, limit)
}

// Get loads a single user.
func (s *UserService) Get(ctx context.Context, id uint64) (model.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile applies the supplied profile fields; nil pointers leave
// a field unchanged.
func (s *UserService) UpdateProfile(ctx context.Context, id uint64, fullName, bio *string) (model.User, error) {
	if fullName != nil {
		trimmed := strings.TrimSpace(*fullName)
		fullName = &trimmed
	}
	if bio != nil {
		trimmed := strings.TrimSpace(*bio)
		bio = &trimmed
	}
	return s.users.UpdateProfile(ctx, id, fullName, bio)
}
