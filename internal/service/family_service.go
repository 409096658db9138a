package service

import (
	"context"
	"errors"
	"strings"

	"famlink/internal/model"
	"famlink/internal/repository"
)

const maxFamilyNameLen = 100

// FamilyService implements the family registry: get-or-create by name,
// idempotent joins and membership queries. Name matching is
// case-insensitive and consistent between the existence probe and the
// create path because both go through the same collation-backed column.
type FamilyService struct {
	families FamilyStore
}

func NewFamilyService(families FamilyStore) *FamilyService {
	return &FamilyService{families: families}
}

// Exists reports whether a family with the given name exists. This is an
// advisory probe for UX confirmation dialogs only: a concurrent actor
// may create the family right after the check, so Join must stay correct
// regardless of the answer.
func (s *FamilyService) Exists(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ValidationError("family name is required")
	}
	_, err := s.families.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetOrCreate returns the family with the given name, creating it when
// absent. Under concurrent creation of the same name exactly one insert
// wins the unique key; losers get ErrConflict from the store, re-read
// and adopt the winner's row, so every caller observes the same family
// and nobody sees an error.
func (s *FamilyService) GetOrCreate(ctx context.Context, name string) (model.Family, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Family{}, false, ValidationError("family name is required")
	}
	if len(name) > maxFamilyNameLen {
		return model.Family{}, false, ValidationError("family name is too long")
	}

	f, err := s.families.GetByName(ctx, name)
	if err == nil {
		return f, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.Family{}, false, err
	}

	f, err = s.families.Create(ctx, name)
	if errors.Is(err, repository.ErrConflict) {
		f, err = s.families.GetByName(ctx, name)
		return f, false, err
	}
	if err != nil {
		return model.Family{}, false, err
	}
	return f, true, nil
}

// Join makes the user a member of the named family, creating the family
// first when needed. Joining a family the user already belongs to is a
// no-op, not an error.
func (s *FamilyService) Join(ctx context.Context, userID uint64, name string) (model.Family, error) {
	f, _, err := s.GetOrCreate(ctx, name)
	if err != nil {
		return model.Family{}, err
	}
	if err := s.families.AddMember(ctx, userID, f.ID); err != nil {
		return model.Family{}, err
	}
	return f, nil
}

// ListForUser returns all families the user belongs to.
func (s *FamilyService) ListForUser(ctx context.Context, userID uint64) ([]model.Family, error) {
	return s.families.ListByUser(ctx, userID)
}

// Members returns the members of a family.
func (s *FamilyService) Members(ctx context.Context, familyID uint64) ([]model.User, error) {
	return s.families.ListMembers(ctx, familyID)
}

// IsMember reports whether the user belongs to the family.
func (s *FamilyService) IsMember(ctx context.Context, userID, familyID uint64) (bool, error) {
	return s.families.IsMember(ctx, userID, familyID)
}
