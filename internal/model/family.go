package model

import "time"

// Family is a named group of users. A user may belong to several families
// at once; exactly one of them is "active" per session token.
type Family struct {
	ID        uint64    // families.id
	Name      string    // families.name (unique, case-insensitive)
	CreatedAt time.Time // families.created_at
	UpdatedAt time.Time // families.updated_at
}

// Membership is the join relation between a user and a family. The
// (user_id, family_id) pair is unique; joining an already joined family
// is a no-op, and memberships are never removed implicitly.
type Membership struct {
	ID       uint64    // user_families.id
	UserID   uint64    // user_families.user_id
	FamilyID uint64    // user_families.family_id
	JoinedAt time.Time // user_families.joined_at
}
