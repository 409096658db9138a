package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"famlink/internal/model"
	"famlink/internal/repository"
)

// In-memory stores used across the service tests.

type fakeUsers struct {
	seq  uint64
	byID map[uint64]model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint64]model.User{}}
}

func (f *fakeUsers) add(username string) model.User {
	f.seq++
	u := model.User{ID: f.seq, Username: username, Email: username + "@example.com"}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) Create(_ context.Context, username, email, passwordHash, fullName, bio string) (uint64, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Username, username) {
			return 0, repository.ErrUsernameExists
		}
		if strings.EqualFold(u.Email, email) {
			return 0, repository.ErrEmailExists
		}
	}
	f.seq++
	f.byID[f.seq] = model.User{
		ID: f.seq, Username: username, Email: email,
		PasswordHash: passwordHash, FullName: fullName, Bio: bio,
	}
	return f.seq, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(_ context.Context, excludeID uint64, offset, limit int) ([]model.User, error) {
	out := make([]model.User, 0, len(f.byID))
	for _, u := range f.byID {
		if u.ID != excludeID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if offset >= len(out) {
		return []model.User{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id uint64, fullName, bio *string) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	if fullName != nil {
		u.FullName = *fullName
	}
	if bio != nil {
		u.Bio = *bio
	}
	f.byID[id] = u
	return u, nil
}

type fakeFamilies struct {
	seq     uint64
	byID    map[uint64]model.Family
	members map[uint64][]uint64 // userID -> family IDs, join order

	// When set, Create inserts the row as if a concurrent writer won the
	// unique key race and returns ErrConflict.
	conflictOnCreate bool
}

func newFakeFamilies() *fakeFamilies {
	return &fakeFamilies{byID: map[uint64]model.Family{}, members: map[uint64][]uint64{}}
}

func (f *fakeFamilies) add(name string) model.Family {
	f.seq++
	fam := model.Family{ID: f.seq, Name: name}
	f.byID[fam.ID] = fam
	return fam
}

func (f *fakeFamilies) join(userID, familyID uint64) {
	f.members[userID] = append(f.members[userID], familyID)
}

func (f *fakeFamilies) GetByName(_ context.Context, name string) (model.Family, error) {
	for _, fam := range f.byID {
		if strings.EqualFold(fam.Name, name) {
			return fam, nil
		}
	}
	return model.Family{}, repository.ErrNotFound
}

func (f *fakeFamilies) GetByID(_ context.Context, id uint64) (model.Family, error) {
	fam, ok := f.byID[id]
	if !ok {
		return model.Family{}, repository.ErrNotFound
	}
	return fam, nil
}

func (f *fakeFamilies) Create(_ context.Context, name string) (model.Family, error) {
	if _, err := f.GetByName(context.Background(), name); err == nil {
		return model.Family{}, repository.ErrConflict
	}
	fam := f.add(name)
	if f.conflictOnCreate {
		return model.Family{}, repository.ErrConflict
	}
	return fam, nil
}

func (f *fakeFamilies) AddMember(_ context.Context, userID, familyID uint64) error {
	for _, id := range f.members[userID] {
		if id == familyID {
			return nil
		}
	}
	f.members[userID] = append(f.members[userID], familyID)
	return nil
}

func (f *fakeFamilies) IsMember(_ context.Context, userID, familyID uint64) (bool, error) {
	for _, id := range f.members[userID] {
		if id == familyID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFamilies) ListByUser(_ context.Context, userID uint64) ([]model.Family, error) {
	out := make([]model.Family, 0, len(f.members[userID]))
	for _, id := range f.members[userID] {
		out = append(out, f.byID[id])
	}
	return out, nil
}

func (f *fakeFamilies) ListMembers(_ context.Context, familyID uint64) ([]model.User, error) {
	return []model.User{}, nil
}

type fakeMessages struct {
	seq   uint64
	msgs  []model.Message
	names map[uint64]string
}

func newFakeMessages(names map[uint64]string) *fakeMessages {
	if names == nil {
		names = map[uint64]string{}
	}
	return &fakeMessages{names: names}
}

func (f *fakeMessages) put(senderID, recipientID uint64, content string, at time.Time) model.Message {
	f.seq++
	m := model.Message{
		ID:                f.seq,
		SenderID:          senderID,
		SenderUsername:    f.names[senderID],
		RecipientID:       recipientID,
		RecipientUsername: f.names[recipientID],
		Content:           content,
		CreatedAt:         at,
	}
	f.msgs = append(f.msgs, m)
	return m
}

func (f *fakeMessages) Insert(_ context.Context, senderID, recipientID uint64, content string) (model.Message, error) {
	return f.put(senderID, recipientID, content, time.Now().UTC()), nil
}

func (f *fakeMessages) GetByID(_ context.Context, id uint64) (model.Message, error) {
	for _, m := range f.msgs {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Message{}, repository.ErrNotFound
}

func (f *fakeMessages) MarkRead(_ context.Context, id, recipientID uint64) error {
	for i, m := range f.msgs {
		if m.ID == id && m.RecipientID == recipientID && !m.IsRead {
			now := time.Now().UTC()
			f.msgs[i].IsRead = true
			f.msgs[i].ReadAt = &now
			return nil
		}
	}
	return nil
}

func (f *fakeMessages) ListBetween(_ context.Context, a, b uint64) ([]model.Message, error) {
	out := f.between(a, b)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeMessages) ListInvolving(_ context.Context, userID uint64) ([]model.Message, error) {
	out := make([]model.Message, 0)
	for _, m := range f.msgs {
		if m.SenderID == userID || m.RecipientID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeMessages) ListBetweenInWindow(_ context.Context, a, b uint64, from, to string) ([]model.Message, error) {
	return f.between(a, b), nil
}

func (f *fakeMessages) CountUnread(_ context.Context, userID uint64) (int, error) {
	n := 0
	for _, m := range f.msgs {
		if m.RecipientID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeMessages) between(a, b uint64) []model.Message {
	out := make([]model.Message, 0)
	for _, m := range f.msgs {
		if (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a) {
			out = append(out, m)
		}
	}
	return out
}

type storedToken struct {
	userID  uint64
	exp     time.Time
	revoked bool
}

type fakeTokens struct {
	byHash map[string]*storedToken

	// When set, RevokeByHash fails without touching the token.
	revokeErr error
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{byHash: map[string]*storedToken{}}
}

func (f *fakeTokens) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.byHash[tokenHash] = &storedToken{userID: userID, exp: exp}
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	t, ok := f.byHash[tokenHash]
	if !ok || t.revoked || time.Now().After(t.exp) {
		return 0, repository.ErrNotFound
	}
	return t.userID, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, tokenHash string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	if t, ok := f.byHash[tokenHash]; ok {
		t.revoked = true
	}
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	for _, t := range f.byHash {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}
