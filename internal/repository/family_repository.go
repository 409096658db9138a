package repository

import (
	"context"
	"database/sql"
	"strings"

	"famlink/internal/model"
)

// FamilyRepo provides access to the 'families' and 'user_families' tables.
// The families.name column uses a case-insensitive collation, so the
// uniqueness constraint and the lookup queries agree on which names are
// "the same".
type FamilyRepo struct{ DB *sql.DB }

func NewFamilyRepo(db *sql.DB) *FamilyRepo { return &FamilyRepo{DB: db} }

const familyColumns = "id, name, created_at, updated_at"

func scanFamily(row interface{ Scan(...any) error }) (model.Family, error) {
	var f model.Family
	err := row.Scan(&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return f, ErrNotFound
	}
	return f, err
}

// GetByName fetches a family by name. Matching is case-insensitive per
// the column collation.
func (r *FamilyRepo) GetByName(ctx context.Context, name string) (model.Family, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+familyColumns+" FROM families WHERE name=? LIMIT 1", strings.TrimSpace(name))
	return scanFamily(row)
}

// GetByID fetches a family by id.
func (r *FamilyRepo) GetByID(ctx context.Context, id uint64) (model.Family, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+familyColumns+" FROM families WHERE id=? LIMIT 1", id)
	return scanFamily(row)
}

// Create inserts a new family with the exact name provided (trimmed).
// When another caller created the same name first, the unique key fires
// and ErrConflict is returned; callers re-read and adopt the winner.
func (r *FamilyRepo) Create(ctx context.Context, name string) (model.Family, error) {
	name = strings.TrimSpace(name)
	res, err := r.DB.ExecContext(ctx, "INSERT INTO families (name) VALUES (?)", name)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Family{}, ErrConflict
		}
		return model.Family{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Family{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// AddMember inserts a membership row if absent. INSERT IGNORE makes the
// operation idempotent under the (user_id, family_id) unique key, so a
// repeated join is a no-op rather than an error.
func (r *FamilyRepo) AddMember(ctx context.Context, userID, familyID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO user_families (user_id, family_id) VALUES (?,?)",
		userID, familyID)
	return err
}

// IsMember reports whether the user holds a membership in the family.
func (r *FamilyRepo) IsMember(ctx context.Context, userID, familyID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM user_families WHERE user_id=? AND family_id=? LIMIT 1",
		userID, familyID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByUser returns all families the user is a member of, ordered by
// join time for stable output.
func (r *FamilyRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Family, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT f.id, f.name, f.created_at, f.updated_at
		 FROM families f
		 JOIN user_families uf ON uf.family_id = f.id
		 WHERE uf.user_id = ?
		 ORDER BY uf.joined_at, f.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	fams := make([]model.Family, 0)
	for rows.Next() {
		f, err := scanFamily(rows)
		if err != nil {
			return nil, err
		}
		fams = append(fams, f)
	}
	return fams, rows.Err()
}

// ListMembers returns all users belonging to the family, ordered by
// username.
func (r *FamilyRepo) ListMembers(ctx context.Context, familyID uint64) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT u.id, u.username, u.email, u.password_hash, u.full_name, COALESCE(u.bio,''), u.created_at, u.updated_at
		 FROM users u
		 JOIN user_families uf ON uf.user_id = u.id
		 WHERE uf.family_id = ?
		 ORDER BY u.username`, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
