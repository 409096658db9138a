package repository

import (
	"context"
	"database/sql"
	"strings"

	"famlink/internal/model"
)

// UserRepo provides access to the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, username, email, password_hash, full_name, COALESCE(bio,''), created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Bio, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// Create inserts a user and returns its ID. The password must already be
// hashed by the caller; this layer never sees plaintext credentials.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash, fullName, bio string) (uint64, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, full_name, bio) VALUES (?,?,?,?,?)",
		username, email, passwordHash, fullName, bio)
	if err != nil {
		low := strings.ToLower(err.Error())
		if strings.Contains(low, "1062") {
			if strings.Contains(low, "uq_users_email") {
				return 0, ErrEmailExists
			}
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username))
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// List returns all users except excludeID, ordered by username.
func (r *UserRepo) List(ctx context.Context, excludeID uint64, offset, limit int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id<>? ORDER BY username LIMIT ? OFFSET ?",
		excludeID, limit, offset)
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

// UpdateProfile updates the mutable profile fields of a user. Nil
// pointers leave the corresponding column untouched. The updated row is
// returned.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, fullName, bio *string) (model.User, error) {
	if fullName != nil {
		if _, err := r.DB.ExecContext(ctx, "UPDATE users SET full_name=? WHERE id=?", *fullName, id); err != nil {
			return model.User{}, err
		}
	}
	if bio != nil {
		if _, err := r.DB.ExecContext(ctx, "UPDATE users SET bio=? WHERE id=?", *bio, id); err != nil {
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}
