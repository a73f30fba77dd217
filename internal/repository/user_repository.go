package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/task-management/internal/model"
)

const userColumns = "id,name,email,phone_number,address,role,password_hash,created_at,updated_at"

// UserRepo persists users. The address is stored as a JSON column and
// (un)marshaled at the repository boundary so the rest of the code only sees
// model.Address.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and fills in the generated ID and timestamps.
// The caller supplies PasswordHash; plaintext never reaches this layer.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	addr, err := json.Marshal(u.Address)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, name, email, phone_number, address, role, password_hash, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		u.ID, u.Name, u.Email, u.PhoneNumber, addr, u.Role, u.PasswordHash, now, now)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// GetByEmail fetches a user by exact email match, case-sensitivity as the
// column collation stores it. A missing row surfaces as sql.ErrNoRows; the
// auth service relies on that to merge "no such user" into its generic
// invalid-credentials error.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a user by id. A missing row is reported as ErrUserNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// List returns all users ordered by creation time, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update rewrites the mutable columns of an existing user. The caller is
// expected to have loaded the record first so unchanged fields round-trip.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	addr, err := json.Marshal(u.Address)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, email=?, phone_number=?, address=?, role=?, password_hash=?, updated_at=? WHERE id=?",
		u.Name, u.Email, u.PhoneNumber, addr, u.Role, u.PasswordHash, now, u.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	u.UpdatedAt = now
	return nil
}

// Delete removes a user. Deleting a missing user reports ErrUserNotFound.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u    model.User
		addr []byte
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &addr, &u.Role,
		&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &u.Address); err != nil {
			return model.User{}, err
		}
	}
	return u, nil
}
