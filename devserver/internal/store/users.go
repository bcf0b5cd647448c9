package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Cowspump/some-diploma-stuff/client"
)

// User is an account row. PasswordHash is a bcrypt hash.
type User struct {
	ID           int64
	FullName     string
	Email        string
	PasswordHash string
	Role         client.Role
	BirthDate    *string
	CreatedAt    time.Time
}

// Public is the identity sent to clients.
func (u *User) Public() *client.User {
	return &client.User{ID: int(u.ID), Email: u.Email, FullName: u.FullName, Role: u.Role}
}

// CreateUser inserts u and sets its ID. A taken e-mail yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	now := s.timestamp()
	id, err := s.insert(ctx,
		`INSERT INTO users (full_name, mail, hashed_password, role, birth_date, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.FullName, u.Email, u.PasswordHash, string(u.Role), u.BirthDate, now)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	u.CreatedAt, _ = parseTime(now)
	return nil
}

// UserByEmail looks a user up by login e-mail.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, mail, hashed_password, role, birth_date, created_at FROM users WHERE mail = ?`, email)

	var (
		u       User
		role    string
		birth   sql.NullString
		created string
	)
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &role, &birth, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Role = client.Role(role)
	if birth.Valid {
		u.BirthDate = &birth.String
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &u, nil
}
