// ABOUTME: User storage operations for backend login.
// ABOUTME: Stores bcrypt password hashes keyed by unique email.

package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// CreateUser inserts u. Emails are stored lowercased.
func (s *Store) CreateUser(u *User) error {
	if u.Role == "" {
		u.Role = "admin"
	}
	res, err := s.db.Exec(`
		INSERT INTO users (nombre, email, password_hash, rol) VALUES (?, ?, ?, ?)
	`, u.Name, strings.ToLower(u.Email), u.PasswordHash, u.Role)
	if err != nil {
		return err
	}
	u.ID, err = res.LastInsertId()
	return err
}

// GetUserByEmail returns the user with email or ErrNotFound.
func (s *Store) GetUserByEmail(email string) (*User, error) {
	u := &User{}
	var created string
	err := s.db.QueryRow(`
		SELECT id, nombre, email, password_hash, rol, COALESCE(created_at, '') FROM users WHERE email = ?
	`, strings.ToLower(email)).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", created)
	return u, nil
}

// UserExists reports whether a user with email exists.
func (s *Store) UserExists(email string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE email = ?`, strings.ToLower(email)).Scan(&n)
	return n > 0, err
}
