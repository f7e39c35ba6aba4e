package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrUserNotFound is returned when a user lookup misses.
var ErrUserNotFound = errors.New("user not found")

// User is one account row. PasswordHash is a bcrypt digest, never the
// password itself.
type User struct {
	ID           string
	Email        string
	PasswordHash string
}

// SaveUser inserts a new account.
func (d *DB) SaveUser(u User) error {
	if _, err := d.Exec(`
		INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// UserByEmail loads an account by its login email.
func (d *DB) UserByEmail(email string) (User, error) {
	var u User
	err := d.QueryRow(`
		SELECT id, email, password_hash FROM users WHERE email = ?
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	if err != nil {
		return u, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// UserByID loads an account by id.
func (d *DB) UserByID(id string) (User, error) {
	var u User
	err := d.QueryRow(`
		SELECT id, email, password_hash FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	if err != nil {
		return u, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
