package database

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// EnsureOwner creates the owner, or resets its password when it exists.
func (db *DB) EnsureOwner(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO owner (username, password_hash, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET password_hash = excluded.password_hash`,
		username,
		hash,
		time.Now().UTC(),
	)
	return err
}
