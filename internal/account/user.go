// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillboard Contributors

package account

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// User represents a registered account.
//
// PasswordHash always holds a bcrypt hash, never plaintext. CreatedAt is set
// once at registration and never changes.
type User struct {
	ID           ulid.ULID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository manages user persistence.
//
// Username uniqueness is ultimately the store's responsibility: Create must
// be atomic with respect to the store's unique index and report a collision
// as ErrUsernameTaken. The service-level pre-check is only a fast path.
type UserRepository interface {
	// Create stores a new user. Returns ErrUsernameTaken if the username
	// is already registered.
	Create(ctx context.Context, user *User) error

	// GetByUsername retrieves a user by exact username.
	// Returns ErrNotFound if no such user exists.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByID retrieves a user by ID.
	// Returns ErrNotFound if no such user exists.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)
}
