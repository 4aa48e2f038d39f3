package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// User represents a registered account.
type User struct {
	ID            int64
	Username      string
	PasswordHash  string
	AllowMessages bool
	CreatedAt     time.Time
}

// Ban represents an active moderation ban on an account.
type Ban struct {
	AccountID int64
	Reason    string
	CreatedAt time.Time
}

// UserStore handles account persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password. New accounts
	// accept private messages until they opt out.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by its durable id.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// SetAllowMessages updates the private-message preference.
	SetAllowMessages(ctx context.Context, id int64, allow bool) error
}

// ModerationStore handles the ban list. Bans key on the durable account id
// so they survive username changes.
type ModerationStore interface {
	// BanAccount records a ban. Banning an already-banned account updates
	// the reason.
	BanAccount(ctx context.Context, accountID int64, reason string) error

	// UnbanAccount lifts a ban. Unbanning an account without one is a no-op.
	UnbanAccount(ctx context.Context, accountID int64) error

	// IsBanned reports whether the account is currently banned.
	IsBanned(ctx context.Context, accountID int64) (bool, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	ModerationStore

	// Close closes the underlying database connection.
	Close() error
}
