package auth

import (
	"context"
	"time"
)

// Store describes persistence operations required by the auth subsystem.
type Store interface {
	Users(ctx context.Context) UserStore
}

// UserStore is the user directory. Every operation is a single-row read or
// write keyed by primary id or unique email; the backing store serializes
// concurrent writes to the same row.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*User, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
	UpdateRefreshTokenHash(ctx context.Context, userID string, hash *string) error
	UpdateResetCode(ctx context.Context, userID string, code *string, issuedAt *time.Time) error
}
