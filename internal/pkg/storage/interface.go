package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCodeExists   = errors.New("code already exists")
	ErrCodeNotFound = errors.New("code not found")
	ErrCodeUsed     = errors.New("code already used")
)

// Code is a prepaid top-up voucher: redeeming it extends a member's
// access by its duration. A code is single use.
type Code struct {
	Code      string
	Minutes   int
	CreatedAt time.Time
	UsedBy    int64
	UsedAt    *time.Time
}

// MembershipStore persists administrators, top-up codes and member
// expiry times.
type MembershipStore interface {
	// Admins returns all administrator user ids.
	Admins(ctx context.Context) ([]int64, error)
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	AddAdmin(ctx context.Context, userID int64) error
	RemoveAdmin(ctx context.Context, userID int64) error

	// CreateCode stores a freshly generated code. A duplicate code
	// value returns ErrCodeExists so the caller can regenerate.
	CreateCode(ctx context.Context, code string, minutes int) error
	GetCode(ctx context.Context, code string) (*Code, error)
	// MarkCodeUsed burns a code for a user. Burning an already-used
	// code returns ErrCodeUsed.
	MarkCodeUsed(ctx context.Context, code string, userID int64) error

	// MemberExpiry returns the member's expiry time, or nil when the
	// user never redeemed a code.
	MemberExpiry(ctx context.Context, userID int64) (*time.Time, error)
	SetMemberExpiry(ctx context.Context, userID int64, expiry time.Time) error

	Close() error
}
