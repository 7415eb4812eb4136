package domain

import (
	"errors"
	"time"
)

const (
	// AccessTokenTTL is the validity window attached at signing time.
	AccessTokenTTL = 10 * time.Hour
	// RefreshTokenTTL is the lifetime of a stored refresh token.
	RefreshTokenTTL = 3 * 24 * time.Hour
	// ResetTokenTTL is the lifetime of a password-reset token.
	ResetTokenTTL = time.Hour
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid token")
var ErrInvalidRefreshToken = errors.New("refresh token is invalid")
var ErrInvalidResetToken = errors.New("invalid link")

// RefreshToken is the single opaque refresh credential held per user.
// Storage is upsert-by-user: a new login overwrites the previous record, which
// is the only rotation boundary.
type RefreshToken struct {
	UserID     string    `json:"user_id"`
	Token      string    `json:"token"`
	ExpiryDate time.Time `json:"expiry_date"`
}

// Expired reports whether the token is no longer redeemable at the given time.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiryDate)
}

// ResetToken is a single-use credential proving control of an email address.
// It is deleted atomically on redemption and never updated.
type ResetToken struct {
	UserID     string    `json:"user_id"`
	Token      string    `json:"token"`
	ExpiryDate time.Time `json:"expiry_date"`
}

// Claims is the payload carried by a signed access token. Never persisted.
type Claims struct {
	UserID string   `json:"user_id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
}
