package ports

import (
	"context"
	"time"

	"github.com/studyflow/accounts-api/internal/core/domain"
)

// RefreshTokenRepository persists the single refresh token held per user.
type RefreshTokenRepository interface {
	// Upsert replaces the user's refresh token record (insert if absent).
	// Last write wins; concurrent logins race on this and that is accepted.
	Upsert(ctx context.Context, token *domain.RefreshToken) error
	// FindValid returns the record matching token with expiry_date >= now.
	// Missing and expired are indistinguishable: both return
	// domain.ErrInvalidRefreshToken.
	FindValid(ctx context.Context, token string, now time.Time) (*domain.RefreshToken, error)
}

// ResetTokenRepository persists single-use password-reset tokens.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *domain.ResetToken) error
	// ConsumeValid atomically finds AND deletes the record matching token with
	// expiry_date >= now, so concurrent redemptions cannot both succeed.
	// Returns domain.ErrInvalidResetToken when no live record matches.
	ConsumeValid(ctx context.Context, token string, now time.Time) (*domain.ResetToken, error)
}
