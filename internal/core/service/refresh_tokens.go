package service

import (
	"context"
	"time"

	"github.com/studyflow/accounts-api/internal/core/domain"
	"github.com/studyflow/accounts-api/internal/core/ports"
)

// RefreshTokenManager persists, rotates and validates refresh tokens.
// At most one valid refresh token exists per user: Store overwrites the
// previous record, implicitly invalidating it.
type RefreshTokenManager struct {
	repo ports.RefreshTokenRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewRefreshTokenManager(repo ports.RefreshTokenRepository, ttl time.Duration) *RefreshTokenManager {
	if ttl <= 0 {
		ttl = domain.RefreshTokenTTL
	}
	return &RefreshTokenManager{repo: repo, ttl: ttl, now: time.Now}
}

// Store upserts the user's refresh token with a fresh expiry.
func (m *RefreshTokenManager) Store(ctx context.Context, userID, token string) error {
	return m.repo.Upsert(ctx, &domain.RefreshToken{
		UserID:     userID,
		Token:      token,
		ExpiryDate: m.now().UTC().Add(m.ttl),
	})
}

// Redeem resolves a refresh token to its owning user id. Expired and
// nonexistent tokens fail identically with domain.ErrInvalidRefreshToken.
// Redemption does not delete the record; the next login's overwrite is the
// rotation boundary.
func (m *RefreshTokenManager) Redeem(ctx context.Context, token string) (string, error) {
	record, err := m.repo.FindValid(ctx, token, m.now().UTC())
	if err != nil {
		return "", err
	}
	return record.UserID, nil
}
