package service

import (
	"context"
	"time"

	"github.com/studyflow/accounts-api/internal/core/domain"
	"github.com/studyflow/accounts-api/internal/core/ports"
)

// ResetTokenManager issues and redeems single-use, time-limited
// password-reset tokens.
type ResetTokenManager struct {
	repo     ports.ResetTokenRepository
	generate func() string
	ttl      time.Duration
	now      func() time.Time
}

func NewResetTokenManager(repo ports.ResetTokenRepository, generate func() string, ttl time.Duration) *ResetTokenManager {
	if ttl <= 0 {
		ttl = domain.ResetTokenTTL
	}
	return &ResetTokenManager{repo: repo, generate: generate, ttl: ttl, now: time.Now}
}

// Issue persists a fresh reset token for the user and returns it for
// out-of-band delivery.
func (m *ResetTokenManager) Issue(ctx context.Context, userID string) (string, error) {
	token := m.generate()
	err := m.repo.Create(ctx, &domain.ResetToken{
		UserID:     userID,
		Token:      token,
		ExpiryDate: m.now().UTC().Add(m.ttl),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Redeem consumes a reset token exactly once. The underlying find-and-delete
// is atomic, so concurrent redemptions cannot both succeed.
func (m *ResetTokenManager) Redeem(ctx context.Context, token string) (string, error) {
	record, err := m.repo.ConsumeValid(ctx, token, m.now().UTC())
	if err != nil {
		return "", err
	}
	return record.UserID, nil
}
