package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/studyflow/accounts-api/internal/api/metrics"
	"github.com/studyflow/accounts-api/internal/core/domain"
	"github.com/studyflow/accounts-api/internal/core/ports"
)

// ResetRateLimiter throttles forgot-password requests per email (Redis).
type ResetRateLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// AuthService is the façade coordinating hashing, token issuance and token
// persistence for login, federated login, refresh and password recovery.
type AuthService struct {
	users         ports.UserRepository
	hasher        Hasher
	issuer        *TokenIssuer
	refreshTokens *RefreshTokenManager
	resetTokens   *ResetTokenManager
	notifier      ports.Notifier
	limiter       ResetRateLimiter
	frontendURL   string
	log           zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	hasher Hasher,
	issuer *TokenIssuer,
	refreshTokens *RefreshTokenManager,
	resetTokens *ResetTokenManager,
	notifier ports.Notifier,
	limiter ResetRateLimiter,
	frontendURL string,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:         users,
		hasher:        hasher,
		issuer:        issuer,
		refreshTokens: refreshTokens,
		resetTokens:   resetTokens,
		notifier:      notifier,
		limiter:       limiter,
		frontendURL:   frontendURL,
		log:           log,
	}
}

// ValidateCredentials checks an email/password pair. Unknown email and wrong
// password both return domain.ErrInvalidCredentials so the response does not
// reveal whether the account exists. The returned user has no password hash.
func (s *AuthService) ValidateCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		// store fault, not a credential mismatch
		return nil, err
	}
	if user.PasswordHash == "" || !s.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	return user.Sanitized(), nil
}

// Login issues both tokens for an already-validated user. Pure assembly:
// credential checks are the caller's prior step.
func (s *AuthService) Login(ctx context.Context, user *domain.User) (*ports.LoginResult, error) {
	pair, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")

	return &ports.LoginResult{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		TokenPair: *pair,
	}, nil
}

// LoginFederated resolves a federated identity to a local account, creating
// one on first sight (no local password, username = email). Idempotent: a
// second call with the same email finds the existing user.
func (s *AuthService) LoginFederated(ctx context.Context, profile ports.FederatedProfile) (*ports.FederatedLogin, error) {
	user, err := s.users.FindByEmail(ctx, profile.Email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user, err = s.users.Create(ctx, &domain.User{
			Name:     profile.Name,
			Email:    profile.Email,
			Username: profile.Email,
			Role:     domain.RoleStudent,
		})
		if err != nil {
			return nil, err
		}
		s.log.Info().Str("user_id", user.ID).Msg("federated account created")
	case err != nil:
		return nil, err
	}

	pair, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("federated").Inc()
	return &ports.FederatedLogin{User: user.Sanitized(), Tokens: *pair}, nil
}

// Refresh redeems a refresh token and issues a fresh access/refresh pair.
// The stored record is replaced via the regular upsert path.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	userID, err := s.refreshTokens.Redeem(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.generateTokens(ctx, user)
}

// ValidateToken verifies a signed access token and returns its claims.
func (s *AuthService) ValidateToken(token string) (*domain.Claims, error) {
	return s.issuer.VerifyAccessToken(token)
}

// ChangePassword verifies the old password and overwrites the hash. Existing
// sessions stay valid until natural expiry; no tokens are revoked here.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.PasswordHash == "" || !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// forgotPasswordAck is returned regardless of email delivery outcome.
const forgotPasswordAck = "Check your email, you will receive a redirect link"

// ForgotPassword issues a reset token for the account and schedules its
// delivery. An unknown email fails with domain.ErrUserNotFound.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, email)
		if err != nil {
			// the limiter is advisory: a broken Redis must not block recovery
			s.log.Warn().Err(err).Msg("reset rate limiter unavailable")
		} else if !allowed {
			metrics.PasswordResetsTotal.WithLabelValues("throttled").Inc()
			return forgotPasswordAck, nil
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	token, err := s.resetTokens.Issue(ctx, user.ID)
	if err != nil {
		return "", err
	}

	if err := s.notifier.SendPasswordResetEmail(ctx, email, token); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to enqueue reset email")
	}

	metrics.PasswordResetsTotal.WithLabelValues("requested").Inc()
	return forgotPasswordAck, nil
}

// ResetPassword consumes a reset token and overwrites the user's password.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	userID, err := s.resetTokens.Redeem(ctx, resetToken)
	if err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("completed").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("password reset completed")
	return nil
}

// RedirectTarget builds the frontend URL driven by a federated callback:
// tokens embedded as query parameters when present, the registration page
// otherwise.
func (s *AuthService) RedirectTarget(login *ports.FederatedLogin) string {
	if login == nil || login.Tokens.AccessToken == "" {
		return s.frontendURL + "/cadastro"
	}
	return fmt.Sprintf("%s/oauth?token=%s&refresh=%s",
		s.frontendURL,
		url.QueryEscape(login.Tokens.AccessToken),
		url.QueryEscape(login.Tokens.RefreshToken),
	)
}

// generateTokens signs an access token from the user's identity fields and
// stores a new opaque refresh token, overwriting the previous one.
func (s *AuthService) generateTokens(ctx context.Context, user *domain.User) (*ports.TokenPair, error) {
	accessToken, err := s.issuer.IssueAccessToken(domain.Claims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, err
	}

	refreshToken := s.issuer.IssueRefreshToken()
	if err := s.refreshTokens.Store(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()

	return &ports.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
