package ports

import (
	"context"

	"github.com/studyflow/accounts-api/internal/core/domain"
)

// TokenPair bundles a signed access token and its opaque refresh companion.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is returned on successful credential or federated login.
type LoginResult struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	TokenPair
}

// FederatedProfile is the identity asserted by an external provider after a
// completed handshake. Only the verified email and display name are consumed.
type FederatedProfile struct {
	Email string
	Name  string
}

// FederatedLogin is the outcome of a federated callback: the resolved user
// plus the tokens to hand back through the redirect.
type FederatedLogin struct {
	User   *domain.User
	Tokens TokenPair
}

// AuthService coordinates credential verification and the token lifecycle.
type AuthService interface {
	// ValidateCredentials checks email+password and returns the user with its
	// password hash stripped. Unknown email and wrong password both map to
	// domain.ErrInvalidCredentials.
	ValidateCredentials(ctx context.Context, email, password string) (*domain.User, error)
	// Login issues an access/refresh token pair for an already-validated user.
	Login(ctx context.Context, user *domain.User) (*LoginResult, error)
	// LoginFederated finds or creates the account for a federated identity and
	// logs it in. Idempotent on repeated calls with the same email.
	LoginFederated(ctx context.Context, profile FederatedProfile) (*FederatedLogin, error)
	// Refresh redeems a refresh token and issues a fresh pair.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// ValidateToken verifies a signed access token and returns its claims.
	ValidateToken(token string) (*domain.Claims, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	// ForgotPassword issues a reset token and schedules its email delivery.
	// The returned message is generic regardless of delivery outcome.
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	// RedirectTarget formats the post-callback redirect URL: tokens embedded
	// when present, the registration page otherwise.
	RedirectTarget(login *FederatedLogin) string
}
