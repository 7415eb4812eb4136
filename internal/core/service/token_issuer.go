package service

import (
	"crypto/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/studyflow/accounts-api/internal/core/domain"
)

// TokenIssuer creates and verifies access tokens, and generates the opaque
// identifiers used for refresh and reset tokens. The symmetric secret is
// injected at construction; there is no ambient secret lookup.
type TokenIssuer struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewTokenIssuer(secret string, accessTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = domain.AccessTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), accessTTL: accessTTL, now: time.Now}
}

// IssueAccessToken signs the claims with HS256. The expiry window is attached
// at signing time; sub duplicates the user id for standard-claim consumers.
func (i *TokenIssuer) IssueAccessToken(claims domain.Claims) (string, error) {
	now := i.now().UTC()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": claims.UserID,
		"sub":    claims.UserID,
		"name":   claims.Name,
		"email":  claims.Email,
		"role":   string(claims.Role),
		"iat":    now.Unix(),
		"exp":    now.Add(i.accessTTL).Unix(),
	})
	return t.SignedString(i.secret)
}

// VerifyAccessToken parses and verifies a signed access token. Malformed,
// badly signed and expired tokens all fail with domain.ErrInvalidToken; an
// unverified payload is never partially trusted.
func (i *TokenIssuer) VerifyAccessToken(token string) (*domain.Claims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	userID, _ := claims["userId"].(string)
	if userID == "" {
		// fall back to sub for tokens minted by older builds
		userID, _ = claims["sub"].(string)
	}
	if userID == "" {
		return nil, domain.ErrInvalidToken
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &domain.Claims{
		UserID: userID,
		Name:   name,
		Email:  email,
		Role:   domain.UserRole(role),
	}, nil
}

// IssueRefreshToken returns a cryptographically random opaque identifier.
// It carries no claims and must be looked up server-side.
func (i *TokenIssuer) IssueRefreshToken() string {
	return uuid.NewString()
}

const resetTokenLength = 64

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// IssueResetToken returns a 64-character high-entropy random string for
// out-of-band delivery. Bytes outside the largest multiple of the alphabet
// size are rejected so every character stays equally likely.
func (i *TokenIssuer) IssueResetToken() string {
	const limit = 256 - 256%len(tokenAlphabet)

	out := make([]byte, 0, resetTokenLength)
	buf := make([]byte, resetTokenLength)
	for len(out) < resetTokenLength {
		if _, err := rand.Read(buf); err != nil {
			// fallback: uuid pair still gives a unique, unguessable value
			return uuid.NewString() + uuid.NewString()
		}
		for _, v := range buf {
			if int(v) >= limit {
				continue
			}
			out = append(out, tokenAlphabet[int(v)%len(tokenAlphabet)])
			if len(out) == resetTokenLength {
				break
			}
		}
	}
	return string(out)
}

// IssueVerificationToken returns the token embedded in verification emails.
func (i *TokenIssuer) IssueVerificationToken() string {
	return i.IssueResetToken()
}
