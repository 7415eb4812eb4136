package ports

import (
	"context"

	"github.com/studyflow/accounts-api/internal/core/domain"
)

// UserUpdate carries the mutable profile fields for a partial update.
// Nil pointers mean "leave unchanged".
type UserUpdate struct {
	Name     *string
	Email    *string
	Username *string
}

// UserRepository defines persistence operations for user accounts.
// Create must surface the store's unique-index violation on email/username as
// domain.ErrDuplicateAccount.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// UpdatePassword overwrites the stored password hash. The hash is computed
	// by the caller at the write boundary; repositories never hash.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateProfile(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.UserRole) error
	// MarkVerified sets is_verified and clears the verification token.
	MarkVerified(ctx context.Context, id string) error
	// SetVerificationToken re-arms email verification after an email change.
	SetVerificationToken(ctx context.Context, id string, token string) error
	// SetRelations replaces one of the user's relationship lists (field is a
	// persisted field name: subscribed_subjects, subscribed_journeys or
	// completed_trails).
	SetRelations(ctx context.Context, id string, field string, ids []string) error
	Delete(ctx context.Context, id string) error
}
