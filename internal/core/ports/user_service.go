package ports

import (
	"context"

	"github.com/studyflow/accounts-api/internal/core/domain"
)

// RegisterInput carries the validated fields for account creation.
type RegisterInput struct {
	Name     string
	Email    string
	Username string
	Password string
}

// UserService implements account management and the user's relationship lists.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// VerifyEmail redeems a verification token, marking the account verified.
	VerifyEmail(ctx context.Context, token string) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error

	SubscribeSubject(ctx context.Context, userID, subjectID string) (*domain.User, error)
	UnsubscribeSubject(ctx context.Context, userID, subjectID string) (*domain.User, error)
	SubscribeJourney(ctx context.Context, userID, journeyID string) (*domain.User, error)
	UnsubscribeJourney(ctx context.Context, userID, journeyID string) (*domain.User, error)
	CompleteTrail(ctx context.Context, userID, trailID string) (*domain.User, error)
	SubscribedSubjects(ctx context.Context, userID string) ([]string, error)
	SubscribedJourneys(ctx context.Context, userID string) ([]string, error)
	CompletedTrails(ctx context.Context, userID string) ([]string, error)
}
