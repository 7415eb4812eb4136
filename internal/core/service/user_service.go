package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/studyflow/accounts-api/internal/core/domain"
	"github.com/studyflow/accounts-api/internal/core/ports"
)

// UserService implements account management and the user's relationship
// lists (subjects, journeys, trails).
type UserService struct {
	repo     ports.UserRepository
	hasher   Hasher
	issuer   *TokenIssuer
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewUserService(
	repo ports.UserRepository,
	hasher Hasher,
	issuer *TokenIssuer,
	notifier ports.Notifier,
	log zerolog.Logger,
) *UserService {
	return &UserService{repo: repo, hasher: hasher, issuer: issuer, notifier: notifier, log: log}
}

// Register creates a student account. The password is hashed here, at the
// write boundary, and a verification email is scheduled.
func (s *UserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, &domain.User{
		Name:              input.Name,
		Email:             input.Email,
		Username:          input.Username,
		PasswordHash:      hash,
		Role:              domain.RoleStudent,
		VerificationToken: s.issuer.IssueVerificationToken(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendVerificationEmail(ctx, user.Email, user.VerificationToken); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to enqueue verification email")
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user.Sanitized(), nil
}

// VerifyEmail redeems a verification token: the account is marked verified
// and the token cleared. Unknown tokens fail with domain.ErrUserNotFound.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.repo.FindByVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	user.IsVerified = true
	user.VerificationToken = ""
	return user.Sanitized(), nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	return out, nil
}

// UpdateProfile applies a partial update. Changing the email resets the
// verification state and sends a new verification token.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update ports.UserUpdate) (*domain.User, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateProfile(ctx, id, update)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		token := s.issuer.IssueVerificationToken()
		user.IsVerified = false
		user.VerificationToken = token
		if err := s.repo.SetVerificationToken(ctx, id, token); err != nil {
			return nil, err
		}
		if err := s.notifier.SendVerificationEmail(ctx, *update.Email, token); err != nil {
			s.log.Error().Err(err).Str("user_id", id).Msg("failed to enqueue verification email")
		}
	}

	return user.Sanitized(), nil
}

func (s *UserService) UpdateRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	user.Role = role
	return user.Sanitized(), nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

const (
	fieldSubjects = "subscribed_subjects"
	fieldJourneys = "subscribed_journeys"
	fieldTrails   = "completed_trails"
)

// SubscribeSubject adds a subject to the user's subscriptions.
func (s *UserService) SubscribeSubject(ctx context.Context, userID, subjectID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasSubject(subjectID) {
		return nil, domain.ErrAlreadySubscribed
	}
	user.SubscribedSubjects = append(user.SubscribedSubjects, subjectID)
	if err := s.repo.SetRelations(ctx, userID, fieldSubjects, user.SubscribedSubjects); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *UserService) UnsubscribeSubject(ctx context.Context, userID, subjectID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasSubject(subjectID) {
		return nil, domain.ErrNotSubscribed
	}
	user.SubscribedSubjects = remove(user.SubscribedSubjects, subjectID)
	if err := s.repo.SetRelations(ctx, userID, fieldSubjects, user.SubscribedSubjects); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// SubscribeJourney adds a journey to the user's subscriptions.
func (s *UserService) SubscribeJourney(ctx context.Context, userID, journeyID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasJourney(journeyID) {
		return nil, domain.ErrAlreadySubscribed
	}
	user.SubscribedJourneys = append(user.SubscribedJourneys, journeyID)
	if err := s.repo.SetRelations(ctx, userID, fieldJourneys, user.SubscribedJourneys); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *UserService) UnsubscribeJourney(ctx context.Context, userID, journeyID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.SubscribedJourneys = remove(user.SubscribedJourneys, journeyID)
	if err := s.repo.SetRelations(ctx, userID, fieldJourneys, user.SubscribedJourneys); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// CompleteTrail records a finished trail; completing the same trail twice is
// a conflict.
func (s *UserService) CompleteTrail(ctx context.Context, userID, trailID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasCompletedTrail(trailID) {
		return nil, domain.ErrTrailAlreadyCompleted
	}
	user.CompletedTrails = append(user.CompletedTrails, trailID)
	if err := s.repo.SetRelations(ctx, userID, fieldTrails, user.CompletedTrails); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *UserService) SubscribedSubjects(ctx context.Context, userID string) ([]string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.SubscribedSubjects, nil
}

func (s *UserService) SubscribedJourneys(ctx context.Context, userID string) ([]string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.SubscribedJourneys, nil
}

func (s *UserService) CompletedTrails(ctx context.Context, userID string) ([]string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.CompletedTrails, nil
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
