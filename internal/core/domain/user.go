package domain

import (
	"errors"
	"time"
)

// UserRole is the access level attached to an account.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

// IsValid reports whether the role is one of the known values.
func (r UserRole) IsValid() bool {
	return r == RoleStudent || r == RoleAdmin
}

var ErrUserNotFound = errors.New("user not found")
var ErrDuplicateAccount = errors.New("email or username already exists")
var ErrAlreadySubscribed = errors.New("already subscribed")
var ErrNotSubscribed = errors.New("not subscribed")
var ErrTrailAlreadyCompleted = errors.New("trail already completed")

// User is the account aggregate. PasswordHash is empty for accounts created
// through a federated provider; they have no local credential.
type User struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Username           string    `json:"username"`
	PasswordHash       string    `json:"-"`
	Role               UserRole  `json:"role"`
	IsVerified         bool      `json:"is_verified"`
	VerificationToken  string    `json:"-"`
	SubscribedSubjects []string  `json:"subscribed_subjects,omitempty"`
	SubscribedJourneys []string  `json:"subscribed_journeys,omitempty"`
	CompletedTrails    []string  `json:"completed_trails,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Sanitized returns a copy safe to hand to the transport layer: the password
// hash and the pending verification token are stripped.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	clone.VerificationToken = ""
	return &clone
}

// HasSubject reports whether the user is subscribed to the given subject.
func (u *User) HasSubject(subjectID string) bool {
	return contains(u.SubscribedSubjects, subjectID)
}

// HasJourney reports whether the user is subscribed to the given journey.
func (u *User) HasJourney(journeyID string) bool {
	return contains(u.SubscribedJourneys, journeyID)
}

// HasCompletedTrail reports whether the user already completed the trail.
func (u *User) HasCompletedTrail(trailID string) bool {
	return contains(u.CompletedTrails, trailID)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
