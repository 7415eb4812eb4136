package handler

// --- Request / Response types ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6,hasdigit"`
}

type updateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"     validate:"omitempty,email"`
	Username *string `json:"username,omitempty"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student admin"`
}

type userResponse struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Username           string   `json:"username"`
	Role               string   `json:"role"`
	IsVerified         bool     `json:"isVerified"`
	SubscribedSubjects []string `json:"subscribedSubjects,omitempty"`
	SubscribedJourneys []string `json:"subscribedJourneys,omitempty"`
	CompletedTrails    []string `json:"completedTrails,omitempty"`
}

type idListResponse struct {
	IDs []string `json:"ids"`
}
