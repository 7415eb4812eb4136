package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studyflow/accounts-api/internal/core/domain"
	"github.com/studyflow/accounts-api/internal/core/ports"
)

// UserHandler handles HTTP requests for account management and the user's
// relationship lists.
type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Username:           u.Username,
		Role:               string(u.Role),
		IsVerified:         u.IsVerified,
		SubscribedSubjects: u.SubscribedSubjects,
		SubscribedJourneys: u.SubscribedJourneys,
		CompletedTrails:    u.CompletedTrails,
	}
}

// Register creates a new student account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.userService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	}); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, messageResponse{
		Message: "User created successfully. Please verify your email.",
	})
}

// Verify redeems an email verification token.
//
// @Summary      Verify an account email
// @Tags         users
// @Produce      json
// @Param        token  query     string  true  "Verification token"
// @Success      200    {object}  messageResponse
// @Failure      404    {object}  errorResponse
// @Router       /users/verify [get]
func (h *UserHandler) Verify(c echo.Context) error {
	token := c.QueryParam("token")
	if _, err := h.userService.VerifyEmail(c.Request().Context(), token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Account verified successfully"})
}

// List returns all users (admin only).
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      403  {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single user by id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.userService.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateProfile applies a partial update to the authenticated user.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to update"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), userID, ports.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateRole sets a user's role (admin only).
//
// @Summary      Update a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateRoleRequest  true  "New role"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id}/role [patch]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.UpdateRole(c.Request().Context(), c.Param("id"), domain.UserRole(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete removes a user (admin only).
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User id"
// @Success      204  "user deleted"
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.userService.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- relationship routes (authenticated user) ---

func (h *UserHandler) SubscribeSubject(c echo.Context) error {
	return h.relationUpdate(c, h.userService.SubscribeSubject, c.Param("subjectId"))
}

func (h *UserHandler) UnsubscribeSubject(c echo.Context) error {
	return h.relationUpdate(c, h.userService.UnsubscribeSubject, c.Param("subjectId"))
}

func (h *UserHandler) SubscribeJourney(c echo.Context) error {
	return h.relationUpdate(c, h.userService.SubscribeJourney, c.Param("journeyId"))
}

func (h *UserHandler) UnsubscribeJourney(c echo.Context) error {
	return h.relationUpdate(c, h.userService.UnsubscribeJourney, c.Param("journeyId"))
}

func (h *UserHandler) CompleteTrail(c echo.Context) error {
	return h.relationUpdate(c, h.userService.CompleteTrail, c.Param("trailId"))
}

func (h *UserHandler) SubscribedSubjects(c echo.Context) error {
	return h.relationList(c, h.userService.SubscribedSubjects)
}

func (h *UserHandler) SubscribedJourneys(c echo.Context) error {
	return h.relationList(c, h.userService.SubscribedJourneys)
}

func (h *UserHandler) CompletedTrails(c echo.Context) error {
	return h.relationList(c, h.userService.CompletedTrails)
}

type relationUpdateFn func(ctx context.Context, userID, relationID string) (*domain.User, error)

func (h *UserHandler) relationUpdate(c echo.Context, fn relationUpdateFn, relationID string) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	if relationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing relation id")
	}

	user, err := fn(c.Request().Context(), userID, relationID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) relationList(c echo.Context, fn func(ctx context.Context, userID string) ([]string, error)) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	ids, err := fn(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(http.StatusOK, idListResponse{IDs: ids})
}
