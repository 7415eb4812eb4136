package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/studyflow/accounts-api/internal/core/ports"
)

// AuthHandler handles HTTP requests for the authentication flows.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user and returns identity fields plus both tokens.
//
// @Summary      Login with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	user, err := h.authService.ValidateCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	result, err := h.authService.Login(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		UserID:       result.UserID,
		Name:         result.Name,
		Email:        result.Email,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// Refresh exchanges a refresh token for a fresh token pair.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  tokenPairResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// ValidateToken verifies the bearer token and echoes its claims back.
//
// @Summary      Validate an access token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  validateTokenResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/validate-token [get]
func (h *AuthHandler) ValidateToken(c echo.Context) error {
	token := bearerToken(c)
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "token not found")
	}

	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, validateTokenResponse{
		AccessToken: token,
		UserPayload: map[string]any{
			"userId": claims.UserID,
			"sub":    claims.UserID,
			"name":   claims.Name,
			"email":  claims.Email,
			"role":   string(claims.Role),
		},
	})
}

// ChangePassword rotates the authenticated user's password.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      204   "password changed"
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/change-password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ChangePassword(c.Request().Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ForgotPassword triggers the reset email flow.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.authService.ForgotPassword(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

// ResetPassword redeems a reset token and sets a new password.
//
// @Summary      Reset password with a reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/reset-password [put]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.ResetToken, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password reset successful"})
}

// FederatedCallback consumes the verified profile of a completed federated
// handshake and redirects the browser back to the frontend with tokens (or to
// the registration page when login could not complete).
//
// @Summary      Federated login callback
// @Tags         auth
// @Param        email  query  string  true  "Verified email from the provider"
// @Param        name   query  string  true  "Display name from the provider"
// @Success      302    "redirect to frontend"
// @Router       /auth/federated/callback [get]
func (h *AuthHandler) FederatedCallback(c echo.Context) error {
	email := c.QueryParam("email")
	name := c.QueryParam("name")
	if email == "" {
		// no verified identity, send the browser to registration
		return c.Redirect(http.StatusFound, h.authService.RedirectTarget(nil))
	}

	login, err := h.authService.LoginFederated(c.Request().Context(), ports.FederatedProfile{
		Email: email,
		Name:  name,
	})
	if err != nil {
		return c.Redirect(http.StatusFound, h.authService.RedirectTarget(nil))
	}

	return c.Redirect(http.StatusFound, h.authService.RedirectTarget(login))
}

// bearerToken extracts the token from the Authorization header, empty when absent.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
