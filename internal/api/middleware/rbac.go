package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studyflow/accounts-api/internal/core/domain"
)

// Allowed is the pure role check consulted before handler dispatch.
func Allowed(role string, allowed map[string]struct{}) bool {
	_, ok := allowed[role]
	return ok
}

// RBAC enforces role-based access control.
func RBAC(allowedRoles ...domain.UserRole) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if !Allowed(role, allowed) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
