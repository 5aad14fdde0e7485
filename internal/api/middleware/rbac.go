package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/returnloop/pickup-system/internal/core/domain"
)

// RBAC enforces role-based access control. Admin implicitly satisfies every
// role check.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if role == domain.RoleAdmin {
				return next(c)
			}
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
