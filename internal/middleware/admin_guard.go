package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminGuard ensures only admin users can access back-office routes. Admin is
// a flag on the account, not a marketplace role, so it is checked separately
// from RequireRoles.
func AdminGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		isAdmin, ok := c.Get("is_admin").(bool)
		if !ok || !isAdmin {
			return c.JSON(http.StatusForbidden, echo.Map{
				"error": "admin access only",
			})
		}
		return next(c)
	}
}
