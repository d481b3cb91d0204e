package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

// RBAC lets the request through only when the role set by Auth is one of
// roles. Rejections go to the central error handler as Forbidden.
func RBAC(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	denied := domain.NewError(domain.ErrForbidden,
		fmt.Sprintf("this action requires one of the roles: %s", strings.Join(roles, ", ")))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if role, _ := c.Get(ContextRole).(string); !allowed[role] {
				return denied
			}
			return next(c)
		}
	}
}
