package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

// Context keys set by Auth.
const (
	ContextUsername = "username"
	ContextRole     = "role"
	ContextClaims   = "claims"
)

// Auth validates the bearer token and injects its claims into the context.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.Verify(c.Request().Context(), parts[1])
			if err != nil {
				return err
			}

			c.Set(ContextUsername, claims.Subject)
			c.Set(ContextRole, claims.Role)
			c.Set(ContextClaims, claims)

			return next(c)
		}
	}
}
