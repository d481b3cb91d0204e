package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sirpyerre/file-manager/internal/api/middleware"
	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

// ctxActor extracts the identity injected by the Auth middleware and
// fast-fails before any service call when it is missing.
func ctxActor(c echo.Context) (domain.Actor, error) {
	username, _ := c.Get(middleware.ContextUsername).(string)
	role, _ := c.Get(middleware.ContextRole).(string)
	if username == "" || role == "" {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return domain.Actor{Username: username, Role: role}, nil
}

// ctxClaims returns the full verified token, needed by logout.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, _ := c.Get(middleware.ContextClaims).(*domain.Claims)
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
