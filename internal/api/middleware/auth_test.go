package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

type stubTokens struct {
	verifyFn func(ctx context.Context, token string) (*domain.Claims, error)
}

func (s *stubTokens) Issue(*domain.User) (string, *domain.Claims, error) { return "", nil, nil }
func (s *stubTokens) Verify(ctx context.Context, token string) (*domain.Claims, error) {
	return s.verifyFn(ctx, token)
}
func (s *stubTokens) Revoke(context.Context, *domain.Claims) error { return nil }
func (s *stubTokens) RevokeAllFor(context.Context, string) error { return nil }

func rejectAll(t *testing.T) *stubTokens {
	return &stubTokens{verifyFn: func(context.Context, string) (*domain.Claims, error) {
		t.Fatalf("verify should not be called")
		return nil, nil
	}}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	tokens := &stubTokens{verifyFn: func(_ context.Context, token string) (*domain.Claims, error) {
		if token != "good-token" {
			t.Fatalf("unexpected token %q", token)
		}
		return &domain.Claims{
			Subject: "alice_smith", Role: domain.RoleAdmin, TokenID: "jti-1",
			ExpiresAt: time.Now().Add(time.Minute),
		}, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(tokens)(func(c echo.Context) error {
		called = true
		if c.Get(ContextUsername) != "alice_smith" {
			t.Fatalf("username not set")
		}
		if c.Get(ContextRole) != domain.RoleAdmin {
			t.Fatalf("role not set")
		}
		claims, ok := c.Get(ContextClaims).(*domain.Claims)
		if !ok || claims.TokenID != "jti-1" {
			t.Fatalf("claims not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(rejectAll(t))(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	for _, header := range []string{"Token abc", "Bearer", "Bearer "} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Auth(rejectAll(t))(func(c echo.Context) error {
			t.Fatalf("should not reach next")
			return nil
		})

		if err := handler(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthMiddleware_RejectedToken(t *testing.T) {
	e := echo.New()
	tokens := &stubTokens{verifyFn: func(context.Context, string) (*domain.Claims, error) {
		return nil, domain.ErrInvalidToken
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer revoked-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(tokens)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	if err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
