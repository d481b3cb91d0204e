package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sirpyerre/file-manager/internal/api/metrics"
	"github.com/Sirpyerre/file-manager/internal/core/domain"
	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

const faceField = "face"

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignUp creates a new account and enrolls its face reference.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Param        username  formData  string  true  "Username (min 8 characters)"
// @Param        password  formData  string  true  "Password (min 8 characters)"
// @Param        role      formData  string  true  "user or admin"
// @Param        face      formData  file    true  "Face image used for liveness checks"
// @Success      201       {object}  userResponse
// @Failure      400       {object}  errorResponse
// @Failure      409       {object}  errorResponse
// @Failure      422       {object}  errorResponse
// @Failure      500       {object}  errorResponse
// @Router       /signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	face, _, err := formFile(c, faceField)
	if err != nil {
		return err
	}

	user, err := h.authService.SignUp(c.Request().Context(), ports.SignUpInput{
		Username:   c.FormValue("username"),
		Password:   c.FormValue("password"),
		Role:       c.FormValue("role"),
		FaceSample: face,
	})
	if err != nil {
		return err
	}

	metrics.SignupsTotal.WithLabelValues(user.Role).Inc()
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login checks the password and a live face sample, then issues a token.
//
// @Summary      Login
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Param        face      formData  file    true  "Live face capture"
// @Success      200       {object}  loginResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      500       {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	face, _, err := formFile(c, faceField)
	if err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Username:   c.FormValue("username"),
		Password:   c.FormValue("password"),
		FaceSample: face,
	})
	metrics.LoginAttemptsTotal.WithLabelValues(loginResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		AccessToken: res.Token,
		TokenType:   "bearer",
		ExpiresAt:   res.ExpiresAt,
	})
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrValidation):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrLiveness):
		return "liveness_failed"
	default:
		return "error"
	}
}

// Logout revokes the presented token.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdatePassword changes the caller's password and revokes older tokens.
//
// @Summary      Update password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updatePasswordRequest  true  "Old and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /update-password [patch]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.UpdatePassword(c.Request().Context(), actor, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

// Face streams the caller's enrolled face image.
//
// @Summary      Get enrolled face image
// @Tags         auth
// @Produce      image/jpeg
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/me/face [get]
func (h *AuthHandler) Face(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	rc, err := h.authService.FaceReference(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	defer rc.Close()

	return c.Stream(http.StatusOK, "image/jpeg", rc)
}
