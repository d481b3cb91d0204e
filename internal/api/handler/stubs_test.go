package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Sirpyerre/file-manager/internal/api/middleware"
	"github.com/Sirpyerre/file-manager/internal/core/domain"
	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

type stubAuthService struct {
	signUpFn         func(ctx context.Context, in ports.SignUpInput) (*domain.User, error)
	loginFn          func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error)
	updatePasswordFn func(ctx context.Context, actor domain.Actor, oldPassword, newPassword string) error
	logoutFn         func(ctx context.Context, claims *domain.Claims) error
	faceFn           func(ctx context.Context, actor domain.Actor) (io.ReadCloser, error)
}

func (s *stubAuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.User, error) {
	return s.signUpFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) UpdatePassword(ctx context.Context, actor domain.Actor, oldPassword, newPassword string) error {
	return s.updatePasswordFn(ctx, actor, oldPassword, newPassword)
}

func (s *stubAuthService) Logout(ctx context.Context, claims *domain.Claims) error {
	return s.logoutFn(ctx, claims)
}

func (s *stubAuthService) FaceReference(ctx context.Context, actor domain.Actor) (io.ReadCloser, error) {
	return s.faceFn(ctx, actor)
}

type stubFolderService struct {
	rootFn       func(ctx context.Context) (*domain.Folder, error)
	createFn     func(ctx context.Context, name, parentID string, actor domain.Actor) (string, error)
	deleteFn     func(ctx context.Context, folderID string, actor domain.Actor) error
	renameFn     func(ctx context.Context, folderID, newName string, actor domain.Actor) error
	listByNameFn func(ctx context.Context, name string, actor domain.Actor) (*domain.FolderContents, error)
	listByIDFn   func(ctx context.Context, folderID string, actor domain.Actor) (*domain.FolderContents, error)
}

func (s *stubFolderService) EnsureRootExists(ctx context.Context) (*domain.Folder, error) {
	return s.rootFn(ctx)
}

func (s *stubFolderService) Root(ctx context.Context) (*domain.Folder, error) {
	return s.rootFn(ctx)
}

func (s *stubFolderService) CreateFolder(ctx context.Context, name, parentID string, actor domain.Actor) (string, error) {
	return s.createFn(ctx, name, parentID, actor)
}

func (s *stubFolderService) DeleteFolder(ctx context.Context, folderID string, actor domain.Actor) error {
	return s.deleteFn(ctx, folderID, actor)
}

func (s *stubFolderService) RenameFolder(ctx context.Context, folderID, newName string, actor domain.Actor) error {
	return s.renameFn(ctx, folderID, newName, actor)
}

func (s *stubFolderService) ListContents(ctx context.Context, name string, actor domain.Actor) (*domain.FolderContents, error) {
	return s.listByNameFn(ctx, name, actor)
}

func (s *stubFolderService) ListContentsByID(ctx context.Context, folderID string, actor domain.Actor) (*domain.FolderContents, error) {
	return s.listByIDFn(ctx, folderID, actor)
}

type stubFileService struct {
	uploadFn   func(ctx context.Context, in ports.UploadFileInput, actor domain.Actor) (string, error)
	deleteFn   func(ctx context.Context, fileID string, actor domain.Actor) error
	renameFn   func(ctx context.Context, fileID, newName string, actor domain.Actor) error
	downloadFn func(ctx context.Context, fileID string, actor domain.Actor) (*ports.FileDownload, error)
}

func (s *stubFileService) UploadFile(ctx context.Context, in ports.UploadFileInput, actor domain.Actor) (string, error) {
	return s.uploadFn(ctx, in, actor)
}

func (s *stubFileService) DeleteFile(ctx context.Context, fileID string, actor domain.Actor) error {
	return s.deleteFn(ctx, fileID, actor)
}

func (s *stubFileService) RenameFile(ctx context.Context, fileID, newName string, actor domain.Actor) error {
	return s.renameFn(ctx, fileID, newName, actor)
}

func (s *stubFileService) DownloadFile(ctx context.Context, fileID string, actor domain.Actor) (*ports.FileDownload, error) {
	return s.downloadFn(ctx, fileID, actor)
}

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

var testActor = domain.Actor{Username: "alice_smith", Role: domain.RoleUser}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// authenticate sets what the Auth middleware would have set.
func authenticate(c echo.Context, actor domain.Actor) {
	c.Set(middleware.ContextUsername, actor.Username)
	c.Set(middleware.ContextRole, actor.Role)
	c.Set(middleware.ContextClaims, &domain.Claims{Subject: actor.Username, Role: actor.Role, TokenID: "jti-test"})
}

type formPart struct {
	filename    string
	contentType string
	data        []byte
}

// multipartRequest builds a multipart/form-data request.
func multipartRequest(t *testing.T, method, target string, fields map[string]string, files map[string]formPart) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for field, p := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+p.filename+`"`)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(p.data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// httpStatus reports the status of an echo.HTTPError, or 0.
func httpStatus(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}
