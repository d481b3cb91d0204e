// Package cli is the terminal client behind fmctl: it prompts for
// credentials, captures a face image and talks to the HTTP API.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

const defaultHTTPTimeout = 30 * time.Second

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// App holds what every command needs.
type App struct {
	server   string
	http     *http.Client
	capturer ports.Capturer
	out      io.Writer
}

func NewApp(server string, capturer ports.Capturer, out io.Writer) *App {
	return &App{
		server:   strings.TrimRight(server, "/"),
		http:     &http.Client{Timeout: defaultHTTPTimeout},
		capturer: capturer,
		out:      out,
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server answered %d: %s", e.Status, e.Message)
}

// Password prompts on out and reads a password without echo.
func (a *App) Password(prompt string) (string, error) {
	if _, err := fmt.Fprint(a.out, prompt); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// Face returns the image in path, or captures one from the camera when path
// is empty.
func (a *App) Face(ctx context.Context, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	if a.capturer == nil {
		return nil, errors.New("no face image given and no camera configured")
	}
	fmt.Fprintln(a.out, "Look at the camera...")
	return a.capturer.Capture(ctx)
}

type signupResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// SignUp creates an account.
func (a *App) SignUp(ctx context.Context, username, password, role string, face []byte) error {
	var resp signupResponse
	err := a.postForm(ctx, "/signup", map[string]string{
		"username": username,
		"password": password,
		"role":     role,
	}, face, &resp)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created %s account %q (%s)\n", resp.Role, resp.Username, resp.ID)
	return nil
}

// LoginResult is the issued session token.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login authenticates and returns the issued token.
func (a *App) Login(ctx context.Context, username, password string, face []byte) (*LoginResult, error) {
	var res LoginResult
	err := a.postForm(ctx, "/login", map[string]string{
		"username": username,
		"password": password,
	}, face, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *App) postForm(ctx context.Context, path string, fields map[string]string, face []byte, out any) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="face"; filename="face.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := part.Write(face); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.server+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
