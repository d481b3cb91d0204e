package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCapturer struct {
	image []byte
	err   error
}

func (s stubCapturer) Capture(context.Context) ([]byte, error) { return s.image, s.err }

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/signup", func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("face")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		face, _ := io.ReadAll(f)
		assert.Equal(t, "jpeg", string(face))
		if r.FormValue("username") == "taken_user" {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"username already exists"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"u1","username":"` + r.FormValue("username") + `","role":"` + r.FormValue("role") + `"}`))
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("password") != "s3cretpass" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_at":"2026-05-01T12:15:00Z"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestApp_SignUp(t *testing.T) {
	srv := fakeServer(t)
	var out bytes.Buffer
	app := NewApp(srv.URL+"/", nil, &out)

	require.NoError(t, app.SignUp(context.Background(), "alice_smith", "s3cretpass", "user", []byte("jpeg")))
	assert.Contains(t, out.String(), `created user account "alice_smith"`)

	err := app.SignUp(context.Background(), "taken_user", "s3cretpass", "user", []byte("jpeg"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "username already exists", apiErr.Message)
}

func TestApp_Login(t *testing.T) {
	srv := fakeServer(t)
	app := NewApp(srv.URL, nil, io.Discard)

	res, err := app.Login(context.Background(), "alice_smith", "s3cretpass", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "tok", res.AccessToken)
	assert.Equal(t, "bearer", res.TokenType)

	_, err = app.Login(context.Background(), "alice_smith", "wrong", []byte("jpeg"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestApp_Face(t *testing.T) {
	var out bytes.Buffer
	app := NewApp("http://unused", stubCapturer{image: []byte("frame")}, &out)

	img, err := app.Face(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "frame", string(img))

	app = NewApp("http://unused", stubCapturer{err: errors.New("no camera")}, &out)
	_, err = app.Face(context.Background(), "")
	assert.EqualError(t, err, "no camera")

	app = NewApp("http://unused", nil, &out)
	_, err = app.Face(context.Background(), "")
	assert.Error(t, err)
}

func TestApp_Password(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(int) ([]byte, error) { return []byte("s3cretpass"), nil }

	var out bytes.Buffer
	pw, err := NewApp("http://unused", nil, &out).Password("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "s3cretpass", pw)
	assert.Equal(t, "Password: \n", out.String())
}
