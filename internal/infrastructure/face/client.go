// Package face talks to the face encoding sidecar. The sidecar accepts an
// image and returns one 128-dimension encoding per detected face.
package face

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 2
	maxResponseBytes  = 1 << 20
)

type encodeResponse struct {
	Faces [][]float64 `json:"faces"`
	Error string      `json:"error,omitempty"`
}

// Client implements ports.FaceEncoder over HTTP.
type Client struct {
	baseURL    string
	http       *http.Client
	maxRetries uint64
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		maxRetries: defaultMaxRetries,
	}
}

// Encode returns the encoding of the first face in image. Transport errors
// and 5xx answers are retried; an image without a face is not.
func (c *Client) Encode(ctx context.Context, image []byte) ([]float64, error) {
	if len(image) == 0 {
		return nil, domain.ErrNoFaceDetected
	}

	var faces [][]float64
	op := func() error {
		var err error
		faces, err = c.encode(ctx, image)
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}

	if len(faces) == 0 || len(faces[0]) == 0 {
		return nil, domain.ErrNoFaceDetected
	}
	return faces[0], nil
}

func (c *Client) encode(ctx context.Context, image []byte) ([][]float64, error) {
	body, contentType, err := multipartImage(image)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/encode", body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("face encoder request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("face encoder: %w", err)
	}
	defer resp.Body.Close()

	var out encodeResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out)

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("face encoder: status %d", resp.StatusCode)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, backoff.Permanent(domain.ErrNoFaceDetected)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("face encoder: status %d: %s", resp.StatusCode, out.Error))
	case decodeErr != nil:
		return nil, backoff.Permanent(fmt.Errorf("face encoder: decode response: %w", decodeErr))
	}
	return out.Faces, nil
}

func multipartImage(image []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "image.jpg")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
