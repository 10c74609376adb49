// Package upload sends images to the external image host and returns the
// public URL it assigns.
//
// The host speaks a small contract: a multipart POST with the file under one
// form field, answered by {"status":"success","url":"..."} or
// {"status":"error","message":"..."}.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// FormField is the multipart field the image host reads.
	FormField = "teamImage"

	// MaxImageBytes caps a single upload.
	MaxImageBytes = 5 << 20
)

// ErrNotImage is returned when the payload is not a supported image type.
var ErrNotImage = errors.New("upload: file is not a supported image")

// ErrTooLarge is returned when the payload exceeds MaxImageBytes.
var ErrTooLarge = fmt.Errorf("upload: image must be %d MB or smaller", MaxImageBytes>>20)

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Uploader is what services depend on.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Client uploads to one image host endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

func NewClient(endpoint string, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

type hostResponse struct {
	Status  string `json:"status"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

// Upload checks the image type and size, posts it and returns its URL.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("upload: reading image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return "", ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		return "", fmt.Errorf("%w (got %s)", ErrNotImage, mt.String())
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile(FormField, safeFilename(filename, mt.Extension()))
	if err != nil {
		return "", fmt.Errorf("upload: building form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("upload: building form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("upload: building form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("upload: building request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: posting image: %w", err)
	}
	defer resp.Body.Close()

	var result hostResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&result); err != nil {
		return "", fmt.Errorf("upload: image host returned status %d with an unreadable body: %w", resp.StatusCode, err)
	}

	if result.Status != "success" || resp.StatusCode >= 300 {
		msg := result.Message
		if msg == "" {
			msg = "image upload failed"
		}
		return "", fmt.Errorf("upload: image host: %s", msg)
	}
	if _, err := url.ParseRequestURI(result.URL); err != nil {
		return "", fmt.Errorf("upload: image host returned an invalid url %q", result.URL)
	}

	c.logger.Info("image uploaded",
		slog.String("url", result.URL),
		slog.String("type", mt.String()),
		slog.Int("bytes", len(data)),
	)
	return result.URL, nil
}

// safeFilename keeps only the base name and forces the detected extension.
func safeFilename(name, ext string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "image"
	}
	return base + ext
}

// PlaceholderAvatar is the generated avatar used when no image was uploaded.
func PlaceholderAvatar(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(strings.TrimSpace(name)) + "&background=random&color=fff"
}
