// Package fetch retrieves raw markdown documents over HTTP or from local files.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rpggio/statusboard/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultTimeout bounds a single document fetch.
	DefaultTimeout = 15 * time.Second

	// MaxDocumentSize is the largest document accepted.
	MaxDocumentSize = 4 << 20

	tracerName = "github.com/rpggio/statusboard/internal/fetch"
)

// ErrDocumentTooLarge is returned for documents over MaxDocumentSize.
var ErrDocumentTooLarge = errors.New("document too large")

// Client fetches documents by URL. It satisfies project.Fetcher.
type Client struct {
	http   *http.Client
	logger *slog.Logger
	tracer trace.Tracer
}

// NewClient creates a client with the given timeout. A zero timeout uses
// DefaultTimeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

// Fetch returns the document body at rawURL. Missing documents wrap
// repository.ErrNotFound; file:// URLs are read from disk.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "fetch.Fetch", trace.WithAttributes(attribute.String("url.full", rawURL)))
	defer span.End()

	text, err := c.fetch(ctx, rawURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("fetch failed", "url", rawURL, "error", err)
		return "", err
	}
	span.SetAttributes(attribute.Int("fetch.bytes", len(text)))
	return text, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", rawURL, err)
	}

	switch u.Scheme {
	case "file":
		return readFile(u.Path)
	case "http", "https":
	default:
		return "", fmt.Errorf("fetching %s: unsupported scheme %q", rawURL, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "text/plain, text/markdown, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("fetching %s: %w", rawURL, repository.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", rawURL, err)
	}
	if len(body) > MaxDocumentSize {
		return "", fmt.Errorf("reading %s: %w", rawURL, ErrDocumentTooLarge)
	}
	return string(body), nil
}

func readFile(path string) (string, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("reading %s: %w", path, repository.ErrNotFound)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if len(body) > MaxDocumentSize {
		return "", fmt.Errorf("reading %s: %w", path, ErrDocumentTooLarge)
	}
	return string(body), nil
}
