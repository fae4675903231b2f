// Package drive implements the remote presentation source over the
// hosted documents HTTP API.
//
// The client is the pipeline's only ingress: loosely-shaped remote page
// data is normalized into the vector-document schema here, so no other
// package ever sees wire structures. All methods are safe for
// concurrent use; requests are rate limited client-side and transient
// failures are surfaced as retryable errors for the pipeline's backoff
// loop.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmidlo/gslide2media/pkg/errors"
	"github.com/dmidlo/gslide2media/pkg/httputil"
	"github.com/dmidlo/gslide2media/pkg/observability"
	"github.com/dmidlo/gslide2media/pkg/slides"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRPS     = 10
	defaultBurst   = 20
)

// Config configures a drive client.
type Config struct {
	// BaseURL of the documents API, without trailing slash.
	BaseURL string

	// Token is the bearer token attached to every request. Empty means
	// unauthenticated (public documents only).
	Token string

	// Client-side rate limit. Zero values take the defaults (10 rps,
	// burst 20); the remote's own limiter answers 429 past that.
	RequestsPerSecond float64
	Burst             int

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

// Client talks to the documents API and implements
// [slides.RemoteSource].
type Client struct {
	http    *http.Client
	base    string
	token   string
	limiter *rate.Limiter
}

// NewClient creates a drive client. BaseURL is required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "drive: base URL is required")
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		base:    cfg.BaseURL,
		token:   cfg.Token,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}, nil
}

// ListFolder returns the direct children of folderID. The root sentinel
// lists the top of the caller's hierarchy.
func (c *Client) ListFolder(ctx context.Context, folderID string) (*slides.Listing, error) {
	if err := errors.ValidateResourceID(folderID); err != nil {
		return nil, err
	}
	var resp listingResponse
	if err := c.get(ctx, fmt.Sprintf("/folders/%s/children", url.PathEscape(folderID)), &resp); err != nil {
		return nil, err
	}
	return resp.toListing(), nil
}

// GetPresentation resolves a presentation's display name and declared
// slide order.
func (c *Client) GetPresentation(ctx context.Context, presentationID string) (*slides.Presentation, error) {
	if err := errors.ValidateResourceID(presentationID); err != nil {
		return nil, err
	}
	var resp presentationResponse
	if err := c.get(ctx, fmt.Sprintf("/presentations/%s", url.PathEscape(presentationID)), &resp); err != nil {
		return nil, err
	}
	return resp.toPresentation()
}

// FetchSlideVector retrieves one slide's page data and normalizes it
// into the vector-document schema.
func (c *Client) FetchSlideVector(ctx context.Context, presentationID, slideID string) (*slides.VectorDocument, error) {
	if err := errors.ValidateResourceID(presentationID); err != nil {
		return nil, err
	}
	if err := errors.ValidateResourceID(slideID); err != nil {
		return nil, err
	}
	var resp pageResponse
	path := fmt.Sprintf("/presentations/%s/pages/%s",
		url.PathEscape(presentationID), url.PathEscape(slideID))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return normalizePage(&resp)
}

// get performs one rate-limited GET and JSON-decodes the response.
func (c *Client) get(ctx context.Context, path string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	observability.HTTP().OnRequest(ctx, http.MethodGet, req.URL.Host, path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, req.URL.Host, path, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httputil.Retryable(errors.Wrap(errors.ErrCodeTransient, err, "request %s", path))
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, req.URL.Host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, path); err != nil {
		drain(resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "decode response from %s", path)
	}
	return nil
}

// checkStatus maps HTTP status codes onto the pipeline's error taxonomy.
// 404 and 403 are per-item terminal; 429 and 5xx are retryable.
func checkStatus(resp *http.Response, path string) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "resource not found: %s", path)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return errors.New(errors.ErrCodePermissionDenied, "access denied: %s", path)
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.Wrap(errors.ErrCodeRateLimited,
			&errors.RateLimitedError{RetryAfter: retryAfter(resp)},
			"throttled: %s", path)
	case resp.StatusCode >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeTransient,
			"server error %d: %s", resp.StatusCode, path))
	default:
		return errors.New(errors.ErrCodeInternal, "unexpected status %d: %s", resp.StatusCode, path)
	}
}

func retryAfter(resp *http.Response) int {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return 0
}

// drain reads the remainder of an error response so the underlying
// connection stays reusable.
func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
}

// Ensure Client implements slides.RemoteSource.
var _ slides.RemoteSource = (*Client)(nil)
