package openlibrary

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultBaseURL   = "https://openlibrary.org"
	defaultCoversURL = "https://covers.openlibrary.org"
	userAgent        = "readtrack (github.com/blackwell-systems/readtrack)"
)

// Client is an Open Library API client. Open Library is unauthenticated;
// it asks only for a User-Agent and restraint.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client against the given API base URL. If baseURL is
// empty, the public Open Library API is used.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			// Hard cap well above any per-call context deadline, so the
			// caller's deadline is what actually fires.
			Timeout: 30 * time.Second,
		},
	}
}

// getJSON fetches path (with optional query string) and decodes the JSON
// response into out. Transient failures (429, 5xx) are retried with
// backoff; the caller's context bounds the whole attempt sequence.
func (c *Client) getJSON(ctx context.Context, path, query string, out interface{}) error {
	url := c.baseURL + path
	if query != "" {
		url += "?" + query
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("User-Agent", userAgent)

			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			if err := checkStatus(resp); err != nil {
				return err
			}
			return json.NewDecoder(resp.Body).Decode(out)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(transient),
	)
}

// checkStatus returns a typed error for non-2xx responses.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &apiError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}
}
