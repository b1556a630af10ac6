package openlibrary

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// Common Open Library API errors.
var (
	// ErrNotFound is returned when a work, author, or edition does not exist.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited is returned on HTTP 429 after retries are exhausted.
	ErrRateLimited = errors.New("rate limited — slow down requests")
)

// apiError is any other non-2xx response.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("open library API error %d: %s", e.status, e.body)
}

// IsTimeout reports whether err is a timeout, as opposed to an HTTP-level
// failure, so callers can word the message differently.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}

// transient reports whether a request is worth retrying.
func transient(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var ae *apiError
	return errors.As(err, &ae) && ae.status >= 500
}
