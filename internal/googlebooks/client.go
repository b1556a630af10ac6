// Package googlebooks is a minimal Google Books volumes client. readtrack
// uses it to fill gaps in Open Library records: descriptions, page counts,
// and publish dates are spotty there, and the commercial catalog usually
// has them.
package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/blackwell-systems/readtrack/internal/book"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1"

// ErrQuotaExceeded is returned when the API key's daily quota runs out.
var ErrQuotaExceeded = errors.New("google books quota exceeded")

// Client is a Google Books API client.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a Client. The API key may be empty; unauthenticated requests
// work with a lower rate limit.
func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// volume is the wire shape of a Google Books search hit.
type volume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title               string   `json:"title"`
		Authors             []string `json:"authors"`
		Description         string   `json:"description"`
		PublishedDate       string   `json:"publishedDate"`
		PageCount           int      `json:"pageCount"`
		Categories          []string `json:"categories"`
		IndustryIdentifiers []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"industryIdentifiers"`
		ImageLinks struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

// record normalizes a volume into the shared book shape.
func (v volume) record() book.Record {
	info := v.VolumeInfo
	rec := book.Record{
		ID:          book.GoogleBooksID(v.ID),
		Source:      book.SourceGoogleBooks,
		Title:       info.Title,
		Description: info.Description,
		PublishDate: info.PublishedDate,
		PageCount:   info.PageCount,
		Subjects:    info.Categories,
		// Google serves http:// thumbnail links even over TLS.
		Thumbnail: strings.Replace(info.ImageLinks.Thumbnail, "http://", "https://", 1),
	}
	if rec.Title == "" {
		rec.Title = "Unknown Title"
	}
	if len(info.Authors) > 0 {
		rec.Author = info.Authors[0]
	} else {
		rec.Author = "Unknown Author"
	}
	for _, id := range info.IndustryIdentifiers {
		if id.Type == "ISBN_13" || id.Type == "ISBN_10" {
			rec.ISBN = id.Identifier
			break
		}
	}
	return rec
}

// SearchByTitleAuthor finds volumes matching a title and author, best
// match first.
func (c *Client) SearchByTitleAuthor(ctx context.Context, title, author string, maxResults int) ([]book.Record, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	q := url.Values{}
	q.Set("q", fmt.Sprintf("intitle:%s+inauthor:%s", title, author))
	q.Set("maxResults", fmt.Sprint(maxResults))
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	var resp struct {
		Items []volume `json:"items"`
	}
	if err := c.getJSON(ctx, "/volumes", q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("google books search %q/%q: %w", title, author, err)
	}

	books := make([]book.Record, 0, len(resp.Items))
	for _, v := range resp.Items {
		books = append(books, v.record())
	}
	return books, nil
}

func (c *Client) getJSON(ctx context.Context, path, query string, out interface{}) error {
	u := c.baseURL + path
	if query != "" {
		u += "?" + query
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			switch {
			case resp.StatusCode == http.StatusOK:
				return json.NewDecoder(resp.Body).Decode(out)
			case resp.StatusCode == http.StatusTooManyRequests,
				resp.StatusCode == http.StatusForbidden:
				return ErrQuotaExceeded
			default:
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				return &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
			}
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(300*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var se *statusError
			return errors.As(err, &se) && se.status >= 500
		}),
	)
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("google books API error %d: %s", e.status, e.body)
}
