package openlibrary

import (
	"context"
	"fmt"
	"net/url"

	"github.com/blackwell-systems/readtrack/internal/book"
)

// SearchResult is one page of search hits.
type SearchResult struct {
	Books []book.Record
	// Total is the number of matches across all offsets.
	Total int
}

// Search queries the catalog. Offset is the zero-based index of the first
// hit to return.
func (c *Client) Search(ctx context.Context, query string, limit, offset int) (SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", fmt.Sprint(limit))
	if offset > 0 {
		q.Set("offset", fmt.Sprint(offset))
	}

	var resp struct {
		NumFound int       `json:"numFound"`
		Docs     []workDoc `json:"docs"`
	}
	if err := c.getJSON(ctx, "/search.json", q.Encode(), &resp); err != nil {
		return SearchResult{}, fmt.Errorf("searching %q: %w", query, err)
	}

	out := SearchResult{Total: resp.NumFound}
	for _, d := range resp.Docs {
		out.Books = append(out.Books, d.record("", ""))
	}
	return out, nil
}

// SearchByField queries a single field (author, title, subject).
func (c *Client) SearchByField(ctx context.Context, field, value string, limit int) ([]book.Record, error) {
	q := url.Values{}
	q.Set(field, value)
	q.Set("limit", fmt.Sprint(limit))

	var resp struct {
		Docs []workDoc `json:"docs"`
	}
	if err := c.getJSON(ctx, "/search.json", q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("searching %s=%q: %w", field, value, err)
	}

	books := make([]book.Record, 0, len(resp.Docs))
	for _, d := range resp.Docs {
		books = append(books, d.record("", ""))
	}
	return books, nil
}

// Trending returns the currently trending works for a timeframe (daily,
// weekly, monthly, yearly, forever).
func (c *Client) Trending(ctx context.Context, timeframe string, limit int) ([]book.Record, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))

	var resp struct {
		Works []workDoc `json:"works"`
	}
	path := fmt.Sprintf("/trending/%s.json", url.PathEscape(timeframe))
	if err := c.getJSON(ctx, path, q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("fetching trending (%s): %w", timeframe, err)
	}

	books := make([]book.Record, 0, len(resp.Works))
	for _, w := range resp.Works {
		books = append(books, w.record("", ""))
	}
	return books, nil
}
