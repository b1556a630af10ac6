package openlibrary

import (
	"context"
	"fmt"
	"net/url"

	"github.com/blackwell-systems/readtrack/internal/book"
)

// Author is an Open Library author record.
type Author struct {
	ID        string
	Name      string
	Bio       string
	BirthDate string
	PhotoURL  string
}

// Author fetches an author by ID (e.g. "OL23919A").
func (c *Client) Author(ctx context.Context, authorID string) (*Author, error) {
	var resp struct {
		Name      string          `json:"name"`
		Bio       descriptionNode `json:"bio"`
		BirthDate string          `json:"birth_date"`
		Photos    []int           `json:"photos"`
	}
	path := fmt.Sprintf("/authors/%s.json", url.PathEscape(authorID))
	if err := c.getJSON(ctx, path, "", &resp); err != nil {
		return nil, fmt.Errorf("fetching author %s: %w", authorID, err)
	}

	a := &Author{
		ID:        authorID,
		Name:      resp.Name,
		Bio:       resp.Bio.Text,
		BirthDate: resp.BirthDate,
	}
	if len(resp.Photos) > 0 && resp.Photos[0] > 0 {
		a.PhotoURL = fmt.Sprintf("%s/a/id/%d-M.jpg", defaultCoversURL, resp.Photos[0])
	}
	return a, nil
}

// WorksPage is one offset's worth of an author's works.
type WorksPage struct {
	Works []book.Record
	// Size is the author's total work count across all offsets.
	Size    int
	HasNext bool
	// NextOffset is the offset for the following fetch; 0 when HasNext is
	// false. HasNext comes from the upstream's own paging link, never a
	// derived guess.
	NextOffset int
}

// AuthorWorks fetches one batch of an author's works. The authorName is
// threaded through because works entries do not repeat it.
func (c *Client) AuthorWorks(ctx context.Context, authorID, authorName string, limit, offset int) (WorksPage, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))
	if offset > 0 {
		q.Set("offset", fmt.Sprint(offset))
	}

	var resp struct {
		Size  int `json:"size"`
		Links struct {
			Next string `json:"next"`
		} `json:"links"`
		Entries []workDoc `json:"entries"`
	}
	path := fmt.Sprintf("/authors/%s/works.json", url.PathEscape(authorID))
	if err := c.getJSON(ctx, path, q.Encode(), &resp); err != nil {
		return WorksPage{}, fmt.Errorf("fetching works for %s at offset %d: %w", authorID, offset, err)
	}

	page := WorksPage{Size: resp.Size}
	for _, e := range resp.Entries {
		page.Works = append(page.Works, e.record(authorName, authorID))
	}
	if resp.Links.Next != "" {
		page.HasNext = true
		page.NextOffset = offset + limit
	}
	return page, nil
}
