package openlibrary

import (
	"context"
	"fmt"
	"net/url"

	"github.com/blackwell-systems/readtrack/internal/book"
)

// Work fetches a single work's details.
func (c *Client) Work(ctx context.Context, workID string) (book.Record, error) {
	var doc workDoc
	path := fmt.Sprintf("/works/%s.json", url.PathEscape(workID))
	if err := c.getJSON(ctx, path, "", &doc); err != nil {
		return book.Record{}, fmt.Errorf("fetching work %s: %w", workID, err)
	}

	rec := doc.record("", "")
	if id := doc.coverID(); id > 0 {
		// Detail views want the large cover.
		rec.Thumbnail = CoverURL(id, "L")
	}
	return rec, nil
}

// Ratings is the aggregate rating summary for a work.
type Ratings struct {
	Average float64
	Count   int
}

// WorkRatings fetches the community rating summary for a work.
func (c *Client) WorkRatings(ctx context.Context, workID string) (Ratings, error) {
	var resp struct {
		Summary struct {
			Average float64 `json:"average"`
			Count   int     `json:"count"`
		} `json:"summary"`
	}
	path := fmt.Sprintf("/works/%s/ratings.json", url.PathEscape(workID))
	if err := c.getJSON(ctx, path, "", &resp); err != nil {
		return Ratings{}, fmt.Errorf("fetching ratings for %s: %w", workID, err)
	}
	return Ratings{Average: resp.Summary.Average, Count: resp.Summary.Count}, nil
}

// Edition holds the physical-edition fields missing from work records.
type Edition struct {
	ISBN        string
	PublishDate string
	PageCount   int
}

// FirstEdition fetches the first listed edition of a work, used to fill
// ISBN, publish date, and page count on detail views. Returns nil (no
// error) when the work has no editions.
func (c *Client) FirstEdition(ctx context.Context, workID string) (*Edition, error) {
	var resp struct {
		Entries []struct {
			ISBN13        []string `json:"isbn_13"`
			ISBN10        []string `json:"isbn_10"`
			PublishDate   string   `json:"publish_date"`
			NumberOfPages int      `json:"number_of_pages"`
		} `json:"entries"`
	}
	path := fmt.Sprintf("/works/%s/editions.json", url.PathEscape(workID))
	if err := c.getJSON(ctx, path, "limit=1", &resp); err != nil {
		return nil, fmt.Errorf("fetching editions for %s: %w", workID, err)
	}
	if len(resp.Entries) == 0 {
		return nil, nil
	}

	e := resp.Entries[0]
	ed := &Edition{
		PublishDate: e.PublishDate,
		PageCount:   e.NumberOfPages,
	}
	if len(e.ISBN13) > 0 {
		ed.ISBN = e.ISBN13[0]
	} else if len(e.ISBN10) > 0 {
		ed.ISBN = e.ISBN10[0]
	}
	return ed, nil
}
