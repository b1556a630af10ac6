package openlibrary

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blackwell-systems/readtrack/internal/book"
)

// workDoc is the loosely shaped work object Open Library returns from
// search, trending, and author-works listings. The three endpoints
// disagree on field names (author_name vs authors, cover_i vs covers),
// so everything is normalized into book.Record here at the boundary and
// nothing downstream ever branches on these fields.
type workDoc struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	AuthorNames []string `json:"author_name"`
	AuthorKeys  []string `json:"author_key"`
	Authors     []struct {
		Author struct {
			Key string `json:"key"`
		} `json:"author"`
	} `json:"authors"`
	CoverI           int             `json:"cover_i"`
	Covers           []int           `json:"covers"`
	Subjects         []string        `json:"subject"`
	WorkSubjects     []string        `json:"subjects"`
	ISBNs            []string        `json:"isbn"`
	FirstPublishYear int             `json:"first_publish_year"`
	FirstPublishDate string          `json:"first_publish_date"`
	NumberOfPages    int             `json:"number_of_pages"`
	Description      descriptionNode `json:"description"`
}

// descriptionNode handles Open Library descriptions arriving either as a
// plain string or as {"type": ..., "value": ...}.
type descriptionNode struct {
	Text string
}

func (d *descriptionNode) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d.Text = s
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	d.Text = obj.Value
	return nil
}

// record normalizes a workDoc. An optional author display name overrides
// the doc's own (author-works entries carry no name at all).
func (w workDoc) record(authorName, authorID string) book.Record {
	rec := book.Record{
		ID:     book.OpenLibraryID(w.Key),
		Source: book.SourceOpenLibrary,
		Title:  w.Title,
	}
	if rec.Title == "" {
		rec.Title = "Unknown Title"
	}

	rec.Author = authorName
	if rec.Author == "" && len(w.AuthorNames) > 0 {
		rec.Author = w.AuthorNames[0]
	}
	if rec.Author == "" {
		rec.Author = "Unknown Author"
	}

	rec.AuthorID = authorID
	if rec.AuthorID == "" {
		if len(w.AuthorKeys) > 0 {
			rec.AuthorID = cleanAuthorKey(w.AuthorKeys[0])
		} else if len(w.Authors) > 0 {
			rec.AuthorID = cleanAuthorKey(w.Authors[0].Author.Key)
		}
	}

	if id := w.coverID(); id > 0 {
		rec.Thumbnail = CoverURL(id, "M")
	}
	if len(w.ISBNs) > 0 {
		rec.ISBN = w.ISBNs[0]
	}
	if w.FirstPublishDate != "" {
		rec.PublishDate = w.FirstPublishDate
	} else if w.FirstPublishYear > 0 {
		rec.PublishDate = fmt.Sprintf("%d", w.FirstPublishYear)
	}
	rec.PageCount = w.NumberOfPages
	rec.Description = w.Description.Text

	subjects := w.Subjects
	if len(subjects) == 0 {
		subjects = w.WorkSubjects
	}
	if len(subjects) > 3 {
		subjects = subjects[:3]
	}
	rec.Subjects = subjects

	return rec
}

func (w workDoc) coverID() int {
	if len(w.Covers) > 0 && w.Covers[0] > 0 {
		return w.Covers[0]
	}
	if w.CoverI > 0 {
		return w.CoverI
	}
	return 0
}

// cleanAuthorKey strips the /authors/ prefix from an author key.
func cleanAuthorKey(key string) string {
	return strings.TrimPrefix(key, "/authors/")
}

// CoverURL builds a cover image URL for a cover ID. Size is S, M, or L.
func CoverURL(coverID int, size string) string {
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", defaultCoversURL, coverID, size)
}
