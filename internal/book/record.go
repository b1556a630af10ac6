package book

import (
	"strings"

	"github.com/google/uuid"
)

// Source identifies which upstream catalog a record was normalized from.
type Source string

const (
	SourceOpenLibrary Source = "openlibrary"
	SourceGoogleBooks Source = "googlebooks"
	SourceManual      Source = "manual"
)

// ID prefixes keep identifiers from the two catalogs and manual entries
// from ever colliding, so shelf membership can key on ID alone.
const (
	openLibraryPrefix = "ol:"
	googleBooksPrefix = "gb:"
	manualPrefix      = "manual:"
)

// Record is a normalized book from any source. Identity is the ID; two
// records with equal IDs refer to the same book regardless of the rest.
type Record struct {
	ID          string          `json:"id"`
	Source      Source          `json:"source"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	AuthorID    string          `json:"authorId,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	PageCount   int             `json:"pageCount,omitempty"`
	ISBN        string          `json:"isbn,omitempty"`
	PublishDate string          `json:"publishDate,omitempty"`
	Subjects    []string        `json:"subjects,omitempty"`
	Description string          `json:"description,omitempty"`
	Reading     *ReadingDetails `json:"readingDetails,omitempty"`
}

// ReadingDetails is attached to a record once it is shelved. Dates are
// YYYY-MM-DD.
type ReadingDetails struct {
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	CurrentPage int    `json:"currentPage,omitempty"`
}

// OpenLibraryID returns the namespaced ID for an Open Library work key,
// accepting either a bare ID ("OL45883W") or a full key ("/works/OL45883W").
func OpenLibraryID(key string) string {
	key = strings.TrimPrefix(key, "/works/")
	key = strings.TrimPrefix(key, "/books/")
	return openLibraryPrefix + key
}

// GoogleBooksID returns the namespaced ID for a Google Books volume ID.
func GoogleBooksID(volumeID string) string {
	return googleBooksPrefix + volumeID
}

// NewManualID mints a synthetic ID for a manually entered book.
func NewManualID() string {
	return manualPrefix + uuid.NewString()
}

// IsManual reports whether id belongs to a manually entered book.
func IsManual(id string) bool {
	return strings.HasPrefix(id, manualPrefix)
}
