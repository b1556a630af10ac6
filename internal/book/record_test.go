package book_test

import (
	"strings"
	"testing"

	"github.com/blackwell-systems/readtrack/internal/book"
)

func TestOpenLibraryID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/works/OL45883W", "ol:OL45883W"},
		{"OL45883W", "ol:OL45883W"},
		{"/books/OL7353617M", "ol:OL7353617M"},
	}
	for _, c := range cases {
		if got := book.OpenLibraryID(c.in); got != c.want {
			t.Errorf("OpenLibraryID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestGoogleBooksID_NeverCollidesWithOpenLibrary(t *testing.T) {
	// Same raw identifier from both catalogs must map to distinct IDs.
	raw := "abc123"
	if book.OpenLibraryID(raw) == book.GoogleBooksID(raw) {
		t.Error("namespaced IDs collide across sources")
	}
}

func TestNewManualID(t *testing.T) {
	a := book.NewManualID()
	b := book.NewManualID()
	if !book.IsManual(a) {
		t.Errorf("NewManualID() = %q, want manual: prefix", a)
	}
	if a == b {
		t.Error("two manual IDs are equal")
	}
	if strings.HasPrefix(a, "ol:") || strings.HasPrefix(a, "gb:") {
		t.Errorf("manual ID %q collides with a catalog namespace", a)
	}
}
