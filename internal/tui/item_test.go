package tui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/blackwell-systems/readtrack/internal/book"
)

func TestRenderItem_TruncatesLongTitlesOnRunes(t *testing.T) {
	// Multibyte runes straddling the cut must not be split into garbage.
	title := strings.Repeat("приключение ", 6)
	line := renderItem(book.Record{ID: "ol:OL1W", Title: title}, false, "")

	if !utf8.ValidString(line) {
		t.Fatalf("rendered line is not valid UTF-8: %q", line)
	}
	if !strings.Contains(line, "…") {
		t.Errorf("long title not truncated: %q", line)
	}
	if strings.Contains(line, title) {
		t.Errorf("title rendered in full despite exceeding the column: %q", line)
	}
}

func TestRenderItem_ShortTitleUntouched(t *testing.T) {
	line := renderItem(book.Record{ID: "ol:OL1W", Title: "Kindred"}, false, "")
	if !strings.Contains(line, "Kindred") || strings.Contains(line, "…") {
		t.Errorf("short title mangled: %q", line)
	}
}
