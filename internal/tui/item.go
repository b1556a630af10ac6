package tui

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/readtrack/internal/book"
)

// renderItem renders one row of the browser list. The badge is the shelf
// marker (already styled), empty for unshelved books.
func renderItem(rec book.Record, selected bool, badge string) string {
	title := rec.Title
	if r := []rune(title); len(r) > 48 {
		title = string(r[:47]) + "…"
	}
	line := fmt.Sprintf("%-48s", title)

	if rec.Author != "" {
		line += "  " + StyleMeta.Render(rec.Author)
	}
	if rec.PageCount > 0 {
		line += StyleHelp.Render(fmt.Sprintf("  %dp", rec.PageCount))
	}
	line += badge

	if selected {
		return StyleHighlight.Render("› ") + StyleHighlight.Render(line)
	}
	return "  " + StyleNormal.Render(line)
}

// FormatDetail renders a detail pane body from a record plus the extra
// lines the caller fetched (description, ratings).
func FormatDetail(rec book.Record, extra []string) string {
	var b strings.Builder
	b.WriteString(StyleHeader.Render(rec.Title) + "\n")
	if rec.Author != "" {
		b.WriteString(StyleMeta.Render(rec.Author) + "\n")
	}
	meta := []string{}
	if rec.PublishDate != "" {
		meta = append(meta, "published "+rec.PublishDate)
	}
	if rec.PageCount > 0 {
		meta = append(meta, fmt.Sprintf("%d pages", rec.PageCount))
	}
	if rec.ISBN != "" {
		meta = append(meta, "ISBN "+rec.ISBN)
	}
	if len(meta) > 0 {
		b.WriteString(StyleHelp.Render(strings.Join(meta, " • ")) + "\n")
	}
	for _, line := range extra {
		if line != "" {
			b.WriteString("\n" + line)
		}
	}
	return b.String()
}
