package app

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/readtrack/internal/book"
	"github.com/blackwell-systems/readtrack/internal/shelf"
	"github.com/fatih/color"
)

// printRecords lists records one per line, numbered from start.
func printRecords(recs []book.Record, start int) {
	for i, r := range recs {
		author := ""
		if r.Author != "" {
			author = " — " + color.CyanString(r.Author)
		}
		pages := ""
		if r.PageCount > 0 {
			pages = color.HiBlackString(" (%dp)", r.PageCount)
		}
		badge := ""
		if id, found, err := shelves.FindShelfOf(r.ID); err == nil && found {
			badge = " " + color.GreenString("[%s]", id.Label())
		}
		fmt.Printf("  %2d. %s%s%s%s\n", start+i, r.Title, author, pages, badge)
		fmt.Printf("      %s\n", color.HiBlackString(r.ID))
	}
}

// findEntry locates a shelved book by ID, or by unambiguous title prefix
// as a convenience for typing.
func findEntry(arg string) (shelf.ID, shelf.Entry, error) {
	var (
		foundShelf shelf.ID
		found      []shelf.Entry
	)
	for _, id := range shelf.All() {
		entries, err := shelves.List(id)
		if err != nil {
			return "", shelf.Entry{}, err
		}
		for _, e := range entries {
			if e.ID == arg {
				return id, e, nil
			}
			if strings.HasPrefix(strings.ToLower(e.Title), strings.ToLower(arg)) {
				foundShelf = id
				found = append(found, e)
			}
		}
	}
	switch len(found) {
	case 0:
		return "", shelf.Entry{}, fmt.Errorf("no shelved book matches %q", arg)
	case 1:
		return foundShelf, found[0], nil
	default:
		titles := make([]string, len(found))
		for i, e := range found {
			titles[i] = e.Title
		}
		return "", shelf.Entry{}, fmt.Errorf("%q is ambiguous: %s", arg, strings.Join(titles, ", "))
	}
}

// workID strips any namespace or key prefix so catalog lookups accept
// "ol:OL45883W", "/works/OL45883W", or a bare ID.
func workID(arg string) string {
	arg = strings.TrimPrefix(arg, "ol:")
	if i := strings.LastIndex(arg, "/"); i >= 0 {
		arg = arg[i+1:]
	}
	return arg
}
