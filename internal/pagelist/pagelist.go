// Package pagelist holds the pure pagination arithmetic shared by every
// listing view: page counts, page slicing, and the 3-wide page-number
// window rendered next to the prev/next controls.
package pagelist

// TotalPages returns ceil(totalItems / pageSize). Zero items means zero
// pages, not one.
func TotalPages(totalItems, pageSize int) int {
	if totalItems <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// Slice returns the items for a 1-based page number. Out-of-range pages
// yield an empty slice; callers validate page numbers before navigating,
// not here.
func Slice[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize <= 0 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// VisibleRange returns the inclusive window of at most 3 page numbers to
// display for the given current page. With totalPages <= 3 the window is
// [1, totalPages] (empty when totalPages is 0). Otherwise it is centered
// on the current page and clamped, with the first and last pages pinned
// so the window always holds exactly 3 numbers.
func VisibleRange(current, totalPages int) (start, end int) {
	if totalPages <= 3 {
		return 1, totalPages
	}

	start = current - 1
	if start < 1 {
		start = 1
	}
	end = current + 1
	if end > totalPages {
		end = totalPages
	}

	if current == 1 {
		end = 3
	} else if current == totalPages {
		start = totalPages - 2
	}
	return start, end
}
