package shelf

import (
	"sort"
	"time"
)

// TimelineFilter narrows the reading history. Zero values leave that axis
// unconstrained.
type TimelineFilter struct {
	Year  int
	Month time.Month
}

// Timeline returns the finished books that carry an end date, newest
// finish first. Entries with malformed dates are skipped rather than
// failing the whole history.
func (s *Store) Timeline(f TimelineFilter) ([]Entry, error) {
	entries, err := s.List(Finished)
	if err != nil {
		return nil, err
	}

	kept := entries[:0:0]
	for _, e := range entries {
		if e.Reading == nil || e.Reading.EndDate == "" {
			continue
		}
		end, err := time.Parse(dateLayout, e.Reading.EndDate)
		if err != nil {
			continue
		}
		if f.Year != 0 && end.Year() != f.Year {
			continue
		}
		if f.Month != 0 && end.Month() != f.Month {
			continue
		}
		kept = append(kept, e)
	}

	// ISO dates sort lexicographically.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Reading.EndDate > kept[j].Reading.EndDate
	})
	return kept, nil
}

// TimelineStats summarizes a slice of finished books.
type TimelineStats struct {
	Books int
	Pages int
	// AvgDays is the mean reading time over the books with both dates
	// recorded, 0 when none have. A same-day finish counts as one day.
	AvgDays int
}

// SummarizeTimeline computes the header stats for a timeline listing.
func SummarizeTimeline(entries []Entry) TimelineStats {
	st := TimelineStats{Books: len(entries)}
	days, counted := 0, 0
	for _, e := range entries {
		st.Pages += e.PageCount
		if e.Reading == nil || e.Reading.StartDate == "" || e.Reading.EndDate == "" {
			continue
		}
		start, err := time.Parse(dateLayout, e.Reading.StartDate)
		if err != nil {
			continue
		}
		end, err := time.Parse(dateLayout, e.Reading.EndDate)
		if err != nil {
			continue
		}
		d := int(end.Sub(start).Hours() / 24)
		if d < 1 {
			d = 1
		}
		days += d
		counted++
	}
	if counted > 0 {
		st.AvgDays = (days + counted/2) / counted
	}
	return st
}
