package shelf

import (
	"time"

	"github.com/blackwell-systems/readtrack/internal/book"
)

const dateLayout = "2006-01-02"

func (s *Store) today() string {
	return s.now().Format(dateLayout)
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Reason: "must be YYYY-MM-DD"}
	}
	return t, nil
}

// ValidateReadingStart checks the currently-reading intake form: a valid,
// non-future start date and a non-negative start page.
func (s *Store) ValidateReadingStart(d book.ReadingDetails) error {
	start, err := parseDate("start date", d.StartDate)
	if err != nil {
		return err
	}
	if start.After(s.now()) {
		return &ValidationError{Field: "start date", Reason: "cannot be in the future"}
	}
	if d.CurrentPage < 0 {
		return &ValidationError{Field: "current page", Reason: "cannot be negative"}
	}
	return nil
}

// ValidateFinished checks the finished intake form: valid start and end
// dates, end on or after start, and neither in the future.
func (s *Store) ValidateFinished(d book.ReadingDetails) error {
	if d.StartDate == "" {
		return &ValidationError{Field: "start date", Reason: "required"}
	}
	start, err := parseDate("start date", d.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDate("end date", d.EndDate)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return &ValidationError{Field: "end date", Reason: "cannot be before the start date"}
	}
	now := s.now()
	if start.After(now) || end.After(now) {
		return &ValidationError{Field: "dates", Reason: "cannot be in the future"}
	}
	return nil
}
