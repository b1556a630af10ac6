package shelf

import (
	"fmt"

	"github.com/blackwell-systems/readtrack/internal/book"
)

// Move transfers bookID between shelves atomically with respect to the
// store's own view: both collections are read, modified in memory, and
// written back; a failed destination write restores the source entry so
// the book is never lost. Returns false (no mutation) when the source
// shelf does not hold the book.
func (s *Store) Move(from, to ID, bookID string) (bool, error) {
	return s.move(from, to, bookID, nil)
}

// MoveToReading moves a book onto the currently-reading shelf, attaching
// validated reading details and creating its progress side-record. Zero
// details default to "started today at page 0".
func (s *Store) MoveToReading(from ID, bookID string, details book.ReadingDetails) (bool, error) {
	if details.StartDate == "" {
		details.StartDate = s.today()
	}
	if err := s.ValidateReadingStart(details); err != nil {
		return false, err
	}

	ok, err := s.move(from, CurrentlyReading, bookID, func(e *Entry) {
		details.EndDate = ""
		e.Reading = &details
	})
	if err != nil || !ok {
		return ok, err
	}
	return true, s.initProgress(bookID, details.CurrentPage)
}

// MoveToFinished moves a book onto the finished shelf. The end date
// defaults to today; the start date is carried over from the existing
// reading details when present. Pages not yet recorded through progress
// updates are credited to the finish day's stats bucket.
func (s *Store) MoveToFinished(from ID, bookID string, details book.ReadingDetails) (bool, error) {
	if details.EndDate == "" {
		details.EndDate = s.today()
	}

	credit := 0
	ok, err := s.move(from, Finished, bookID, func(e *Entry) {
		merged := details
		if merged.StartDate == "" && e.Reading != nil {
			merged.StartDate = e.Reading.StartDate
			merged.CurrentPage = e.Reading.CurrentPage
		}
		if e.PageCount > 0 {
			read := 0
			if e.Reading != nil {
				read = e.Reading.CurrentPage
			}
			credit = e.PageCount - read
		}
		e.Reading = &merged
	}, s.validateFinishedEntry(details))
	if err != nil || !ok {
		return ok, err
	}
	if credit > 0 {
		return true, s.creditPages(details.EndDate, bookID, credit)
	}
	return true, nil
}

// validateFinishedEntry defers start-date dependent checks until the
// source entry is in hand, since the start may be inherited from it.
func (s *Store) validateFinishedEntry(details book.ReadingDetails) func(*Entry) error {
	return func(e *Entry) error {
		merged := details
		if merged.StartDate == "" && e.Reading != nil {
			merged.StartDate = e.Reading.StartDate
		}
		return s.ValidateFinished(merged)
	}
}

// move is the shared two-collection transaction. mutate (optional)
// adjusts the entry between remove and insert; checks (optional) may veto
// the move once the source entry is known.
func (s *Store) move(from, to ID, bookID string, mutate func(*Entry), checks ...func(*Entry) error) (bool, error) {
	if from == to {
		return false, nil
	}

	src, err := s.List(from)
	if err != nil {
		return false, err
	}
	idx := -1
	for i := range src {
		if src[i].ID == bookID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}
	entry := src[idx]

	for _, check := range checks {
		if check == nil {
			continue
		}
		if err := check(&entry); err != nil {
			return false, err
		}
	}

	// The invariant says the book cannot be anywhere else, but verify
	// before touching anything rather than discovering it halfway.
	dst, err := s.List(to)
	if err != nil {
		return false, err
	}
	for _, e := range dst {
		if e.ID == bookID {
			return false, &IntegrityError{
				BookID: bookID,
				Op:     "move",
				Err:    fmt.Errorf("already present on %s", to.Label()),
			}
		}
	}

	remaining := append(src[:idx:idx], src[idx+1:]...)

	now := s.now()
	entry.MovedDate = &now
	entry.LastUpdated = now
	if mutate != nil {
		mutate(&entry)
	}
	dst = append(dst, entry)

	if err := s.save(from, remaining); err != nil {
		return false, err
	}
	if err := s.save(to, dst); err != nil {
		// Restore the source entry rather than losing the book.
		if rerr := s.save(from, src); rerr != nil {
			return false, &IntegrityError{BookID: bookID, Op: "move", Err: rerr}
		}
		return false, err
	}
	return true, nil
}
