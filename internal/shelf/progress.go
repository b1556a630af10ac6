package shelf

import (
	"fmt"
	"time"
)

// Storage keys for the progress and goal side-records. Stable across
// releases, like the shelf keys.
const (
	progressKey = "book_progress"
	goalKey     = "reading_goal"
	weeklyKey   = "weekly_stats"
)

// ProgressRecord tracks page-level progress for a book on the
// currently-reading shelf. It lives beside the shelf entry, not inside
// it, and is deleted when the book is removed.
type ProgressRecord struct {
	CurrentPage      int       `json:"currentPage"`
	TotalPages       int       `json:"totalPages"`
	InitialStartPage int       `json:"initialStartPage"`
	LastUpdated      time.Time `json:"lastUpdated"`
	Notes            []Note    `json:"notes,omitempty"`
}

// Note is a dated free-text note on a book in progress.
type Note struct {
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

func (s *Store) progressMap() (map[string]ProgressRecord, error) {
	m := map[string]ProgressRecord{}
	if _, err := s.kv.Get(progressKey, &m); err != nil {
		return nil, fmt.Errorf("reading progress records: %w", err)
	}
	return m, nil
}

func (s *Store) saveProgressMap(m map[string]ProgressRecord) error {
	return s.kv.Set(progressKey, m)
}

// initProgress creates the progress record for a newly started book. An
// existing record is left alone so a want→reading→want→reading roundtrip
// keeps its history.
func (s *Store) initProgress(bookID string, startPage int) error {
	m, err := s.progressMap()
	if err != nil {
		return err
	}
	if _, ok := m[bookID]; ok {
		return nil
	}

	total := 0
	if reading, err := s.List(CurrentlyReading); err == nil {
		for _, e := range reading {
			if e.ID == bookID {
				total = e.PageCount
				break
			}
		}
	}

	m[bookID] = ProgressRecord{
		CurrentPage:      startPage,
		TotalPages:       total,
		InitialStartPage: startPage,
		LastUpdated:      s.now(),
	}
	return s.saveProgressMap(m)
}

func (s *Store) deleteProgress(bookID string) error {
	m, err := s.progressMap()
	if err != nil {
		return err
	}
	if _, ok := m[bookID]; !ok {
		return nil
	}
	delete(m, bookID)
	return s.saveProgressMap(m)
}

// Progress returns bookID's progress record, or false if none exists.
func (s *Store) Progress(bookID string) (ProgressRecord, bool, error) {
	m, err := s.progressMap()
	if err != nil {
		return ProgressRecord{}, false, err
	}
	rec, ok := m[bookID]
	return rec, ok, nil
}

// UpdateProgress sets the current page for a book on the currently-reading
// shelf, updating both the side-record and the shelf entry.
func (s *Store) UpdateProgress(bookID string, currentPage int) error {
	if currentPage < 0 {
		return &ValidationError{Field: "current page", Reason: "cannot be negative"}
	}

	entries, err := s.List(CurrentlyReading)
	if err != nil {
		return err
	}
	idx := -1
	for i := range entries {
		if entries[i].ID == bookID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%s is not on the currently reading shelf", bookID)
	}
	if total := entries[idx].PageCount; total > 0 && currentPage > total {
		return &ValidationError{
			Field:  "current page",
			Reason: fmt.Sprintf("exceeds the book's %d pages", total),
		}
	}

	if entries[idx].Reading != nil {
		entries[idx].Reading.CurrentPage = currentPage
	}
	entries[idx].LastUpdated = s.now()
	if err := s.save(CurrentlyReading, entries); err != nil {
		return err
	}

	m, err := s.progressMap()
	if err != nil {
		return err
	}
	rec := m[bookID]
	prev := rec.CurrentPage
	rec.CurrentPage = currentPage
	if rec.TotalPages == 0 {
		rec.TotalPages = entries[idx].PageCount
	}
	rec.LastUpdated = s.now()
	m[bookID] = rec
	if err := s.saveProgressMap(m); err != nil {
		return err
	}
	return s.recordPagesRead(bookID, currentPage-prev)
}

// DayStats accumulates the pages read on one calendar day, with the books
// they came from.
type DayStats struct {
	PagesRead int      `json:"pagesRead"`
	Books     []string `json:"books,omitempty"`
}

func (s *Store) weeklyMap() (map[string]DayStats, error) {
	m := map[string]DayStats{}
	if _, err := s.kv.Get(weeklyKey, &m); err != nil {
		return nil, fmt.Errorf("reading weekly stats: %w", err)
	}
	return m, nil
}

// recordPagesRead applies a page delta to today's bucket. A correction
// backwards subtracts, clamped at zero; a bucket corrected down to zero
// stops crediting the book for the day.
func (s *Store) recordPagesRead(bookID string, delta int) error {
	return s.creditPages(s.today(), bookID, delta)
}

func (s *Store) creditPages(day, bookID string, delta int) error {
	if delta == 0 {
		return nil
	}
	m, err := s.weeklyMap()
	if err != nil {
		return err
	}

	d := m[day]
	d.PagesRead += delta
	if d.PagesRead < 0 {
		d.PagesRead = 0
	}
	if delta > 0 {
		d.Books = appendUnique(d.Books, bookID)
	} else if d.PagesRead == 0 {
		d.Books = removeString(d.Books, bookID)
	}
	m[day] = d
	return s.kv.Set(weeklyKey, m)
}

// uncountFinishDay backs a deleted finished book's pages out of the day
// it was finished on, so the weekly totals stop crediting it.
func (s *Store) uncountFinishDay(bookID, endDate string, pages int) error {
	m, err := s.weeklyMap()
	if err != nil {
		return err
	}
	d, ok := m[endDate]
	if !ok {
		return nil
	}
	d.PagesRead -= pages
	if d.PagesRead < 0 {
		d.PagesRead = 0
	}
	d.Books = removeString(d.Books, bookID)
	m[endDate] = d
	return s.kv.Set(weeklyKey, m)
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}

func removeString(list []string, v string) []string {
	kept := list[:0:0]
	for _, s := range list {
		if s != v {
			kept = append(kept, s)
		}
	}
	return kept
}

// AddNote appends a dated note to a book's progress record.
func (s *Store) AddNote(bookID, text string) error {
	if text == "" {
		return &ValidationError{Field: "note", Reason: "cannot be empty"}
	}
	m, err := s.progressMap()
	if err != nil {
		return err
	}
	rec := m[bookID]
	rec.Notes = append(rec.Notes, Note{Text: text, Date: s.now()})
	rec.LastUpdated = s.now()
	m[bookID] = rec
	return s.saveProgressMap(m)
}

// ReadingGoal returns the yearly book-count goal, 0 when unset.
func (s *Store) ReadingGoal() (int, error) {
	var goal int
	if _, err := s.kv.Get(goalKey, &goal); err != nil {
		return 0, err
	}
	return goal, nil
}

// SetReadingGoal stores the yearly goal.
func (s *Store) SetReadingGoal(n int) error {
	if n < 0 {
		return &ValidationError{Field: "goal", Reason: "cannot be negative"}
	}
	return s.kv.Set(goalKey, n)
}

// Stats summarizes the library for the dashboard.
type Stats struct {
	WantToRead       int
	CurrentlyReading int
	Finished         int
	FinishedThisYear int
	Goal             int
	GoalPercent      int
	// PagesThisWeek sums the daily buckets of the trailing seven days.
	PagesThisWeek int
	// CurrentStreak counts consecutive days ending today with pages read.
	CurrentStreak int
}

// Stats computes shelf counts and progress toward the yearly goal.
func (s *Store) Stats() (Stats, error) {
	counts, err := s.Counts()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		WantToRead:       counts[WantToRead],
		CurrentlyReading: counts[CurrentlyReading],
		Finished:         counts[Finished],
	}

	year := fmt.Sprintf("%04d-", s.now().Year())
	finished, err := s.List(Finished)
	if err != nil {
		return Stats{}, err
	}
	for _, e := range finished {
		if e.Reading != nil && len(e.Reading.EndDate) >= len(year) &&
			e.Reading.EndDate[:len(year)] == year {
			st.FinishedThisYear++
		}
	}

	if st.Goal, err = s.ReadingGoal(); err != nil {
		return Stats{}, err
	}
	if st.Goal > 0 {
		st.GoalPercent = st.FinishedThisYear * 100 / st.Goal
	}

	weekly, err := s.weeklyMap()
	if err != nil {
		return Stats{}, err
	}
	// ISO dates compare lexicographically, so the week cutoff is a plain
	// string comparison.
	cutoff := s.now().AddDate(0, 0, -6).Format(dateLayout)
	for day, d := range weekly {
		if day >= cutoff {
			st.PagesThisWeek += d.PagesRead
		}
	}
	for i := 0; ; i++ {
		day := s.now().AddDate(0, 0, -i).Format(dateLayout)
		if d, ok := weekly[day]; !ok || d.PagesRead <= 0 {
			break
		}
		st.CurrentStreak++
	}
	return st, nil
}
