package shelf_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/blackwell-systems/readtrack/internal/book"
	"github.com/blackwell-systems/readtrack/internal/shelf"
	"github.com/blackwell-systems/readtrack/internal/storage"
)

// newClockStore returns a store whose clock reads through now, so tests
// can move time forward.
func newClockStore(t *testing.T, now *time.Time) *shelf.Store {
	t.Helper()
	kv, err := storage.Open(filepath.Join(t.TempDir(), "library.json"))
	if err != nil {
		t.Fatal(err)
	}
	return shelf.NewStoreWithClock(kv, func() time.Time { return *now })
}

func finish(t *testing.T, s *shelf.Store, id, start, end string) {
	t.Helper()
	if ok, err := s.Add(shelf.WantToRead, rec(id)); err != nil || !ok {
		t.Fatalf("Add(%s) = %v, %v", id, ok, err)
	}
	ok, err := s.MoveToFinished(shelf.WantToRead, id, book.ReadingDetails{StartDate: start, EndDate: end})
	if err != nil || !ok {
		t.Fatalf("MoveToFinished(%s) = %v, %v", id, ok, err)
	}
}

func TestTimeline_NewestFirstWithFilters(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s := newClockStore(t, &now)

	finish(t, s, "ol:A", "2025-12-01", "2025-12-20")
	finish(t, s, "ol:B", "2026-03-01", "2026-03-05")
	finish(t, s, "ol:C", "2026-03-10", "2026-03-12")
	// Still being read; no end date, so it stays off the timeline.
	_, _ = s.Add(shelf.WantToRead, rec("ol:D"))
	_, _ = s.MoveToReading(shelf.WantToRead, "ol:D", book.ReadingDetails{})

	all, err := s.Timeline(shelf.TimelineFilter{})
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if len(all) != 3 || all[0].ID != "ol:C" || all[1].ID != "ol:B" || all[2].ID != "ol:A" {
		t.Fatalf("unfiltered timeline order = %v", ids(all))
	}

	year, _ := s.Timeline(shelf.TimelineFilter{Year: 2026})
	if len(year) != 2 || year[0].ID != "ol:C" {
		t.Errorf("2026 timeline = %v", ids(year))
	}
	march, _ := s.Timeline(shelf.TimelineFilter{Year: 2026, Month: time.March})
	if len(march) != 2 {
		t.Errorf("march 2026 timeline = %v", ids(march))
	}
	december, _ := s.Timeline(shelf.TimelineFilter{Month: time.December})
	if len(december) != 1 || december[0].ID != "ol:A" {
		t.Errorf("december timeline = %v", ids(december))
	}
}

func ids(entries []shelf.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestSummarizeTimeline(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s := newClockStore(t, &now)

	finish(t, s, "ol:A", "2025-12-01", "2025-12-20") // 19 days
	finish(t, s, "ol:B", "2026-03-01", "2026-03-05") // 4 days
	finish(t, s, "ol:C", "2026-03-12", "2026-03-12") // same day counts as 1

	entries, err := s.Timeline(shelf.TimelineFilter{})
	if err != nil {
		t.Fatal(err)
	}
	st := shelf.SummarizeTimeline(entries)
	if st.Books != 3 {
		t.Errorf("Books = %d, want 3", st.Books)
	}
	if st.Pages != 900 {
		t.Errorf("Pages = %d, want 900", st.Pages)
	}
	if st.AvgDays != 8 { // round(24/3)
		t.Errorf("AvgDays = %d, want 8", st.AvgDays)
	}
}

func TestUpdateProgress_AccumulatesDailyPages(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	s := newClockStore(t, &now)
	_, _ = s.Add(shelf.WantToRead, rec("ol:A"))
	_, _ = s.MoveToReading(shelf.WantToRead, "ol:A", book.ReadingDetails{})

	for _, page := range []int{50, 80, 60} {
		if err := s.UpdateProgress("ol:A", page); err != nil {
			t.Fatalf("UpdateProgress(%d): %v", page, err)
		}
	}
	// 50, +30, then corrected back by 20.
	st, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.PagesThisWeek != 60 {
		t.Errorf("PagesThisWeek = %d, want 60", st.PagesThisWeek)
	}
	if st.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", st.CurrentStreak)
	}

	now = now.AddDate(0, 0, 1)
	if err := s.UpdateProgress("ol:A", 90); err != nil {
		t.Fatal(err)
	}
	st, _ = s.Stats()
	if st.PagesThisWeek != 90 {
		t.Errorf("PagesThisWeek after second day = %d, want 90", st.PagesThisWeek)
	}
	if st.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", st.CurrentStreak)
	}
}

// A correction below the day's total clamps the bucket at zero rather
// than going negative, and the streak no longer counts the day.
func TestUpdateProgress_CorrectionClampsAtZero(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	s := newClockStore(t, &now)
	_, _ = s.Add(shelf.WantToRead, rec("ol:A"))
	_, _ = s.MoveToReading(shelf.WantToRead, "ol:A", book.ReadingDetails{CurrentPage: 100})

	if err := s.UpdateProgress("ol:A", 110); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateProgress("ol:A", 40); err != nil {
		t.Fatal(err)
	}
	st, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.PagesThisWeek != 0 {
		t.Errorf("PagesThisWeek = %d, want 0", st.PagesThisWeek)
	}
	if st.CurrentStreak != 0 {
		t.Errorf("CurrentStreak = %d, want 0", st.CurrentStreak)
	}
}

func TestMoveToFinished_CreditsRemainingPages(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	s := newClockStore(t, &now)
	_, _ = s.Add(shelf.WantToRead, rec("ol:A"))
	_, _ = s.MoveToReading(shelf.WantToRead, "ol:A", book.ReadingDetails{})

	if err := s.UpdateProgress("ol:A", 120); err != nil {
		t.Fatal(err)
	}
	if ok, err := s.MoveToFinished(shelf.CurrentlyReading, "ol:A", book.ReadingDetails{}); err != nil || !ok {
		t.Fatalf("MoveToFinished = %v, %v", ok, err)
	}

	// 120 recorded while reading plus the 180 left on finish day.
	st, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.PagesThisWeek != 300 {
		t.Errorf("PagesThisWeek = %d, want 300", st.PagesThisWeek)
	}
}

func TestRemove_FinishedBookUncountsFinishDay(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	s := newClockStore(t, &now)
	finish(t, s, "ol:A", "2026-08-01", "2026-08-31")

	st, _ := s.Stats()
	if st.PagesThisWeek != 300 {
		t.Fatalf("PagesThisWeek before removal = %d, want 300", st.PagesThisWeek)
	}

	if ok, err := s.Remove(shelf.Finished, "ol:A"); err != nil || !ok {
		t.Fatalf("Remove = %v, %v", ok, err)
	}
	st, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.PagesThisWeek != 0 {
		t.Errorf("PagesThisWeek after removal = %d, want 0", st.PagesThisWeek)
	}
	if st.CurrentStreak != 0 {
		t.Errorf("CurrentStreak after removal = %d, want 0", st.CurrentStreak)
	}
}
