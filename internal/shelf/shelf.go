// Package shelf implements the three persistent reading shelves. The one
// invariant everything else leans on: a book ID lives on at most one shelf
// at any time, checked across all shelves on every insert.
package shelf

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/readtrack/internal/book"
	"github.com/blackwell-systems/readtrack/internal/storage"
)

// ID names one of the three shelves. The values are the persisted storage
// keys and must stay stable across releases — shelf collections written by
// old versions are read back by new ones.
type ID string

const (
	WantToRead       ID = "shelf_want_to_read"
	CurrentlyReading ID = "shelf_currently_reading"
	Finished         ID = "shelf_finished"
)

// All returns the three shelf IDs in display order.
func All() []ID {
	return []ID{WantToRead, CurrentlyReading, Finished}
}

// Label returns the human-readable shelf name.
func (id ID) Label() string {
	switch id {
	case WantToRead:
		return "want to read"
	case CurrentlyReading:
		return "currently reading"
	case Finished:
		return "finished"
	}
	return string(id)
}

// Parse resolves a user-typed shelf name ("want", "reading", "finished").
func Parse(s string) (ID, error) {
	switch s {
	case "want", "want-to-read", "wanttoread":
		return WantToRead, nil
	case "reading", "currently-reading", "current":
		return CurrentlyReading, nil
	case "finished", "read", "done":
		return Finished, nil
	}
	return "", fmt.Errorf("unknown shelf %q (want, reading, or finished)", s)
}

// Entry is a shelved book plus shelf bookkeeping timestamps.
type Entry struct {
	book.Record
	AddedDate   time.Time  `json:"addedDate"`
	LastUpdated time.Time  `json:"lastUpdated"`
	MovedDate   *time.Time `json:"movedDate,omitempty"`
}

// Store provides shelf CRUD over the local key-value store. Every mutation
// persists synchronously. Not safe for concurrent use; all readtrack
// access is single-goroutine.
type Store struct {
	kv  *storage.Store
	now func() time.Time
}

// NewStore creates a Store over kv.
func NewStore(kv *storage.Store) *Store {
	return &Store{kv: kv, now: time.Now}
}

// NewStoreWithClock creates a Store with an injected clock, for tests.
func NewStoreWithClock(kv *storage.Store, now func() time.Time) *Store {
	return &Store{kv: kv, now: now}
}

// List returns a shelf's entries in insertion order.
func (s *Store) List(id ID) ([]Entry, error) {
	var entries []Entry
	if _, err := s.kv.Get(string(id), &entries); err != nil {
		return nil, fmt.Errorf("reading shelf %s: %w", id.Label(), err)
	}
	return entries, nil
}

func (s *Store) save(id ID, entries []Entry) error {
	if err := s.kv.Set(string(id), entries); err != nil {
		return fmt.Errorf("writing shelf %s: %w", id.Label(), err)
	}
	return nil
}

// FindShelfOf returns which shelf holds bookID, or false if none does.
func (s *Store) FindShelfOf(bookID string) (ID, bool, error) {
	for _, id := range All() {
		entries, err := s.List(id)
		if err != nil {
			return "", false, err
		}
		for _, e := range entries {
			if e.ID == bookID {
				return id, true, nil
			}
		}
	}
	return "", false, nil
}

// IsShelved reports whether any shelf holds bookID. Shelves are small,
// user-scale collections; the scan is fine.
func (s *Store) IsShelved(bookID string) (bool, error) {
	_, found, err := s.FindShelfOf(bookID)
	return found, err
}

// Add appends rec to the shelf, stamping AddedDate with the current
// time. It returns false without mutating anything if the book is
// already on any shelf.
func (s *Store) Add(id ID, rec book.Record) (bool, error) {
	shelved, err := s.IsShelved(rec.ID)
	if err != nil {
		return false, err
	}
	if shelved {
		return false, nil
	}

	entries, err := s.List(id)
	if err != nil {
		return false, err
	}
	entries = append(entries, Entry{
		Record:      rec,
		AddedDate:   s.now(),
		LastUpdated: s.now(),
	})
	return true, s.save(id, entries)
}

// Remove deletes bookID from the shelf, along with its progress and notes
// side-record. Returns false if the shelf does not hold the book.
func (s *Store) Remove(id ID, bookID string) (bool, error) {
	entries, err := s.List(id)
	if err != nil {
		return false, err
	}
	var removed *Entry
	kept := entries[:0:0]
	for i, e := range entries {
		if e.ID != bookID {
			kept = append(kept, e)
		} else {
			removed = &entries[i]
		}
	}
	if removed == nil {
		return false, nil
	}
	if err := s.save(id, kept); err != nil {
		return false, err
	}
	if err := s.deleteProgress(bookID); err != nil {
		return true, err
	}
	// A finished book credited pages to the day it was finished; deleting
	// it takes them back.
	if id == Finished && removed.PageCount > 0 && removed.Reading != nil && removed.Reading.EndDate != "" {
		return true, s.uncountFinishDay(bookID, removed.Reading.EndDate, removed.PageCount)
	}
	return true, nil
}

// RemoveEverywhere deletes bookID from whichever shelves hold it and
// returns how many removals happened. With the invariant intact that is
// 0 or 1, but stray duplicates from older data are cleaned up too.
func (s *Store) RemoveEverywhere(bookID string) (int, error) {
	removed := 0
	for _, id := range All() {
		ok, err := s.Remove(id, bookID)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// Counts returns the entry count per shelf.
func (s *Store) Counts() (map[ID]int, error) {
	counts := make(map[ID]int, 3)
	for _, id := range All() {
		entries, err := s.List(id)
		if err != nil {
			return nil, err
		}
		counts[id] = len(entries)
	}
	return counts, nil
}
