// Package bookdata composes the catalog clients and the TTL cache into
// the data layer the commands and TUI consume. Reads go through the cache
// first; upstream calls fill it on a miss.
package bookdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/blackwell-systems/readtrack/internal/book"
	"github.com/blackwell-systems/readtrack/internal/cache"
	"github.com/blackwell-systems/readtrack/internal/googlebooks"
	"github.com/blackwell-systems/readtrack/internal/loader"
	"github.com/blackwell-systems/readtrack/internal/openlibrary"
)

// maxSearchEntries caps how many distinct search queries the cache keeps.
// Oldest queries are evicted first.
const maxSearchEntries = 50

const searchIndexKey = "search_index"

// Service is the cached facade over the library-records and book-search
// backends.
type Service struct {
	ol *openlibrary.Client
	// gb is nil when no API key is configured; enrichment is skipped then.
	gb    *googlebooks.Client
	cache *cache.Store
}

// New builds a Service. gb may be nil.
func New(ol *openlibrary.Client, gb *googlebooks.Client, c *cache.Store) *Service {
	return &Service{ol: ol, gb: gb, cache: c}
}

// Trending returns trending works for a timeframe (daily, weekly,
// monthly), cached for an hour.
func (s *Service) Trending(ctx context.Context, timeframe string, limit int) ([]book.Record, error) {
	key := "trending_" + timeframe
	var cached []book.Record
	if ok, err := s.cache.Get(key, cache.TrendingTTL, &cached); err == nil && ok {
		return cached, nil
	}

	records, err := s.ol.Trending(ctx, timeframe, limit)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(key, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Search queries the catalog with a week-long cache per query+offset.
func (s *Service) Search(ctx context.Context, query string, limit, offset int) (openlibrary.SearchResult, error) {
	key := fmt.Sprintf("search_%s_%d_%d", strings.ToLower(query), limit, offset)
	var cached openlibrary.SearchResult
	if ok, err := s.cache.Get(key, cache.SearchTTL, &cached); err == nil && ok {
		return cached, nil
	}

	result, err := s.ol.Search(ctx, query, limit, offset)
	if err != nil {
		return openlibrary.SearchResult{}, err
	}
	if err := s.cache.Put(key, result); err != nil {
		return openlibrary.SearchResult{}, err
	}
	s.recordSearchKey(key)
	return result, nil
}

// recordSearchKey tracks search cache keys most-recent-last and evicts
// the oldest past the cap. Index maintenance is best effort; a lost
// index only costs cache hits.
func (s *Service) recordSearchKey(key string) {
	var keys []string
	_, _ = s.cache.Get(searchIndexKey, cache.SearchTTL, &keys)

	kept := keys[:0]
	for _, k := range keys {
		if k != key {
			kept = append(kept, k)
		}
	}
	kept = append(kept, key)

	for len(kept) > maxSearchEntries {
		_ = s.cache.Invalidate(kept[0])
		kept = kept[1:]
	}
	_ = s.cache.Put(searchIndexKey, kept)
}

// SearchBy queries a single catalog field (author, title, subject),
// cached like a free-text search.
func (s *Service) SearchBy(ctx context.Context, field, value string, limit int) ([]book.Record, error) {
	key := fmt.Sprintf("search_%s=%s_%d", field, strings.ToLower(value), limit)
	var cached []book.Record
	if ok, err := s.cache.Get(key, cache.SearchTTL, &cached); err == nil && ok {
		return cached, nil
	}

	records, err := s.ol.SearchByField(ctx, field, value, limit)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(key, records); err != nil {
		return nil, err
	}
	s.recordSearchKey(key)
	return records, nil
}

// AuthorWorksFetcher adapts the author-works endpoint to the loader's
// fetch shape for one author.
func (s *Service) AuthorWorksFetcher(authorID, authorName string) loader.FetchFunc {
	return func(ctx context.Context, limit, offset int) (loader.Batch, error) {
		page, err := s.ol.AuthorWorks(ctx, authorID, authorName, limit, offset)
		if err != nil {
			return loader.Batch{}, err
		}
		return loader.Batch{
			Items:      page.Works,
			Total:      page.Size,
			HasNext:    page.HasNext,
			NextOffset: page.NextOffset,
		}, nil
	}
}

// Author fetches an author's profile.
func (s *Service) Author(ctx context.Context, authorID string) (*openlibrary.Author, error) {
	return s.ol.Author(ctx, authorID)
}

// Detail is a work record joined with its rating summary.
type Detail struct {
	book.Record
	Ratings openlibrary.Ratings `json:"ratings"`
}

// Details fetches the full detail view for a work, filling gaps from the
// first edition and, when configured, the commercial book-search backend.
// Cached for a week.
func (s *Service) Details(ctx context.Context, workID string) (Detail, error) {
	key := "details_" + workID
	var cached Detail
	if ok, err := s.cache.Get(key, cache.DetailsTTL, &cached); err == nil && ok {
		return cached, nil
	}

	rec, err := s.ol.Work(ctx, workID)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{Record: rec}

	if d.PageCount == 0 || d.ISBN == "" || d.PublishDate == "" {
		ed, err := s.ol.FirstEdition(ctx, workID)
		if err == nil && ed != nil {
			if d.PageCount == 0 {
				d.PageCount = ed.PageCount
			}
			if d.ISBN == "" {
				d.ISBN = ed.ISBN
			}
			if d.PublishDate == "" {
				d.PublishDate = ed.PublishDate
			}
		}
	}

	s.enrich(ctx, &d)

	// Ratings are decoration; a missing summary never fails the view.
	if r, err := s.ol.WorkRatings(ctx, workID); err == nil {
		d.Ratings = r
	}

	if err := s.cache.Put(key, d); err != nil {
		return Detail{}, err
	}
	return d, nil
}

// enrich fills still-missing detail fields from the commercial backend.
func (s *Service) enrich(ctx context.Context, d *Detail) {
	if s.gb == nil {
		return
	}
	if d.Description != "" && d.PageCount > 0 && d.PublishDate != "" {
		return
	}
	hits, err := s.gb.SearchByTitleAuthor(ctx, d.Title, d.Author, 1)
	if err != nil || len(hits) == 0 {
		return
	}
	hit := hits[0]
	if d.Description == "" {
		d.Description = hit.Description
	}
	if d.PageCount == 0 {
		d.PageCount = hit.PageCount
	}
	if d.PublishDate == "" {
		d.PublishDate = hit.PublishDate
	}
	if d.Thumbnail == "" {
		d.Thumbnail = hit.Thumbnail
	}
}

// GoogleSearch queries the commercial backend directly, for adding books
// the library-records service does not carry.
func (s *Service) GoogleSearch(ctx context.Context, title, author string, maxResults int) ([]book.Record, error) {
	if s.gb == nil {
		return nil, fmt.Errorf("book-search backend not configured (set an API key)")
	}
	return s.gb.SearchByTitleAuthor(ctx, title, author, maxResults)
}
