package bookdata_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blackwell-systems/readtrack/internal/bookdata"
	"github.com/blackwell-systems/readtrack/internal/cache"
	"github.com/blackwell-systems/readtrack/internal/googlebooks"
	"github.com/blackwell-systems/readtrack/internal/loader"
	"github.com/blackwell-systems/readtrack/internal/openlibrary"
	"github.com/blackwell-systems/readtrack/internal/storage"
)

// countingHandler wraps a handler and counts requests per path.
type countingHandler struct {
	mu   sync.Mutex
	hits map[string]int
	h    http.HandlerFunc
}

func (c *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	if c.hits == nil {
		c.hits = map[string]int{}
	}
	c.hits[r.URL.Path]++
	c.mu.Unlock()
	c.h(w, r)
}

func (c *countingHandler) count(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits[path]
}

func (c *countingHandler) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.hits {
		n += v
	}
	return n
}

func olHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasPrefix(r.URL.Path, "/trending/"):
		fmt.Fprint(w, `{"works": [
			{"key": "/works/OL1W", "title": "Trending One", "author_name": ["A. Author"], "cover_i": 11},
			{"key": "/works/OL2W", "title": "Trending Two", "author_name": ["B. Author"]}
		]}`)
	case r.URL.Path == "/search.json":
		fmt.Fprintf(w, `{"numFound": 1, "docs": [
			{"key": "/works/OL9W", "title": "Hit for %s"}
		]}`, r.URL.Query().Get("q"))
	case r.URL.Path == "/works/OL1W.json":
		fmt.Fprint(w, `{"key": "/works/OL1W", "title": "Sparse Work", "subjects": ["Fiction"]}`)
	case r.URL.Path == "/works/OL1W/editions.json":
		fmt.Fprint(w, `{"entries": [
			{"isbn_13": ["9781234567897"], "publish_date": "1999", "number_of_pages": 224}
		]}`)
	case r.URL.Path == "/works/OL1W/ratings.json":
		fmt.Fprint(w, `{"summary": {"average": 4.2, "count": 17}}`)
	case strings.HasSuffix(r.URL.Path, "/works.json"):
		offset := r.URL.Query().Get("offset")
		if offset == "" {
			fmt.Fprint(w, `{"size": 3, "links": {"next": "/authors/OL23919A/works.json?offset=2"},
				"entries": [{"key": "/works/OL1W", "title": "First"}, {"key": "/works/OL2W", "title": "Second"}]}`)
		} else {
			fmt.Fprint(w, `{"size": 3, "links": {},
				"entries": [{"key": "/works/OL3W", "title": "Third"}]}`)
		}
	default:
		http.NotFound(w, r)
	}
}

func gbHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"items": [{"id": "gbv1", "volumeInfo": {
		"title": "Sparse Work",
		"authors": ["A. Author"],
		"description": "Filled in from the other backend.",
		"publishedDate": "1999-06-01"
	}}]}`)
}

type env struct {
	svc   *bookdata.Service
	ol    *countingHandler
	gb    *countingHandler
	clock *time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	olCount := &countingHandler{h: olHandler}
	gbCount := &countingHandler{h: gbHandler}
	olSrv := httptest.NewServer(olCount)
	gbSrv := httptest.NewServer(gbCount)
	t.Cleanup(olSrv.Close)
	t.Cleanup(gbSrv.Close)

	kv, err := storage.Open(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	clock := &now
	c := cache.NewWithClock(kv, func() time.Time { return *clock })

	return &env{
		svc:   bookdata.New(openlibrary.New(olSrv.URL), googlebooks.New("test-key", gbSrv.URL), c),
		ol:    olCount,
		gb:    gbCount,
		clock: clock,
	}
}

func TestTrending_CachedForAnHour(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.svc.Trending(ctx, "daily", 20)
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(first) != 2 || first[0].ID != "ol:OL1W" {
		t.Fatalf("trending = %v", first)
	}

	if _, err := e.svc.Trending(ctx, "daily", 20); err != nil {
		t.Fatal(err)
	}
	if got := e.ol.count("/trending/daily.json"); got != 1 {
		t.Errorf("upstream hits within TTL = %d, want 1", got)
	}

	// A different timeframe is its own cache entry.
	if _, err := e.svc.Trending(ctx, "weekly", 20); err != nil {
		t.Fatal(err)
	}
	if got := e.ol.count("/trending/weekly.json"); got != 1 {
		t.Errorf("weekly upstream hits = %d, want 1", got)
	}

	*e.clock = e.clock.Add(61 * time.Minute)
	if _, err := e.svc.Trending(ctx, "daily", 20); err != nil {
		t.Fatal(err)
	}
	if got := e.ol.count("/trending/daily.json"); got != 2 {
		t.Errorf("upstream hits after expiry = %d, want 2", got)
	}
}

func TestSearch_CachedPerQueryAndOffset(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := e.svc.Search(ctx, "dune", 20, 0)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if res.Total != 1 || res.Books[0].Title != "Hit for dune" {
			t.Fatalf("search result = %+v", res)
		}
	}
	if got := e.ol.count("/search.json"); got != 1 {
		t.Errorf("upstream hits for repeated query = %d, want 1", got)
	}

	if _, err := e.svc.Search(ctx, "dune", 20, 20); err != nil {
		t.Fatal(err)
	}
	if got := e.ol.count("/search.json"); got != 2 {
		t.Errorf("different offset should miss; upstream hits = %d, want 2", got)
	}
}

func TestSearch_OldestQueriesEvicted(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for i := 0; i < 51; i++ {
		if _, err := e.svc.Search(ctx, fmt.Sprintf("q%02d", i), 20, 0); err != nil {
			t.Fatal(err)
		}
	}
	before := e.ol.count("/search.json")

	// q00 was evicted by q50; q50 itself is still cached.
	if _, err := e.svc.Search(ctx, "q50", 20, 0); err != nil {
		t.Fatal(err)
	}
	if got := e.ol.count("/search.json"); got != before {
		t.Errorf("q50 should still be cached; hits went %d -> %d", before, got)
	}
	if _, err := e.svc.Search(ctx, "q00", 20, 0); err != nil {
		t.Fatal(err)
	}
	if got := e.ol.count("/search.json"); got != before+1 {
		t.Errorf("q00 should have been evicted; hits went %d -> %d", before, got)
	}
}

func TestDetails_EnrichedAndCached(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	d, err := e.svc.Details(ctx, "OL1W")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if d.Title != "Sparse Work" {
		t.Errorf("Title = %q", d.Title)
	}
	if d.PageCount != 224 || d.ISBN != "9781234567897" {
		t.Errorf("edition fill: pages=%d isbn=%q, want 224/9781234567897", d.PageCount, d.ISBN)
	}
	if d.Description != "Filled in from the other backend." {
		t.Errorf("Description = %q, want the enrichment text", d.Description)
	}
	// The edition already supplied a publish date; enrichment must not
	// overwrite it.
	if d.PublishDate != "1999" {
		t.Errorf("PublishDate = %q, want 1999", d.PublishDate)
	}
	if d.Ratings.Average != 4.2 || d.Ratings.Count != 17 {
		t.Errorf("Ratings = %+v", d.Ratings)
	}

	olBefore, gbBefore := e.ol.total(), e.gb.total()
	if _, err := e.svc.Details(ctx, "OL1W"); err != nil {
		t.Fatal(err)
	}
	if e.ol.total() != olBefore || e.gb.total() != gbBefore {
		t.Error("second Details call should be served from cache")
	}
}

func TestAuthorWorksFetcher(t *testing.T) {
	e := newEnv(t)
	fetch := e.svc.AuthorWorksFetcher("OL23919A", "J. R. R. Tolkien")

	b, err := fetch(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if b.Total != 3 || !b.HasNext || b.NextOffset != 2 {
		t.Errorf("batch paging = %+v", b)
	}
	if len(b.Items) != 2 || b.Items[0].Author != "J. R. R. Tolkien" {
		t.Errorf("items = %+v", b.Items)
	}

	b2, err := fetch(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("fetch offset 2: %v", err)
	}
	if b2.HasNext || len(b2.Items) != 1 {
		t.Errorf("final batch = %+v", b2)
	}

	// The adapter output feeds the loader directly.
	l := loader.New(fetch, loader.Options{BatchSize: 2, PageSize: 2, Pause: time.Millisecond, Timeout: time.Second})
	l.Initialize(b)
	if err := l.LoadToLastPage(context.Background()); err != nil {
		t.Fatalf("LoadToLastPage: %v", err)
	}
	if l.Loaded() != 3 || l.HasMore() {
		t.Errorf("loaded=%d hasMore=%v, want 3/false", l.Loaded(), l.HasMore())
	}
}

func TestSearchBy_CachedPerFieldQuery(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.svc.SearchBy(ctx, "author", "Le Guin", 20)
	if err != nil {
		t.Fatalf("SearchBy: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("got %d records", len(first))
	}
	if _, err := e.svc.SearchBy(ctx, "author", "le guin", 20); err != nil {
		t.Fatal(err)
	}
	if got := e.ol.count("/search.json"); got != 1 {
		t.Errorf("upstream hits = %d, want 1 after case-folded repeat", got)
	}

	if _, err := e.svc.SearchBy(ctx, "subject", "le guin", 20); err != nil {
		t.Fatal(err)
	}
	if got := e.ol.count("/search.json"); got != 2 {
		t.Errorf("upstream hits = %d, want 2 after a different field", got)
	}
}

func TestGoogleSearch(t *testing.T) {
	e := newEnv(t)
	hits, err := e.svc.GoogleSearch(context.Background(), "Sparse Work", "A. Author", 1)
	if err != nil {
		t.Fatalf("GoogleSearch: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "gb:gbv1" {
		t.Fatalf("hits = %+v", hits)
	}

	unconfigured := bookdata.New(nil, nil, nil)
	if _, err := unconfigured.GoogleSearch(context.Background(), "x", "", 1); err == nil {
		t.Error("expected error without a configured backend")
	}
}
