// Package controller mediates between a displayed, possibly filtered book
// list and the loader/pagination primitives underneath it. The controller
// owns the append-only pool of loaded items and re-derives the filtered
// view whenever shelf state or loaded data changes.
package controller

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/readtrack/internal/book"
	"github.com/blackwell-systems/readtrack/internal/loader"
	"github.com/blackwell-systems/readtrack/internal/pagelist"
	"github.com/blackwell-systems/readtrack/internal/shelf"
)

// Filter selects which of the loaded books the view shows.
type Filter string

const (
	// FilterAll is the identity filter.
	FilterAll Filter = "all"
	// FilterShelved keeps books present on any shelf.
	FilterShelved Filter = "shelved"
	// FilterUnshelved keeps books on no shelf.
	FilterUnshelved Filter = "unshelved"
	// FilterReading keeps books on the currently-reading shelf.
	FilterReading Filter = "reading"
)

// List drives one listing view (author works, search results).
type List struct {
	loader   *loader.Loader
	shelves  *shelf.Store
	pageSize int

	page   int
	filter Filter

	all  []book.Record
	view []book.Record

	// shelfOf snapshots shelf membership for the active filter; it is
	// refreshed whenever the filter is (re)applied, since shelf state can
	// change out from under the loaded result set at any time.
	shelfOf map[string]shelf.ID

	// OnBatch, when set, is called with (loaded, total) after each batch
	// lands. Called from whichever goroutine drives the load.
	OnBatch func(loaded, total int)
}

// NewList creates a controller over an upstream fetch. PageSize in opts
// governs both the loader and the view slicing.
func NewList(fetch loader.FetchFunc, shelves *shelf.Store, opts loader.Options) *List {
	l := &List{
		shelves:  shelves,
		page:     1,
		filter:   FilterAll,
		shelfOf:  map[string]shelf.ID{},
		pageSize: opts.PageSize,
	}
	if l.pageSize <= 0 {
		l.pageSize = 10
	}
	opts.OnAppend = l.onBatchAppended
	l.loader = loader.New(fetch, opts)
	return l
}

// Init seeds the controller and its loader with the view's first batch.
func (l *List) Init(first loader.Batch) error {
	l.loader.Initialize(first)
	l.all = append(l.all[:0], first.Items...)
	if err := l.snapshotShelves(); err != nil {
		return err
	}
	l.rebuildView()
	return nil
}

// Loader exposes the underlying loader for progress display.
func (l *List) Loader() *loader.Loader { return l.loader }

// CurrentPage returns the 1-based page the view is on.
func (l *List) CurrentPage() int { return l.page }

// Filter returns the active filter.
func (l *List) Filter() Filter { return l.filter }

// View returns the filtered projection currently paginated over.
func (l *List) View() []book.Record { return l.view }

// PageItems returns the current page's slice of the view.
func (l *List) PageItems() []book.Record {
	return pagelist.Slice(l.view, l.page, l.pageSize)
}

// EffectiveTotalPages is the page count for nav controls: optimistic while
// the upstream may hold more, exact once it is drained (or a filter forced
// a drain).
func (l *List) EffectiveTotalPages() int {
	viewPages := pagelist.TotalPages(len(l.view), l.pageSize)
	if !l.loader.HasMore() {
		return viewPages
	}
	if viewPages > l.page+1 {
		return viewPages
	}
	return l.page + 1
}

// VisibleRange returns the window of page numbers to render.
func (l *List) VisibleRange() (int, int) {
	return pagelist.VisibleRange(l.page, l.EffectiveTotalPages())
}

// PageRequested navigates to page n, loading forward first when n is not
// yet addressable and the upstream has more. On load failure the current
// page is left unchanged and the error surfaced — the view never shows
// stale or wrong-page content for a navigation that did not happen.
func (l *List) PageRequested(ctx context.Context, n int) ([]book.Record, error) {
	if n < 1 {
		return nil, fmt.Errorf("page %d out of range", n)
	}

	if n > pagelist.TotalPages(len(l.view), l.pageSize) && l.loader.HasMore() {
		if err := l.loader.LoadToPage(ctx, n); err != nil {
			return nil, err
		}
	}

	l.page = n
	return l.PageItems(), nil
}

// LastPageRequested drains the upstream and lands on the true last page.
func (l *List) LastPageRequested(ctx context.Context) ([]book.Record, error) {
	if l.loader.HasMore() {
		if err := l.loader.LoadToLastPage(ctx); err != nil {
			return nil, err
		}
	}
	if tp := pagelist.TotalPages(len(l.view), l.pageSize); tp > 0 {
		l.page = tp
	} else {
		l.page = 1
	}
	return l.PageItems(), nil
}

// SetFilter switches the active filter. Every non-identity filter is only
// meaningful over the complete item set — a membership filter applied to
// half the data understates counts and pages — so the loader is drained
// first. On drain failure the previous filter stays active.
func (l *List) SetFilter(ctx context.Context, f Filter) error {
	if f != FilterAll && l.loader.HasMore() {
		if err := l.loader.LoadToLastPage(ctx); err != nil {
			return err
		}
	}
	if err := l.snapshotShelves(); err != nil {
		return err
	}
	l.filter = f
	l.rebuildView()
	l.page = 1
	return nil
}

// Refresh re-applies the active filter after external shelf mutations,
// clamping the page if the view shrank beneath it.
func (l *List) Refresh() error {
	if err := l.snapshotShelves(); err != nil {
		return err
	}
	l.rebuildView()
	if tp := pagelist.TotalPages(len(l.view), l.pageSize); l.page > tp {
		if tp > 0 {
			l.page = tp
		} else {
			l.page = 1
		}
	}
	return nil
}

// onBatchAppended is the loader's append callback: grow the pool,
// recompute the view, and leave the current page alone so background
// loading never yanks the user back to page 1.
func (l *List) onBatchAppended(items []book.Record) {
	l.all = append(l.all, items...)
	l.rebuildView()
	if l.OnBatch != nil {
		l.OnBatch(len(l.all), l.loader.Total())
	}
}

func (l *List) snapshotShelves() error {
	snap := make(map[string]shelf.ID)
	for _, id := range shelf.All() {
		entries, err := l.shelves.List(id)
		if err != nil {
			return err
		}
		for _, e := range entries {
			snap[e.ID] = id
		}
	}
	l.shelfOf = snap
	return nil
}

func (l *List) rebuildView() {
	switch l.filter {
	case FilterShelved:
		l.view = l.filtered(func(id string) bool {
			_, ok := l.shelfOf[id]
			return ok
		})
	case FilterUnshelved:
		l.view = l.filtered(func(id string) bool {
			_, ok := l.shelfOf[id]
			return !ok
		})
	case FilterReading:
		l.view = l.filtered(func(id string) bool {
			return l.shelfOf[id] == shelf.CurrentlyReading
		})
	default:
		l.view = l.all[:len(l.all):len(l.all)]
	}
}

func (l *List) filtered(keep func(id string) bool) []book.Record {
	out := make([]book.Record, 0, len(l.all))
	for _, r := range l.all {
		if keep(r.ID) {
			out = append(out, r)
		}
	}
	return out
}
