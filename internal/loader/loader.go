// Package loader bridges two mismatched page sizes: the upstream catalog
// serves items in fixed-size batches at increasing offsets, while the UI
// paginates the accumulated pool in smaller pages. A Loader owns the
// append-only buffer bookkeeping and drives exactly as many sequential
// fetches as a navigation target requires.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blackwell-systems/readtrack/internal/book"
	"github.com/blackwell-systems/readtrack/internal/pagelist"
)

// ErrTimeout is returned when a single batch fetch exceeds its deadline.
// It is distinct from upstream HTTP failures so callers can word the two
// differently.
var ErrTimeout = errors.New("batch fetch timed out")

// Batch is one upstream fetch's worth of results.
type Batch struct {
	Items []book.Record
	// Total is the authoritative item count across all offsets, reported
	// by the upstream on every response.
	Total   int
	HasNext bool
	// NextOffset is the offset for the following fetch, or 0 when the
	// upstream did not report one.
	NextOffset int
}

// FetchFunc retrieves one batch from the upstream. A batch either fully
// succeeds or fully fails; there is no partial-batch contract.
type FetchFunc func(ctx context.Context, limit, offset int) (Batch, error)

// Options tune a Loader. Zero values fall back to the defaults below.
type Options struct {
	BatchSize int           // upstream limit per fetch (default 50)
	PageSize  int           // UI items per page (default 10)
	Pause     time.Duration // politeness delay between batches (default 300ms)
	Timeout   time.Duration // per-batch deadline (default 10s)
	// OnAppend is invoked with exactly the newly fetched items after each
	// successful batch, never the accumulated set.
	OnAppend func(items []book.Record)
}

const (
	defaultBatchSize = 50
	defaultPageSize  = 10
	defaultPause     = 300 * time.Millisecond
	defaultTimeout   = 10 * time.Second
)

// Loader is the offset-batch state machine for one listing view. It is
// meant to be driven from a single goroutine (the UI event loop); the
// fetching flag only guards against reentrant LoadNext calls from event
// handlers, not true parallelism.
type Loader struct {
	fetch    FetchFunc
	onAppend func([]book.Record)

	batchSize int
	pageSize  int
	pause     time.Duration
	timeout   time.Duration

	total      int
	loaded     int
	nextOffset int
	hasMore    bool
	fetching   bool
}

// New creates a Loader over fetch. Initialize must be called with the
// first batch before any load operation.
func New(fetch FetchFunc, opts Options) *Loader {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.Pause <= 0 {
		opts.Pause = defaultPause
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	onAppend := opts.OnAppend
	if onAppend == nil {
		onAppend = func([]book.Record) {}
	}
	return &Loader{
		fetch:     fetch,
		onAppend:  onAppend,
		batchSize: opts.BatchSize,
		pageSize:  opts.PageSize,
		pause:     opts.Pause,
		timeout:   opts.Timeout,
		hasMore:   true,
	}
}

// Initialize seeds the loader from the view's first fetched batch. Call
// exactly once per view; navigating to a different view means a new
// Loader, never a reset.
func (l *Loader) Initialize(first Batch) {
	l.total = first.Total
	l.loaded = len(first.Items)
	if first.NextOffset > 0 {
		l.nextOffset = first.NextOffset
	} else {
		l.nextOffset = l.batchSize
	}
	l.hasMore = first.HasNext
}

// Total returns the authoritative upstream item count.
func (l *Loader) Total() int { return l.total }

// Loaded returns how many items have been fetched so far.
func (l *Loader) Loaded() int { return l.loaded }

// NextOffset returns the offset the next upstream call will use.
func (l *Loader) NextOffset() int { return l.nextOffset }

// HasMore reports whether the upstream signalled further data.
func (l *Loader) HasMore() bool { return l.hasMore }

// IsFetching reports whether a batch fetch is in flight.
func (l *Loader) IsFetching() bool { return l.fetching }

// LoadedPages returns how many full or partial UI pages the fetched pool
// covers.
func (l *Loader) LoadedPages() int {
	return pagelist.TotalPages(l.loaded, l.pageSize)
}

// TotalPages returns the exact page count once all data were loaded.
func (l *Loader) TotalPages() int {
	return pagelist.TotalPages(l.total, l.pageSize)
}

// NeedsLoadForPage reports whether navigating to the target UI page
// requires fetching more data first.
func (l *Loader) NeedsLoadForPage(target int) bool {
	return target*l.pageSize > l.loaded && l.hasMore
}

// EffectiveTotalPages is the optimistic page count used for nav controls:
// while more data may exist it claims at least one page beyond the current
// one so forward navigation stays enabled; once the upstream is drained it
// is the exact count.
func (l *Loader) EffectiveTotalPages(currentPage int) int {
	if !l.hasMore {
		return l.TotalPages()
	}
	if pages := l.LoadedPages(); pages > currentPage+1 {
		return pages
	}
	return currentPage + 1
}

// Progress describes loading state for display.
type Progress struct {
	Loaded   int
	Total    int
	Percent  int
	HasMore  bool
	Fetching bool
}

// Progress returns a snapshot of the loader's progress.
func (l *Loader) Progress() Progress {
	p := Progress{Loaded: l.loaded, Total: l.total, HasMore: l.hasMore, Fetching: l.fetching}
	if l.total > 0 {
		p.Percent = int(float64(l.loaded)/float64(l.total)*100 + 0.5)
	}
	return p
}

// LoadNext fetches a single batch. When there is nothing left to load or a
// fetch is already in flight it returns nil items and no error — a no-op,
// not a failure.
func (l *Loader) LoadNext(ctx context.Context) ([]book.Record, error) {
	if !l.hasMore || l.fetching {
		return nil, nil
	}

	l.fetching = true
	defer func() { l.fetching = false }()

	items, err := l.loadBatch(ctx)
	if err != nil {
		return nil, err
	}
	l.onAppend(items)
	return items, nil
}

// LoadToPage fetches however many sequential batches are needed for the
// target UI page to be addressable, stopping early if the upstream runs
// out. Each batch is appended (and reported via OnAppend) as it arrives,
// so partial progress survives a mid-sequence failure: a retry resumes
// from the current offset rather than restarting.
func (l *Loader) LoadToPage(ctx context.Context, targetPage int) error {
	if !l.NeedsLoadForPage(targetPage) || l.fetching {
		return nil
	}
	needed := targetPage*l.pageSize - l.loaded
	batches := (needed + l.batchSize - 1) / l.batchSize

	l.fetching = true
	defer func() { l.fetching = false }()

	for i := 0; i < batches; i++ {
		if !l.hasMore {
			break
		}
		if i > 0 {
			if err := l.wait(ctx); err != nil {
				return err
			}
		}
		items, err := l.loadBatch(ctx)
		if err != nil {
			return err
		}
		l.onAppend(items)
	}
	return nil
}

// LoadToLastPage drains the upstream entirely. Used for jumps to the last
// page — the true last page is only knowable once everything is loaded —
// and before applying filters that must see the complete item set.
func (l *Loader) LoadToLastPage(ctx context.Context) error {
	if l.fetching {
		return nil
	}
	l.fetching = true
	defer func() { l.fetching = false }()

	for first := true; l.hasMore; first = false {
		if !first {
			if err := l.wait(ctx); err != nil {
				return err
			}
		}
		items, err := l.loadBatch(ctx)
		if err != nil {
			return err
		}
		l.onAppend(items)
	}
	return nil
}

// loadBatch performs one fetch at the current offset and advances the
// loader state. State is only mutated on success, so a failed batch leaves
// the loader resumable at the same offset.
func (l *Loader) loadBatch(ctx context.Context) ([]book.Record, error) {
	if l.fetch == nil {
		return nil, errors.New("loader: no fetch function configured")
	}

	offset := l.nextOffset
	fetchCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	b, err := l.fetch(fetchCtx, l.batchSize, offset)
	if err != nil {
		// Only report a timeout when our per-batch deadline fired, not
		// when the caller's own context was cancelled.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("offset %d: %w", offset, ErrTimeout)
		}
		return nil, fmt.Errorf("offset %d: %w", offset, err)
	}

	if b.NextOffset > 0 {
		l.nextOffset = b.NextOffset
	} else {
		l.nextOffset = offset + l.batchSize
	}
	l.hasMore = b.HasNext
	l.loaded += len(b.Items)
	return b.Items, nil
}

// wait sleeps the inter-batch pacing delay, honouring cancellation.
func (l *Loader) wait(ctx context.Context) error {
	t := time.NewTimer(l.pause)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
