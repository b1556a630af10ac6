package loader_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/blackwell-systems/readtrack/internal/book"
	"github.com/blackwell-systems/readtrack/internal/loader"
)

// makeBooks returns n records with sequential IDs starting at offset.
func makeBooks(offset, n int) []book.Record {
	out := make([]book.Record, n)
	for i := range out {
		out[i] = book.Record{
			ID:     fmt.Sprintf("ol:W%04d", offset+i),
			Source: book.SourceOpenLibrary,
			Title:  fmt.Sprintf("Work %d", offset+i),
		}
	}
	return out
}

// fakeUpstream serves a fixed-size corpus in batches, recording every
// offset it was asked for.
type fakeUpstream struct {
	total   int
	offsets []int
	failAt  map[int]error // offset → error to return once
}

func (f *fakeUpstream) fetch(ctx context.Context, limit, offset int) (loader.Batch, error) {
	f.offsets = append(f.offsets, offset)
	if err, ok := f.failAt[offset]; ok {
		delete(f.failAt, offset)
		return loader.Batch{}, err
	}
	n := f.total - offset
	if n > limit {
		n = limit
	}
	if n < 0 {
		n = 0
	}
	return loader.Batch{
		Items:      makeBooks(offset, n),
		Total:      f.total,
		HasNext:    offset+n < f.total,
		NextOffset: offset + n,
	}, nil
}

func (f *fakeUpstream) firstBatch(limit int) loader.Batch {
	b, _ := f.fetch(context.Background(), limit, 0)
	f.offsets = f.offsets[:0] // the seed fetch is not a loader fetch
	return b
}

func fastOpts(appended *[]book.Record) loader.Options {
	return loader.Options{
		BatchSize: 50,
		PageSize:  10,
		Pause:     time.Millisecond,
		OnAppend: func(items []book.Record) {
			if appended != nil {
				*appended = append(*appended, items...)
			}
		},
	}
}

// Scenario A: everything fits in the first batch, so navigating to page 3
// needs zero fetches and page 3 holds the last 3 items.
func TestLoadToPage_AlreadySatisfied(t *testing.T) {
	up := &fakeUpstream{total: 23}
	var appended []book.Record
	l := loader.New(up.fetch, fastOpts(&appended))
	l.Initialize(up.firstBatch(50))

	if l.HasMore() {
		t.Error("HasMore true with the full corpus loaded")
	}
	if err := l.LoadToPage(context.Background(), 3); err != nil {
		t.Fatalf("LoadToPage: %v", err)
	}
	if len(up.offsets) != 0 {
		t.Errorf("LoadToPage fetched at offsets %v, want none", up.offsets)
	}
	if len(appended) != 0 {
		t.Errorf("OnAppend fired with %d items, want none", len(appended))
	}
	if l.Loaded() != 23 {
		t.Errorf("Loaded = %d, want 23", l.Loaded())
	}
}

// Scenario B: 120 total, 50 loaded, page 6 needs 60 → exactly one more
// batch at offset 50.
func TestLoadToPage_OneBatchGap(t *testing.T) {
	up := &fakeUpstream{total: 120}
	var appended []book.Record
	l := loader.New(up.fetch, fastOpts(&appended))
	l.Initialize(up.firstBatch(50))

	if err := l.LoadToPage(context.Background(), 6); err != nil {
		t.Fatalf("LoadToPage: %v", err)
	}
	if len(up.offsets) != 1 || up.offsets[0] != 50 {
		t.Fatalf("fetched offsets %v, want [50]", up.offsets)
	}
	if l.Loaded() != 100 {
		t.Errorf("Loaded = %d, want 100", l.Loaded())
	}
	if !l.HasMore() {
		t.Error("HasMore = false with 20 items still upstream")
	}
	if len(appended) != 50 {
		t.Errorf("OnAppend delivered %d items, want exactly the 50 new ones", len(appended))
	}
}

// Scenario E: a mid-sequence failure retains the earlier batch and the
// retry resumes from the surviving offset.
func TestLoadToPage_PartialFailureResumes(t *testing.T) {
	boom := errors.New("upstream 503")
	up := &fakeUpstream{total: 200, failAt: map[int]error{100: boom}}
	var appended []book.Record
	l := loader.New(up.fetch, fastOpts(&appended))
	l.Initialize(up.firstBatch(50))

	// Needs 100 more items → two batches; the second (offset 100) fails.
	err := l.LoadToPage(context.Background(), 15)
	if !errors.Is(err, boom) {
		t.Fatalf("LoadToPage error = %v, want wrapped upstream error", err)
	}
	if l.Loaded() != 100 {
		t.Errorf("Loaded after failure = %d, want 100 (first batch retained)", l.Loaded())
	}
	if len(appended) != 50 {
		t.Errorf("appended %d items before failure, want 50", len(appended))
	}
	if l.NextOffset() != 100 {
		t.Errorf("NextOffset = %d, want 100 (failed batch not consumed)", l.NextOffset())
	}

	// Retry continues from offset 100, not from scratch.
	up.offsets = up.offsets[:0]
	if err := l.LoadToPage(context.Background(), 15); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if up.offsets[0] != 100 {
		t.Errorf("retry started at offset %d, want 100", up.offsets[0])
	}
	if l.Loaded() != 150 {
		t.Errorf("Loaded after retry = %d, want 150", l.Loaded())
	}
}

func TestLoadNext_NoopWhenDrained(t *testing.T) {
	up := &fakeUpstream{total: 23}
	l := loader.New(up.fetch, fastOpts(nil))
	l.Initialize(up.firstBatch(50))

	before := l.Loaded()
	items, err := l.LoadNext(context.Background())
	if err != nil {
		t.Fatalf("LoadNext: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("LoadNext returned %d items after drain, want 0", len(items))
	}
	if l.Loaded() != before || len(up.offsets) != 0 {
		t.Error("LoadNext mutated state or fetched after drain")
	}
}

func TestLoadToLastPage_DrainsEverything(t *testing.T) {
	up := &fakeUpstream{total: 175}
	var appended []book.Record
	l := loader.New(up.fetch, fastOpts(&appended))
	l.Initialize(up.firstBatch(50))

	if err := l.LoadToLastPage(context.Background()); err != nil {
		t.Fatalf("LoadToLastPage: %v", err)
	}
	if l.HasMore() {
		t.Error("HasMore true after draining")
	}
	if l.Loaded() != 175 {
		t.Errorf("Loaded = %d, want 175", l.Loaded())
	}
	// Batches are strictly sequential: 50, 100, 150.
	want := []int{50, 100, 150}
	if len(up.offsets) != len(want) {
		t.Fatalf("offsets %v, want %v", up.offsets, want)
	}
	for i := range want {
		if up.offsets[i] != want[i] {
			t.Errorf("offsets[%d] = %d, want %d", i, up.offsets[i], want[i])
		}
	}
	// Loader bookkeeping matches what the callback saw.
	if 50+len(appended) != l.Loaded() {
		t.Errorf("callback saw %d items, loader counted %d", 50+len(appended), l.Loaded())
	}
	if l.Loaded() > l.Total() {
		t.Errorf("Loaded %d exceeds Total %d", l.Loaded(), l.Total())
	}
}

func TestLoadBatch_TimeoutIsDistinguishable(t *testing.T) {
	slow := func(ctx context.Context, limit, offset int) (loader.Batch, error) {
		<-ctx.Done()
		return loader.Batch{}, ctx.Err()
	}
	l := loader.New(slow, loader.Options{Timeout: 10 * time.Millisecond, Pause: time.Millisecond})
	l.Initialize(loader.Batch{Total: 100, HasNext: true, NextOffset: 50,
		Items: makeBooks(0, 50)})

	_, err := l.LoadNext(context.Background())
	if !errors.Is(err, loader.ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
}

func TestLoadToLastPage_CallerCancelIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked := func(ctx context.Context, limit, offset int) (loader.Batch, error) {
		<-ctx.Done()
		return loader.Batch{}, ctx.Err()
	}
	l := loader.New(blocked, loader.Options{Pause: time.Millisecond})
	l.Initialize(loader.Batch{Total: 100, HasNext: true, NextOffset: 50,
		Items: makeBooks(0, 50)})

	err := l.LoadToLastPage(ctx)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if errors.Is(err, loader.ErrTimeout) {
		t.Errorf("caller cancellation misreported as timeout: %v", err)
	}
}

func TestEffectiveTotalPages(t *testing.T) {
	up := &fakeUpstream{total: 120}
	l := loader.New(up.fetch, fastOpts(nil))
	l.Initialize(up.firstBatch(50)) // 50 loaded → 5 UI pages, more upstream

	if got := l.EffectiveTotalPages(1); got != 5 {
		t.Errorf("EffectiveTotalPages(1) = %d, want 5 (loaded pages)", got)
	}
	// Standing on the last loaded page still advertises one more.
	if got := l.EffectiveTotalPages(5); got != 6 {
		t.Errorf("EffectiveTotalPages(5) = %d, want 6 (optimistic)", got)
	}

	if err := l.LoadToLastPage(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := l.EffectiveTotalPages(5); got != 12 {
		t.Errorf("EffectiveTotalPages after drain = %d, want exact 12", got)
	}
}

func TestNeedsLoadForPage(t *testing.T) {
	up := &fakeUpstream{total: 120}
	l := loader.New(up.fetch, fastOpts(nil))
	l.Initialize(up.firstBatch(50))

	if l.NeedsLoadForPage(5) {
		t.Error("page 5 is addressable with 50 items loaded")
	}
	if !l.NeedsLoadForPage(6) {
		t.Error("page 6 needs 60 items, only 50 loaded")
	}
}

func TestProgress(t *testing.T) {
	up := &fakeUpstream{total: 120}
	l := loader.New(up.fetch, fastOpts(nil))
	l.Initialize(up.firstBatch(50))

	p := l.Progress()
	if p.Loaded != 50 || p.Total != 120 || !p.HasMore || p.Fetching {
		t.Errorf("Progress = %+v", p)
	}
	if p.Percent != 42 {
		t.Errorf("Percent = %d, want 42", p.Percent)
	}
}

// Upstream misreporting NextOffset as 0 falls back to offset+batchSize.
func TestLoadBatch_MissingNextOffset(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, limit, offset int) (loader.Batch, error) {
		calls++
		return loader.Batch{
			Items:   makeBooks(offset, limit),
			Total:   200,
			HasNext: calls < 2,
		}, nil
	}
	l := loader.New(fetch, loader.Options{BatchSize: 50, PageSize: 10, Pause: time.Millisecond})
	l.Initialize(loader.Batch{Items: makeBooks(0, 50), Total: 200, HasNext: true})

	if l.NextOffset() != 50 {
		t.Fatalf("NextOffset after init = %d, want 50", l.NextOffset())
	}
	if _, err := l.LoadNext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if l.NextOffset() != 100 {
		t.Errorf("NextOffset = %d, want 100", l.NextOffset())
	}
}
