package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"showcase/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls []models.QueryParams
	fn    func(call int, params models.QueryParams) (models.Page, error)
}

func (f *fakeFetcher) ListItems(_ context.Context, params models.QueryParams) (models.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	call := len(f.calls)
	f.mu.Unlock()

	return f.fn(call, params)
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func catalogue(n int) []models.GalleryItem {
	items := make([]models.GalleryItem, n)
	for i := range items {
		items[i] = models.GalleryItem{ID: fmt.Sprintf("item-%02d", i+1), Title: fmt.Sprintf("Item %d", i+1)}
	}
	return items
}

func paginate(items []models.GalleryItem, page, limit int) models.Page {
	start := (page - 1) * limit
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	totalPages := (len(items) + limit - 1) / limit

	data := make([]models.GalleryItem, end-start)
	copy(data, items[start:end])

	return models.Page{
		Data: data,
		Pagination: models.PageInfo{
			Page:       page,
			Limit:      limit,
			Total:      len(items),
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}
}

func ids(items []models.GalleryItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestAccumulator_LoadsAllPages(t *testing.T) {
	all := catalogue(30)
	fetcher := &fakeFetcher{fn: func(_ int, p models.QueryParams) (models.Page, error) {
		return paginate(all, p.Page, p.Limit), nil
	}}
	acc := NewAccumulator(fetcher, AccumulatorOptions{})
	ctx := context.Background()

	require.NoError(t, acc.SetParams(ctx, models.QueryParams{}))
	snap := acc.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	assert.Len(t, snap.Items, 12)
	assert.True(t, snap.HasMore)
	assert.Equal(t, 30, snap.Total)

	require.NoError(t, acc.LoadMore(ctx))
	require.NoError(t, acc.LoadMore(ctx))
	snap = acc.Snapshot()
	assert.Equal(t, ids(all), ids(snap.Items))
	assert.Equal(t, 3, snap.Page)
	assert.False(t, snap.HasMore)
	assert.True(t, acc.Done())

	calls := fetcher.Calls()
	require.NoError(t, acc.LoadMore(ctx))
	assert.Equal(t, calls, fetcher.Calls(), "LoadMore past the last page must not fetch")
}

func TestAccumulator_DeduplicatesOverlappingPages(t *testing.T) {
	all := catalogue(20)
	fetcher := &fakeFetcher{fn: func(_ int, p models.QueryParams) (models.Page, error) {
		page := paginate(all, p.Page, p.Limit)
		if p.Page == 2 {
			// A new item was inserted upstream, shifting the window by two.
			page.Data = append([]models.GalleryItem{all[10], all[11]}, page.Data...)
		}
		return page, nil
	}}
	acc := NewAccumulator(fetcher, AccumulatorOptions{Limit: 12})
	ctx := context.Background()

	require.NoError(t, acc.SetParams(ctx, models.QueryParams{}))
	require.NoError(t, acc.LoadMore(ctx))

	snap := acc.Snapshot()
	assert.Equal(t, ids(all), ids(snap.Items))

	seen := make(map[string]bool)
	for _, item := range snap.Items {
		assert.False(t, seen[item.ID], "duplicate %s", item.ID)
		seen[item.ID] = true
	}
}

func TestAccumulator_SameParamsIsNoop(t *testing.T) {
	fetcher := &fakeFetcher{fn: func(_ int, p models.QueryParams) (models.Page, error) {
		return paginate(catalogue(5), p.Page, p.Limit), nil
	}}
	acc := NewAccumulator(fetcher, AccumulatorOptions{})
	ctx := context.Background()

	params := models.QueryParams{Category: "Nature", SortBy: models.SortLikes}
	require.NoError(t, acc.SetParams(ctx, params))
	require.NoError(t, acc.SetParams(ctx, params))
	assert.Equal(t, 1, fetcher.Calls())

	params.Page = 7
	require.NoError(t, acc.SetParams(ctx, params))
	assert.Equal(t, 1, fetcher.Calls(), "page is not part of the parameters")
}

func TestAccumulator_ParamsChangeResets(t *testing.T) {
	fetcher := &fakeFetcher{fn: func(_ int, p models.QueryParams) (models.Page, error) {
		if p.Category == "Art" {
			return paginate(catalogue(3), p.Page, p.Limit), nil
		}
		return paginate(catalogue(30), p.Page, p.Limit), nil
	}}
	acc := NewAccumulator(fetcher, AccumulatorOptions{})
	ctx := context.Background()

	require.NoError(t, acc.SetParams(ctx, models.QueryParams{}))
	require.NoError(t, acc.LoadMore(ctx))
	require.Len(t, acc.Snapshot().Items, 24)

	require.NoError(t, acc.SetParams(ctx, models.QueryParams{Category: "Art"}))
	snap := acc.Snapshot()
	assert.Len(t, snap.Items, 3)
	assert.Equal(t, 1, snap.Page)
	assert.False(t, snap.HasMore)
	assert.Equal(t, models.QueryParams{Category: "Art"}.WithDefaults().Fingerprint(), snap.Fingerprint)
}

func TestAccumulator_DiscardsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	fetcher := &fakeFetcher{fn: func(call int, p models.QueryParams) (models.Page, error) {
		if p.Query == "slow" {
			close(entered)
			<-release
			return paginate(catalogue(30), p.Page, p.Limit), nil
		}
		return paginate(catalogue(2), p.Page, p.Limit), nil
	}}
	acc := NewAccumulator(fetcher, AccumulatorOptions{})
	ctx := context.Background()

	slowErr := make(chan error, 1)
	go func() {
		slowErr <- acc.SetParams(ctx, models.QueryParams{Query: "slow"})
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("slow fetch never started")
	}

	require.NoError(t, acc.SetParams(ctx, models.QueryParams{Query: "fast"}))
	close(release)

	select {
	case err := <-slowErr:
		assert.ErrorIs(t, err, ErrStale)
	case <-time.After(2 * time.Second):
		t.Fatal("slow fetch never returned")
	}

	snap := acc.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 2, snap.Total)
}

func TestAccumulator_ErrorKeepsItemsAndRetries(t *testing.T) {
	all := catalogue(30)
	boom := errors.New("network down")
	fail := true
	fetcher := &fakeFetcher{fn: func(_ int, p models.QueryParams) (models.Page, error) {
		if p.Page == 2 && fail {
			return models.Page{}, boom
		}
		return paginate(all, p.Page, p.Limit), nil
	}}
	acc := NewAccumulator(fetcher, AccumulatorOptions{})
	ctx := context.Background()

	require.NoError(t, acc.SetParams(ctx, models.QueryParams{}))

	err := acc.LoadMore(ctx)
	require.ErrorIs(t, err, boom)

	snap := acc.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.ErrorIs(t, snap.Err, boom)
	assert.Len(t, snap.Items, 12)
	assert.Equal(t, 1, snap.Page)

	// LoadMore is only allowed from the loaded state.
	calls := fetcher.Calls()
	require.NoError(t, acc.LoadMore(ctx))
	assert.Equal(t, calls, fetcher.Calls())

	fail = false
	require.NoError(t, acc.Retry(ctx))
	snap = acc.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	assert.NoError(t, snap.Err)
	assert.Len(t, snap.Items, 24)
	assert.Equal(t, 2, snap.Page)
}

func TestAccumulator_InitialErrorRetriesFirstPage(t *testing.T) {
	boom := errors.New("503")
	fetcher := &fakeFetcher{fn: func(call int, p models.QueryParams) (models.Page, error) {
		if call == 1 {
			return models.Page{}, boom
		}
		assert.Equal(t, 1, p.Page)
		return paginate(catalogue(4), p.Page, p.Limit), nil
	}}
	acc := NewAccumulator(fetcher, AccumulatorOptions{})
	ctx := context.Background()

	require.ErrorIs(t, acc.SetParams(ctx, models.QueryParams{}), boom)
	assert.Empty(t, acc.Snapshot().Items)

	require.NoError(t, acc.Retry(ctx))
	assert.Len(t, acc.Snapshot().Items, 4)
	assert.True(t, acc.Done())
}

func TestAccumulator_CacheAndRefresh(t *testing.T) {
	fetcher := &fakeFetcher{fn: func(call int, p models.QueryParams) (models.Page, error) {
		return paginate(catalogue(5+call), p.Page, p.Limit), nil
	}}
	acc := NewAccumulator(fetcher, AccumulatorOptions{DedupWindow: time.Minute})
	ctx := context.Background()

	require.NoError(t, acc.SetParams(ctx, models.QueryParams{Tags: []string{"nature"}}))
	require.NoError(t, acc.SetParams(ctx, models.QueryParams{Tags: []string{"urban"}}))
	require.NoError(t, acc.SetParams(ctx, models.QueryParams{Tags: []string{"nature"}}))
	assert.Equal(t, 2, fetcher.Calls(), "repeated page inside the window is served from cache")
	assert.Len(t, acc.Snapshot().Items, 6)

	require.NoError(t, acc.Refresh(ctx))
	assert.Equal(t, 3, fetcher.Calls())
	assert.Len(t, acc.Snapshot().Items, 8)
}

func TestAccumulator_SnapshotIsCopy(t *testing.T) {
	fetcher := &fakeFetcher{fn: func(_ int, p models.QueryParams) (models.Page, error) {
		page := paginate(catalogue(2), p.Page, p.Limit)
		page.Data[0].Tags = []string{"a"}
		return page, nil
	}}
	acc := NewAccumulator(fetcher, AccumulatorOptions{})
	require.NoError(t, acc.SetParams(context.Background(), models.QueryParams{}))

	snap := acc.Snapshot()
	snap.Items[0].Tags[0] = "mutated"
	snap.Items[1].ID = "mutated"

	again := acc.Snapshot()
	assert.Equal(t, "a", again.Items[0].Tags[0])
	assert.Equal(t, "item-02", again.Items[1].ID)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "loading_more", StateLoadingMore.String())
	assert.Equal(t, "state(42)", State(42).String())
}

func TestAccumulator_RefreshRebuildsEveryPage(t *testing.T) {
	var mu sync.Mutex
	all := catalogue(20)
	fetcher := &fakeFetcher{fn: func(_ int, p models.QueryParams) (models.Page, error) {
		mu.Lock()
		defer mu.Unlock()
		return paginate(all, p.Page, p.Limit), nil
	}}
	acc := NewAccumulator(fetcher, AccumulatorOptions{Limit: 10, DedupWindow: time.Minute})
	ctx := context.Background()

	require.NoError(t, acc.SetParams(ctx, models.QueryParams{}))
	require.NoError(t, acc.LoadMore(ctx))
	require.True(t, acc.Done())

	mu.Lock()
	all = append([]models.GalleryItem{{ID: "new", Title: "New"}}, all...)
	mu.Unlock()

	require.NoError(t, acc.Refresh(ctx))
	for !acc.Done() {
		require.NoError(t, acc.LoadMore(ctx))
	}

	snap := acc.Snapshot()
	mu.Lock()
	assert.Equal(t, ids(all), ids(snap.Items))
	mu.Unlock()
	assert.Equal(t, 21, snap.Total)
	assert.Contains(t, ids(snap.Items), "item-10", "item pushed onto page 2 must not be lost")
	assert.Equal(t, 3, snap.Page)
}

func TestAccumulator_RefreshKeepsOtherParamsCached(t *testing.T) {
	fetcher := &fakeFetcher{fn: func(_ int, p models.QueryParams) (models.Page, error) {
		return paginate(catalogue(3), p.Page, p.Limit), nil
	}}
	acc := NewAccumulator(fetcher, AccumulatorOptions{DedupWindow: time.Minute})
	ctx := context.Background()

	require.NoError(t, acc.SetParams(ctx, models.QueryParams{Category: "Nature"}))
	require.NoError(t, acc.SetParams(ctx, models.QueryParams{Category: "Fashion"}))
	require.NoError(t, acc.Refresh(ctx))
	assert.Equal(t, 3, fetcher.Calls())

	require.NoError(t, acc.SetParams(ctx, models.QueryParams{Category: "Nature"}))
	assert.Equal(t, 3, fetcher.Calls())
}

func TestAccumulator_ConcurrentLoadMoreFetchesOnce(t *testing.T) {
	var pageTwo sync.WaitGroup
	release := make(chan struct{})
	var secondPageCalls int
	var mu sync.Mutex
	fetcher := &fakeFetcher{fn: func(_ int, p models.QueryParams) (models.Page, error) {
		if p.Page == 2 {
			mu.Lock()
			secondPageCalls++
			mu.Unlock()
			<-release
		}
		return paginate(catalogue(30), p.Page, p.Limit), nil
	}}
	acc := NewAccumulator(fetcher, AccumulatorOptions{})
	ctx := context.Background()
	require.NoError(t, acc.SetParams(ctx, models.QueryParams{}))

	start := make(chan struct{})
	const callers = 8
	for i := 0; i < callers; i++ {
		pageTwo.Add(1)
		go func() {
			defer pageTwo.Done()
			<-start
			assert.NoError(t, acc.LoadMore(ctx))
		}()
	}
	close(start)

	require.Eventually(t, func() bool {
		return acc.Snapshot().State == StateLoadingMore
	}, 2*time.Second, time.Millisecond)
	close(release)
	pageTwo.Wait()

	mu.Lock()
	assert.Equal(t, 1, secondPageCalls)
	mu.Unlock()

	got := ids(acc.Snapshot().Items)
	assert.Equal(t, ids(catalogue(30))[:len(got)], got)
}
