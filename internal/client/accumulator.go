package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"showcase/internal/domain/models"
	"showcase/internal/lib/logger/handlers/slogdiscard"
	"showcase/internal/lib/logger/sl"

	"github.com/patrickmn/go-cache"
)

// ErrStale is returned when a response arrived after the parameters changed
// or a refresh started. The response was dropped.
var ErrStale = errors.New("stale response discarded")

const DefaultDedupWindow = 5 * time.Second

// Fetcher loads one page of the listing. *Client implements it.
type Fetcher interface {
	ListItems(ctx context.Context, params models.QueryParams) (models.Page, error)
}

type State int

const (
	StateIdle State = iota
	StateLoadingInitial
	StateLoadingMore
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingInitial:
		return "loading_initial"
	case StateLoadingMore:
		return "loading_more"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is a copy of the accumulator state.
type Snapshot struct {
	State       State
	Items       []models.GalleryItem
	Page        int
	HasMore     bool
	Total       int
	Err         error
	Fingerprint string
}

type AccumulatorOptions struct {
	Limit int
	// DedupWindow is how long an identical page request is answered from
	// cache. Zero means DefaultDedupWindow.
	DedupWindow time.Duration
	Log         *slog.Logger
}

// Accumulator builds an infinite-scroll list from consecutive pages. Items are
// de-duplicated by id. Any parameter change or refresh starts over from page 1
// and invalidates responses still in flight.
type Accumulator struct {
	fetcher Fetcher
	log     *slog.Logger
	pages   *cache.Cache
	limit   int

	mu          sync.Mutex
	params      models.QueryParams
	fingerprint string
	state       State
	items       []models.GalleryItem
	seen        map[string]struct{}
	page        int
	hasMore     bool
	total       int
	err         error
	generation  uint64
	inFlight    bool
}

func NewAccumulator(fetcher Fetcher, opts AccumulatorOptions) *Accumulator {
	if opts.Limit <= 0 {
		opts.Limit = models.DefaultLimit
	}
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = DefaultDedupWindow
	}
	if opts.Log == nil {
		opts.Log = slogdiscard.NewDiscardLogger()
	}

	params := models.QueryParams{}.WithDefaults()

	return &Accumulator{
		fetcher:     fetcher,
		log:         opts.Log,
		pages:       cache.New(opts.DedupWindow, 2*opts.DedupWindow),
		limit:       opts.Limit,
		params:      params,
		fingerprint: params.Fingerprint(),
		state:       StateIdle,
		seen:        make(map[string]struct{}),
		page:        1,
	}
}

// SetParams switches to new filter and sort parameters and loads page 1.
// Page and limit in params are ignored. Unchanged parameters after a first
// load are a no-op.
func (a *Accumulator) SetParams(ctx context.Context, params models.QueryParams) error {
	params = params.WithDefaults()
	params.Page, params.Limit = 0, 0

	a.mu.Lock()
	if params.Fingerprint() == a.fingerprint && a.state != StateIdle {
		a.mu.Unlock()
		return nil
	}
	a.params = params
	a.fingerprint = params.Fingerprint()
	a.resetLocked()
	req := a.beginLocked(1)
	a.mu.Unlock()

	return a.load(ctx, req)
}

// Refresh drops the accumulated list and every cached page of the current
// parameters, then loads page 1 again.
func (a *Accumulator) Refresh(ctx context.Context) error {
	a.mu.Lock()
	a.invalidateLocked()
	a.resetLocked()
	req := a.beginLocked(1)
	a.mu.Unlock()

	return a.load(ctx, req)
}

// LoadMore fetches the next page. It does nothing unless the list is loaded,
// has more pages and no fetch is running.
func (a *Accumulator) LoadMore(ctx context.Context) error {
	a.mu.Lock()
	if a.state != StateLoaded || !a.hasMore || a.inFlight {
		a.mu.Unlock()
		return nil
	}
	req := a.beginLocked(a.page + 1)
	a.mu.Unlock()

	return a.load(ctx, req)
}

// Retry repeats the fetch that failed. Accumulated items are kept.
func (a *Accumulator) Retry(ctx context.Context) error {
	a.mu.Lock()
	if a.state != StateError || a.inFlight {
		a.mu.Unlock()
		return nil
	}
	next := 1
	if len(a.items) > 0 {
		next = a.page + 1
	}
	req := a.beginLocked(next)
	a.mu.Unlock()

	return a.load(ctx, req)
}

// Done reports whether every page for the current parameters is loaded.
func (a *Accumulator) Done() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state == StateLoaded && !a.hasMore
}

func (a *Accumulator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	items := make([]models.GalleryItem, len(a.items))
	for i := range a.items {
		items[i] = a.items[i].Clone()
	}

	return Snapshot{
		State:       a.state,
		Items:       items,
		Page:        a.page,
		HasMore:     a.hasMore,
		Total:       a.total,
		Err:         a.err,
		Fingerprint: a.fingerprint,
	}
}

// resetLocked must be called with a.mu held.
func (a *Accumulator) resetLocked() {
	a.generation++
	a.state = StateIdle
	a.items = nil
	a.seen = make(map[string]struct{})
	a.page = 1
	a.hasMore = false
	a.total = 0
	a.err = nil
	a.inFlight = false
}

// invalidateLocked drops every cached page of the current parameters.
func (a *Accumulator) invalidateLocked() {
	prefix := a.fingerprint + "|"
	for key := range a.pages.Items() {
		if strings.HasPrefix(key, prefix) {
			a.pages.Delete(key)
		}
	}
}

type pageRequest struct {
	gen    uint64
	page   int
	params models.QueryParams
	key    string
}

// beginLocked marks a fetch of page as running. Callers check the state and
// call it in one critical section so two fetches never start together.
func (a *Accumulator) beginLocked(page int) pageRequest {
	if page == 1 {
		a.state = StateLoadingInitial
	} else {
		a.state = StateLoadingMore
	}
	a.inFlight = true

	params := a.params
	params.Page, params.Limit = page, a.limit

	return pageRequest{
		gen:    a.generation,
		page:   page,
		params: params,
		key:    a.cacheKey(page),
	}
}

func (a *Accumulator) load(ctx context.Context, req pageRequest) error {
	const op = "client.Accumulator.load"
	log := a.log.With(
		slog.String("op", op),
		slog.Int("page", req.page),
	)

	result, cached, err := a.fetch(ctx, req)

	a.mu.Lock()
	defer a.mu.Unlock()

	if req.gen != a.generation {
		log.Debug("discarding stale page")
		return ErrStale
	}
	a.inFlight = false

	if err != nil {
		log.Warn("page fetch failed", sl.Err(err))
		a.state = StateError
		a.err = err
		return err
	}

	// only pages fetched for the live generation are cached, so a response
	// that raced a refresh cannot repopulate the cache
	if !cached {
		a.pages.SetDefault(req.key, result)
	}

	if req.page == 1 {
		a.items = make([]models.GalleryItem, 0, len(result.Data))
		a.seen = make(map[string]struct{}, len(result.Data))
	}
	for _, item := range result.Data {
		if _, dup := a.seen[item.ID]; dup {
			continue
		}
		a.seen[item.ID] = struct{}{}
		a.items = append(a.items, item.Clone())
	}

	a.page = req.page
	a.hasMore = result.Pagination.HasNext
	a.total = result.Pagination.Total
	a.err = nil
	a.state = StateLoaded

	return nil
}

func (a *Accumulator) fetch(ctx context.Context, req pageRequest) (models.Page, bool, error) {
	if hit, ok := a.pages.Get(req.key); ok {
		return hit.(models.Page), true, nil
	}

	page, err := a.fetcher.ListItems(ctx, req.params)
	if err != nil {
		return models.Page{}, false, err
	}
	return page, false, nil
}

// cacheKey must be called with a.mu held.
func (a *Accumulator) cacheKey(page int) string {
	return fmt.Sprintf("%s|%d|%d", a.fingerprint, page, a.limit)
}
