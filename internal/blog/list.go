package blog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// LoadState is the lifecycle of a list view's content.
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateLoaded
	StateErrored
)

func (s LoadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ErrNotAuthorized is returned by Reload when the view's authorization gate
// rejects the caller. No request is issued in that case: a fetch that would
// only 403 is skipped entirely.
var ErrNotAuthorized = errors.New("not authorized to view this list")

// Filters are the discrete list filters. The zero value of each field means
// "all/any" and is omitted from the outgoing query rather than sent as a
// sentinel.
type Filters struct {
	Status      string // "", "published", "draft"
	CategoryID  string
	Role        string // "", "USER", "ADMIN"
	HasPosts    string // "", "yes", "no"
	CreatedFrom string // ISO date lower bound
	CreatedTo   string // ISO date upper bound
}

// ListQuery is the settled query state handed to a fetch function.
type ListQuery struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Search    string
	Filters   Filters
}

// Page is one page of a server-determined collection.
type Page[T any] struct {
	Items []T
	Total int
}

// FetchFunc loads one page for the settled query. Implementations map the
// query onto the entity's endpoint and parameter names.
type FetchFunc[T any] func(ctx context.Context, q ListQuery) (Page[T], error)

// DeleteFunc deletes one item on the server.
type DeleteFunc[T any] func(ctx context.Context, item T) error

// ListConfig parametrizes a ListController for one screen: entity type,
// page size, endpoint binding, and authorization gate.
type ListConfig[T any] struct {
	PageSize         int
	DefaultSortBy    string // e.g. "createdAt"
	DefaultSortOrder string // "asc" or "desc"
	SearchQuiet      time.Duration

	// Authorized gates fetching; nil means the view is public.
	Authorized func() bool

	Fetch  FetchFunc[T]
	Delete DeleteFunc[T] // nil for read-only views
	ID     func(T) string

	// Initial state, for screens that open with a query already applied.
	InitialFilters Filters
	InitialSearch  string

	Scheduler Scheduler
	Logger    Logger
}

// ListController drives one filterable, sortable, paginated collection view
// backed by a server endpoint. All list state is private to the controller;
// the only cross-view shared state in the application is the session store.
//
// Concurrent fetches are resolved with a monotonic ticket: every issued
// fetch takes the next ticket, and only the response carrying the latest
// issued ticket is applied. A stale response is dropped, never merged.
type ListController[T any] struct {
	cfg ListConfig[T]

	mu         sync.Mutex
	state      LoadState
	loadedOnce bool
	items      []T
	err        error

	searchTerm      string // raw input, shown in the search box
	committedSearch string // settled input, used in queries

	filters   Filters
	sortBy    string
	sortOrder string

	page       int
	totalPages int

	ticket uint64 // latest issued fetch ticket

	pendingDelete *T
	deleting      bool
}

// NewListController creates a controller in the Idle state. Nothing is
// fetched until the first Reload.
func NewListController[T any](cfg ListConfig[T]) *ListController[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.DefaultSortBy == "" {
		cfg.DefaultSortBy = "createdAt"
	}
	if cfg.DefaultSortOrder == "" {
		cfg.DefaultSortOrder = "desc"
	}
	if cfg.Logger == nil {
		cfg.Logger = NewNopLogger()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = NewTimerScheduler()
	}
	return &ListController[T]{
		cfg:             cfg,
		state:           StateIdle,
		filters:         cfg.InitialFilters,
		searchTerm:      cfg.InitialSearch,
		committedSearch: strings.TrimSpace(cfg.InitialSearch),
		sortBy:          cfg.DefaultSortBy,
		sortOrder:       cfg.DefaultSortOrder,
		page:            1,
		totalPages:      1,
	}
}

// Reload issues a fetch for the current query state. Unauthorized views get
// ErrNotAuthorized without any request. A response superseded by a newer
// fetch is discarded and Reload returns nil for it.
func (c *ListController[T]) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.cfg.Authorized != nil && !c.cfg.Authorized() {
		c.mu.Unlock()
		return ErrNotAuthorized
	}
	c.ticket++
	ticket := c.ticket
	c.state = StateLoading
	c.err = nil
	q := c.queryLocked()
	c.mu.Unlock()

	page, err := c.cfg.Fetch(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if ticket != c.ticket {
		// A newer fetch was issued while this one was in flight;
		// its response owns the view.
		c.cfg.Logger.Debug("stale list response dropped", "ticket", ticket, "latest", c.ticket)
		return nil
	}
	c.loadedOnce = true
	if err != nil {
		c.state = StateErrored
		c.err = err
		return err
	}
	c.items = page.Items
	c.totalPages = totalPages(page.Total, c.cfg.PageSize)
	c.state = StateLoaded
	return nil
}

// SetSearch records the raw search input immediately and commits it into
// the query only after the quiet period elapses with no further input.
// Committing resets the page to 1 and reloads.
func (c *ListController[T]) SetSearch(ctx context.Context, term string) {
	c.mu.Lock()
	c.searchTerm = term
	quiet := c.cfg.SearchQuiet
	c.mu.Unlock()

	if quiet <= 0 {
		quiet = 450 * time.Millisecond
	}
	c.cfg.Scheduler.Schedule(quiet, func() {
		c.commitSearch(ctx)
	})
}

func (c *ListController[T]) commitSearch(ctx context.Context) {
	c.mu.Lock()
	c.committedSearch = strings.TrimSpace(c.searchTerm)
	c.page = 1
	c.mu.Unlock()
	c.Reload(ctx)
}

// UpdateFilters applies mutate to the filters, resets to page 1, and
// reloads. Page N of the old result set is meaningless under a new filter.
func (c *ListController[T]) UpdateFilters(ctx context.Context, mutate func(*Filters)) error {
	c.mu.Lock()
	mutate(&c.filters)
	c.page = 1
	c.mu.Unlock()
	return c.Reload(ctx)
}

// SetSort changes the sort spec, resets to page 1, and reloads.
func (c *ListController[T]) SetSort(ctx context.Context, sortBy, sortOrder string) error {
	c.mu.Lock()
	if sortBy != "" {
		c.sortBy = sortBy
	}
	if sortOrder != "" {
		c.sortOrder = sortOrder
	}
	c.page = 1
	c.mu.Unlock()
	return c.Reload(ctx)
}

// ResetFilters returns search, filters, and sort to their defaults and reloads.
func (c *ListController[T]) ResetFilters(ctx context.Context) error {
	c.cfg.Scheduler.Stop()
	c.mu.Lock()
	c.searchTerm = ""
	c.committedSearch = ""
	c.filters = Filters{}
	c.sortBy = c.cfg.DefaultSortBy
	c.sortOrder = c.cfg.DefaultSortOrder
	c.page = 1
	c.mu.Unlock()
	return c.Reload(ctx)
}

// SetPage jumps to page n, clamped to [1, totalPages], and reloads.
func (c *ListController[T]) SetPage(ctx context.Context, n int) error {
	c.mu.Lock()
	if n < 1 {
		n = 1
	}
	if n > c.totalPages {
		n = c.totalPages
	}
	c.page = n
	c.mu.Unlock()
	return c.Reload(ctx)
}

// NextPage advances one page. It is a no-op exactly when the current page
// is the last one.
func (c *ListController[T]) NextPage(ctx context.Context) error {
	c.mu.Lock()
	if c.page >= c.totalPages {
		c.mu.Unlock()
		return nil
	}
	c.page++
	c.mu.Unlock()
	return c.Reload(ctx)
}

// PrevPage goes back one page. It is a no-op on page 1.
func (c *ListController[T]) PrevPage(ctx context.Context) error {
	c.mu.Lock()
	if c.page <= 1 {
		c.mu.Unlock()
		return nil
	}
	c.page--
	c.mu.Unlock()
	return c.Reload(ctx)
}

// CanNext reports whether the next-page control is enabled.
func (c *ListController[T]) CanNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page < c.totalPages
}

// CanPrev reports whether the previous-page control is enabled.
func (c *ListController[T]) CanPrev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page > 1
}

// PageLinks returns the windowed page numbers to render: always the first
// and last page, plus pages within one of the current page, ascending.
func (c *ListController[T]) PageLinks() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	links := make([]int, 0, 5)
	for p := 1; p <= c.totalPages; p++ {
		if p == 1 || p == c.totalPages || (p >= c.page-1 && p <= c.page+1) {
			links = append(links, p)
		}
	}
	return links
}

// RequestDelete marks item as the deletion candidate. The slot holds one
// candidate; requesting another replaces it.
func (c *ListController[T]) RequestDelete(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = &item
}

// CancelDelete dismisses the pending confirmation. It refuses while the
// delete request is in flight and reports whether the slot was cleared.
func (c *ListController[T]) CancelDelete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleting {
		return false
	}
	c.pendingDelete = nil
	return true
}

// PendingDelete returns the current deletion candidate, if any.
func (c *ListController[T]) PendingDelete() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingDelete == nil {
		var zero T
		return zero, false
	}
	return *c.pendingDelete, true
}

// ConfirmDelete performs the confirmed deletion. On success the item is
// removed from the displayed rows in place, preserving the relative order
// of all other rows, without a list re-fetch. On failure the candidate
// stays set so the confirmation can be retried.
func (c *ListController[T]) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.pendingDelete == nil || c.cfg.Delete == nil {
		c.mu.Unlock()
		return nil
	}
	item := *c.pendingDelete
	c.deleting = true
	c.mu.Unlock()

	err := c.cfg.Delete(ctx, item)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleting = false
	if err != nil {
		return err
	}

	id := c.cfg.ID(item)
	kept := c.items[:0]
	for _, it := range c.items {
		if c.cfg.ID(it) != id {
			kept = append(kept, it)
		}
	}
	c.items = kept
	c.pendingDelete = nil
	c.cfg.Logger.Info("item deleted", "id", id)
	return nil
}

// IsDeleting reports whether a confirmed delete is in flight.
func (c *ListController[T]) IsDeleting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleting
}

// Items returns a copy of the displayed rows.
func (c *ListController[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// State returns the view's lifecycle state.
func (c *ListController[T]) State() LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// FirstLoad reports whether the view is loading with nothing to show yet
// (full placeholder). A later fetch keeps old rows visible instead.
func (c *ListController[T]) FirstLoad() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateLoading && !c.loadedOnce
}

// Refreshing reports whether a background refresh is in flight over
// already-displayed rows (inline spinner, not a blank screen).
func (c *ListController[T]) Refreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateLoading && c.loadedOnce
}

// Err returns the last fetch error, if the view is in the Errored state.
func (c *ListController[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// PageNum returns the current page (1-based).
func (c *ListController[T]) PageNum() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// TotalPages returns the page count, never less than 1.
func (c *ListController[T]) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// SearchTerm returns the raw (uncommitted) search input.
func (c *ListController[T]) SearchTerm() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchTerm
}

// Query returns the settled query that the next fetch would use.
func (c *ListController[T]) Query() ListQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queryLocked()
}

// queryLocked snapshots the settled query; callers must hold c.mu.
func (c *ListController[T]) queryLocked() ListQuery {
	return ListQuery{
		Page:      c.page,
		Limit:     c.cfg.PageSize,
		SortBy:    c.sortBy,
		SortOrder: c.sortOrder,
		Search:    c.committedSearch,
		Filters:   c.filters,
	}
}

// totalPages computes ceil(total/pageSize) floored at 1, so pagination
// controls never show zero pages even for an empty result set.
func totalPages(total, pageSize int) int {
	if total <= 0 {
		return 1
	}
	n := (total + pageSize - 1) / pageSize
	if n < 1 {
		n = 1
	}
	return n
}
