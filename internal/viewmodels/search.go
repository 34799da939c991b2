package viewmodels

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/store"
)

// DefaultResultLimit caps the number of results kept from a search.
const DefaultResultLimit = 10

// Notification messages for the search overlay.
const (
	MsgSearchFailed = "Failed to search books"
	MsgBookAdded    = "Book added successfully"
	MsgAddFailed    = "Failed to add book"
)

// SearchOpts configures result shaping.
type SearchOpts struct {
	PlaceholderCover string
	ResultLimit      int
}

// SearchViewModel backs the catalog search overlay. It follows the store's search flag.
//
// A new search cancels the one in flight. Responses that arrive after being superseded
// or after the overlay closed are dropped without a notification.
type SearchViewModel struct {
	api      CatalogAPI
	store    store.SessionStore
	notifier Notifier
	scroll   ScrollLock
	logger   *log.Logger
	opts     SearchOpts

	// ctx scopes searches started by store events.
	ctx         context.Context
	unsubscribe func()

	mu        sync.Mutex
	isOpen    bool
	query     string
	results   []models.SearchResult
	isLoading bool
	added     map[string]struct{}
	seq       uint64
	cancel    context.CancelFunc
}

// NewSearchViewModel subscribes to s. Call [SearchViewModel.Release] when the overlay is torn down.
func NewSearchViewModel(ctx context.Context, api CatalogAPI, s store.SessionStore, notifier Notifier, scroll ScrollLock, opts SearchOpts, logger *log.Logger) *SearchViewModel {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if scroll == nil {
		scroll = noopScrollLock{}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.ResultLimit <= 0 {
		opts.ResultLimit = DefaultResultLimit
	}

	vm := &SearchViewModel{
		api:      api,
		store:    s,
		notifier: notifier,
		scroll:   scroll,
		logger:   logger,
		opts:     opts,
		ctx:      ctx,
		results:  []models.SearchResult{},
		added:    map[string]struct{}{},
	}
	vm.unsubscribe = s.Subscribe(vm.handle)

	if s.ShowSearch() {
		vm.open()
		vm.searchPending(s.SearchQuery())
	}
	return vm
}

func (vm *SearchViewModel) handle(ev store.Event) {
	switch ev.Kind {
	case store.SearchToggled:
		if ev.Open {
			vm.open()
		} else {
			vm.reset()
		}
	case store.OpenSearch:
		vm.searchPending(ev.Query)
	}
}

func (vm *SearchViewModel) searchPending(query string) {
	if strings.TrimSpace(query) == "" {
		return
	}
	vm.Search(vm.ctx, query)
}

func (vm *SearchViewModel) open() {
	vm.mu.Lock()
	wasOpen := vm.isOpen
	vm.isOpen = true
	vm.mu.Unlock()

	if !wasOpen {
		vm.scroll.Lock()
	}
}

// reset clears the overlay and drops any search in flight.
func (vm *SearchViewModel) reset() {
	vm.mu.Lock()
	wasOpen := vm.isOpen
	vm.isOpen = false
	vm.query = ""
	vm.results = []models.SearchResult{}
	vm.isLoading = false
	vm.seq++
	if vm.cancel != nil {
		vm.cancel()
		vm.cancel = nil
	}
	vm.mu.Unlock()

	vm.store.SetSearchQuery("")
	if wasOpen {
		vm.scroll.Unlock()
	}
}

// Close asks the store to close the overlay.
func (vm *SearchViewModel) Close() {
	vm.store.ToggleSearch(false)
	vm.reset()
}

// Release unsubscribes from the store, cancels any search in flight and gives back the
// scroll lock if the overlay still holds it. The store's search state is left alone.
func (vm *SearchViewModel) Release() {
	if vm.unsubscribe != nil {
		vm.unsubscribe()
		vm.unsubscribe = nil
	}

	vm.mu.Lock()
	wasOpen := vm.isOpen
	vm.isOpen = false
	vm.seq++
	if vm.cancel != nil {
		vm.cancel()
		vm.cancel = nil
	}
	vm.isLoading = false
	vm.mu.Unlock()

	if wasOpen {
		vm.scroll.Unlock()
	}
}

func (vm *SearchViewModel) IsOpen() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.isOpen
}

func (vm *SearchViewModel) Query() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.query
}

// SetQuery records the text being typed without searching.
func (vm *SearchViewModel) SetQuery(q string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.query = q
}

func (vm *SearchViewModel) IsLoading() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.isLoading
}

// Results returns a copy of the current results.
func (vm *SearchViewModel) Results() []models.SearchResult {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]models.SearchResult{}, vm.results...)
}

// IsAdded reports whether the catalog volume was added during this session.
func (vm *SearchViewModel) IsAdded(id string) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	_, ok := vm.added[id]
	return ok
}

// Search queries the catalog. A blank query clears the results without a request.
// A superseded search returns nil and leaves the state to the newer one.
func (vm *SearchViewModel) Search(ctx context.Context, query string) error {
	vm.mu.Lock()
	vm.query = query
	vm.seq++
	seq := vm.seq
	if vm.cancel != nil {
		vm.cancel()
		vm.cancel = nil
	}

	q := strings.TrimSpace(query)
	if q == "" {
		vm.results = []models.SearchResult{}
		vm.isLoading = false
		vm.mu.Unlock()
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	vm.cancel = cancel
	vm.isLoading = true
	vm.mu.Unlock()

	volumes, err := vm.api.SearchBooks(ctx, q)

	vm.mu.Lock()
	if seq != vm.seq {
		vm.mu.Unlock()
		vm.logger.Debug("dropping superseded search", "query", q)
		return nil
	}
	vm.isLoading = false
	vm.cancel = nil

	if err != nil {
		vm.results = []models.SearchResult{}
		vm.mu.Unlock()
		vm.logger.Error("Search failed", "query", q, "error", err)
		vm.notifier.Notify(models.NewNotification(models.NotifyError, MsgSearchFailed))
		return err
	}

	results := make([]models.SearchResult, 0, min(len(volumes), vm.opts.ResultLimit))
	for _, v := range volumes {
		if len(results) == vm.opts.ResultLimit {
			break
		}
		results = append(results, models.NewSearchResult(v, vm.opts.PlaceholderCover))
	}
	vm.results = results
	vm.mu.Unlock()

	vm.logger.Debug("search finished", "query", q, "results", len(results))
	return nil
}

// AddBook adds a result to the library as TO_READ. Adding an already added id is a no-op.
func (vm *SearchViewModel) AddBook(ctx context.Context, result models.SearchResult) error {
	if vm.IsAdded(result.ID) {
		return nil
	}

	if _, err := vm.api.AddBook(ctx, result.ToNewBook(models.StatusToRead)); err != nil {
		vm.logger.Error("Failed to add book", "id", result.ID, "error", err)
		vm.notifier.Notify(models.NewNotification(models.NotifyError, MsgAddFailed))
		return err
	}

	vm.mu.Lock()
	vm.added[result.ID] = struct{}{}
	vm.mu.Unlock()

	vm.notifier.Notify(models.NewNotification(models.NotifySuccess, MsgBookAdded))
	return nil
}
