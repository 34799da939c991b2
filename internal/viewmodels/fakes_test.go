package viewmodels

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/store"
)

func discardLogger() *log.Logger { return shared.NewLogger(io.Discard) }

// fakeStore is an in-memory [store.SessionStore] whose events are published by hand or by ToggleSearch.
type fakeStore struct {
	mu          sync.Mutex
	session     models.Session
	showSearch  bool
	searchQuery string
	setErr      error
	handlers    map[int]store.Handler
	next        int
	logouts     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{handlers: map[int]store.Handler{}}
}

func (f *fakeStore) Session() models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *fakeStore) User() *models.UserProfile { return f.Session().User }
func (f *fakeStore) IsAuthenticated() bool     { return f.Session().IsAuthenticated }

func (f *fakeStore) SetSession(token string, user *models.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.session = models.NewSession(token, user)
	return nil
}

func (f *fakeStore) Logout() error {
	f.mu.Lock()
	f.logouts++
	f.session = models.NewSession("", nil)
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) ShowSearch() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.showSearch
}

func (f *fakeStore) SearchQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchQuery
}

func (f *fakeStore) SetSearchQuery(q string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchQuery = q
}

func (f *fakeStore) ToggleSearch(open bool) {
	f.mu.Lock()
	if f.showSearch == open {
		f.mu.Unlock()
		return
	}
	f.showSearch = open
	q := f.searchQuery
	f.mu.Unlock()

	f.publish(store.Event{Kind: store.SearchToggled, Open: open})
	if open {
		f.publish(store.Event{Kind: store.OpenSearch, Open: true, Query: q})
	}
}

func (f *fakeStore) Subscribe(fn store.Handler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.handlers[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.handlers, id)
	}
}

func (f *fakeStore) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

func (f *fakeStore) publish(ev store.Event) {
	f.mu.Lock()
	handlers := make([]store.Handler, 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// recordingNotifier keeps every notification.
type recordingNotifier struct {
	mu    sync.Mutex
	items []models.Notification
}

func (r *recordingNotifier) Notify(n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for _, n := range r.items {
		out = append(out, string(n.Kind)+": "+n.Message)
	}
	return out
}

// countingScroll counts lock transitions.
type countingScroll struct {
	mu      sync.Mutex
	locked  bool
	locks   int
	unlocks int
}

func (c *countingScroll) Lock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = true
	c.locks++
}

func (c *countingScroll) Unlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = false
	c.unlocks++
}

func (c *countingScroll) isLocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// fakeAuthAPI returns canned results and records the last request.
type fakeAuthAPI struct {
	result    *models.AuthResult
	err       error
	calls     int
	lastCreds models.Credentials
	lastReg   models.Registration
	// during runs inside the call, while the form is loading.
	during func()
}

func (f *fakeAuthAPI) Login(_ context.Context, creds models.Credentials) (*models.AuthResult, error) {
	f.calls++
	f.lastCreds = creds
	if f.during != nil {
		f.during()
	}
	return f.result, f.err
}

func (f *fakeAuthAPI) Register(_ context.Context, reg models.Registration) (*models.AuthResult, error) {
	f.calls++
	f.lastReg = reg
	if f.during != nil {
		f.during()
	}
	return f.result, f.err
}

// fakeLibraryAPI serves a fixed library.
type fakeLibraryAPI struct {
	books     []models.Book
	loadErr   error
	updateErr error
	deleteErr error
	updates   []string
	deletes   []string

	// release, when set, holds Books until it is closed.
	release chan struct{}
	loads   atomic.Int32
}

func (f *fakeLibraryAPI) Books(ctx context.Context) ([]models.Book, error) {
	f.loads.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]models.Book(nil), f.books...), nil
}

func (f *fakeLibraryAPI) UpdateBookStatus(_ context.Context, id string, status models.Status) error {
	f.updates = append(f.updates, id+"="+string(status))
	return f.updateErr
}

func (f *fakeLibraryAPI) DeleteBook(_ context.Context, id string) error {
	f.deletes = append(f.deletes, id)
	return f.deleteErr
}

// fakeCatalogAPI returns canned volumes. When block is set, SearchBooks waits for it or for ctx.
type fakeCatalogAPI struct {
	mu       sync.Mutex
	volumes  []models.CatalogVolume
	err      error
	addErr   error
	queries  []string
	added    []models.NewBook
	block    chan struct{}
	started  chan string
	ignoreCx bool
}

func (f *fakeCatalogAPI) SearchBooks(ctx context.Context, q string) ([]models.CatalogVolume, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	block, started := f.block, f.started
	volumes, err := f.volumes, f.err
	f.mu.Unlock()

	if started != nil {
		started <- q
	}
	if block != nil {
		if f.ignoreCx {
			<-block
		} else {
			select {
			case <-block:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return volumes, err
}

func (f *fakeCatalogAPI) AddBook(_ context.Context, b models.NewBook) (*models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, b)
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &models.Book{ID: "new-" + b.GoogleBookID, Title: b.Title, Status: b.Status}, nil
}

func (f *fakeCatalogAPI) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}
