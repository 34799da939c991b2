package viewmodels

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"golang.org/x/sync/singleflight"
)

// RemovePrompt is the question asked before a book is removed.
const RemovePrompt = "Are you sure you want to remove this book?"

// BookListViewModel holds the user's library and the active status filter.
type BookListViewModel struct {
	api       LibraryAPI
	confirmer Confirmer
	logger    *log.Logger
	loads     singleflight.Group

	mu          sync.RWMutex
	books       []models.Book
	filter      models.Status
	isLoading   bool
	err         error
	modalOpen   bool
	modalBookID string
}

// NewBookListViewModel creates a list in the loading state with the ALL filter. Call [BookListViewModel.Load] next.
// Without a confirmer every removal is declined.
func NewBookListViewModel(api LibraryAPI, confirmer Confirmer, logger *log.Logger) *BookListViewModel {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if confirmer == nil {
		confirmer = declineAll
	}
	return &BookListViewModel{
		api:       api,
		confirmer: confirmer,
		logger:    logger,
		books:     []models.Book{},
		filter:    models.StatusAll,
		isLoading: true,
	}
}

// Load fetches the library. The loading flag is cleared whatever the outcome and a
// failure is kept for [BookListViewModel.Err]. Calls that overlap an in-flight load
// share its request and result.
func (vm *BookListViewModel) Load(ctx context.Context) error {
	vm.mu.Lock()
	vm.isLoading = true
	vm.mu.Unlock()

	defer func() {
		vm.mu.Lock()
		vm.isLoading = false
		vm.mu.Unlock()
	}()

	v, err, joined := vm.loads.Do("books", func() (any, error) {
		return vm.api.Books(ctx)
	})

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if err != nil {
		if !joined {
			vm.logger.Error("Failed to fetch books", "error", err)
		}
		vm.err = err
		return err
	}
	books, _ := v.([]models.Book)
	if books == nil {
		books = []models.Book{}
	}
	vm.books = books
	vm.err = nil
	vm.logger.Debug("books loaded", "count", len(books), "joined", joined)
	return nil
}

func (vm *BookListViewModel) IsLoading() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.isLoading
}

// Err returns the error of the last load, if any.
func (vm *BookListViewModel) Err() error {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.err
}

// Books returns a copy of the whole library in backend order.
func (vm *BookListViewModel) Books() []models.Book {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return append([]models.Book{}, vm.books...)
}

// Book looks up a book by id.
func (vm *BookListViewModel) Book(id string) (models.Book, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for _, b := range vm.books {
		if b.ID == id {
			return b, true
		}
	}
	return models.Book{}, false
}

func (vm *BookListViewModel) Filter() models.Status {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.filter
}

// SetFilter selects the status shown by [BookListViewModel.FilteredBooks].
func (vm *BookListViewModel) SetFilter(status models.Status) error {
	if !status.IsFilter() {
		return fmt.Errorf("%w: unknown status filter %q", shared.ErrInvalidInput, status)
	}
	vm.mu.Lock()
	vm.filter = status
	vm.mu.Unlock()
	return nil
}

// FilteredBooks returns every book for the ALL filter, otherwise the books with exactly the filter status.
// Order is preserved.
func (vm *BookListViewModel) FilteredBooks() []models.Book {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return filterBooks(vm.books, vm.filter)
}

func filterBooks(books []models.Book, status models.Status) []models.Book {
	out := []models.Book{}
	for _, b := range books {
		if status == models.StatusAll || b.Status == status {
			out = append(out, b)
		}
	}
	return out
}

// CountByStatus counts books per status. The ALL entry is the library size.
func (vm *BookListViewModel) CountByStatus() map[models.Status]int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	counts := map[models.Status]int{models.StatusAll: len(vm.books)}
	for _, s := range models.BookStatuses() {
		counts[s] = 0
	}
	for _, b := range vm.books {
		counts[b.Status]++
	}
	return counts
}

// StatusLabel returns the display label for a status.
func (vm *BookListViewModel) StatusLabel(status models.Status) string {
	return status.Label()
}

// OpenStatusModal opens the status picker for a book.
func (vm *BookListViewModel) OpenStatusModal(bookID string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.modalOpen = true
	vm.modalBookID = bookID
}

func (vm *BookListViewModel) CloseStatusModal() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.modalOpen = false
	vm.modalBookID = ""
}

// StatusModal reports whether the picker is open and for which book.
func (vm *BookListViewModel) StatusModal() (bool, string) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.modalOpen, vm.modalBookID
}

// UpdateStatus asks the backend first. Only on success is the matching book replaced by a
// new record with the new status and the picker closed. On failure nothing changes.
func (vm *BookListViewModel) UpdateStatus(ctx context.Context, bookID string, status models.Status) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: invalid book status %q", shared.ErrInvalidInput, status)
	}

	if err := vm.api.UpdateBookStatus(ctx, bookID, status); err != nil {
		vm.logger.Error("Failed to update book status", "book", bookID, "status", status, "error", err)
		return err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	next := make([]models.Book, len(vm.books))
	for i, b := range vm.books {
		if b.ID == bookID {
			next[i] = b.WithStatus(status)
		} else {
			next[i] = b
		}
	}
	vm.books = next
	vm.modalOpen = false
	vm.modalBookID = ""
	return nil
}

// Remove asks for confirmation, then deletes the book on the backend and drops it locally.
// A declined prompt returns [shared.ErrCancelled] without any request.
func (vm *BookListViewModel) Remove(ctx context.Context, bookID string) error {
	ok, err := vm.confirmer.Confirm(ctx, RemovePrompt)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrCancelled
	}

	if err := vm.api.DeleteBook(ctx, bookID); err != nil {
		vm.logger.Error("Failed to remove book", "book", bookID, "error", err)
		return err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	next := make([]models.Book, 0, len(vm.books))
	for _, b := range vm.books {
		if b.ID != bookID {
			next = append(next, b)
		}
	}
	vm.books = next
	return nil
}
