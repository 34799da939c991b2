package viewmodels

import (
	"context"

	"github.com/desertthunder/shelf/internal/models"
)

// Notifier shows transient messages to the user.
type Notifier interface {
	Notify(n models.Notification)
}

// NotifyFunc adapts a function to [Notifier].
type NotifyFunc func(models.Notification)

func (f NotifyFunc) Notify(n models.Notification) { f(n) }

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to [Confirmer].
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// ScrollLock suppresses navigation of the underlying view while an overlay is open.
type ScrollLock interface {
	Lock()
	Unlock()
}

// AuthAPI is the backend surface used by [AuthViewModel].
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error)
}

// LibraryAPI is the backend surface used by [BookListViewModel].
type LibraryAPI interface {
	Books(ctx context.Context) ([]models.Book, error)
	UpdateBookStatus(ctx context.Context, bookID string, status models.Status) error
	DeleteBook(ctx context.Context, bookID string) error
}

// CatalogAPI is the backend surface used by [SearchViewModel].
type CatalogAPI interface {
	SearchBooks(ctx context.Context, query string) ([]models.CatalogVolume, error)
	AddBook(ctx context.Context, book models.NewBook) (*models.Book, error)
}

type noopNotifier struct{}

func (noopNotifier) Notify(models.Notification) {}

type noopScrollLock struct{}

func (noopScrollLock) Lock()   {}
func (noopScrollLock) Unlock() {}

var declineAll = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
