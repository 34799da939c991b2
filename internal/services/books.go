package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// Backend endpoints.
const (
	LoginPath      = "/api/auth/login"
	RegisterPath   = "/api/auth/register"
	BooksPath      = "/api/books"
	BookStatusPath = "/api/books/status"
	SearchPath     = "/api/books/search"
)

// BookService maps backend endpoints to typed calls.
type BookService struct {
	client *Client
}

// NewBookService creates a new [BookService] on top of client.
func NewBookService(client *Client) *BookService {
	return &BookService{client: client}
}

// Client returns the underlying HTTP client.
func (s *BookService) Client() *Client { return s.client }

// Login exchanges credentials for a token.
func (s *BookService) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	data, err := s.client.Request(ctx, http.MethodPost, LoginPath, RequestOptions{Body: creds})
	if err != nil {
		return nil, err
	}
	return decodeAuthResult(data)
}

// Register creates an account and returns the token issued for it.
func (s *BookService) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	if reg.Genres == nil {
		reg.Genres = []string{}
	}
	data, err := s.client.Request(ctx, http.MethodPost, RegisterPath, RequestOptions{Body: reg})
	if err != nil {
		return nil, err
	}
	return decodeAuthResult(data)
}

// Books fetches the user's library.
func (s *BookService) Books(ctx context.Context) ([]models.Book, error) {
	books := []models.Book{}
	if err := s.client.Do(ctx, http.MethodGet, BooksPath, RequestOptions{}, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// AddBook adds a catalog volume to the library. The returned book is nil when the backend sends no body.
func (s *BookService) AddBook(ctx context.Context, book models.NewBook) (*models.Book, error) {
	if !book.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid book status %q", shared.ErrInvalidInput, book.Status)
	}

	var created *models.Book
	if err := s.client.Do(ctx, http.MethodPost, BooksPath, RequestOptions{Body: book}, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateBookStatus sets the reading status of a library entry.
func (s *BookService) UpdateBookStatus(ctx context.Context, bookID string, status models.Status) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: invalid book status %q", shared.ErrInvalidInput, status)
	}

	body := struct {
		BookID string        `json:"book_id"`
		Status models.Status `json:"status"`
	}{bookID, status}
	return s.client.Do(ctx, http.MethodPut, BookStatusPath, RequestOptions{Body: body}, nil)
}

// DeleteBook removes a library entry.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	if strings.TrimSpace(bookID) == "" {
		return fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}
	return s.client.Do(ctx, http.MethodDelete, BooksPath+"/"+url.PathEscape(bookID), RequestOptions{}, nil)
}

// SearchBooks queries the external catalog through the backend.
func (s *BookService) SearchBooks(ctx context.Context, query string) ([]models.CatalogVolume, error) {
	data, err := s.client.Request(ctx, http.MethodGet, SearchPath, RequestOptions{Query: url.Values{"q": {query}}})
	if err != nil {
		return nil, err
	}
	return decodeCatalog(data)
}

// decodeAuthResult accepts a bare token string or a {token, user} object.
func decodeAuthResult(data json.RawMessage) (*models.AuthResult, error) {
	var token string
	if err := json.Unmarshal(data, &token); err == nil {
		if token == "" {
			return nil, fmt.Errorf("%w: response did not include a token", shared.ErrAuthFailed)
		}
		return &models.AuthResult{Token: token}, nil
	}

	var result models.AuthResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode auth response: %v", shared.ErrAPIRequest, err)
	}
	if result.Token == "" {
		return nil, fmt.Errorf("%w: response did not include a token", shared.ErrAuthFailed)
	}
	return &result, nil
}
