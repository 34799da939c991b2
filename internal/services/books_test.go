package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	tu "github.com/desertthunder/shelf/internal/testing"
)

func newTestBookService(t *testing.T, status int, body any) (*BookService, *tu.RecordingServer) {
	t.Helper()
	srv := tu.NewRecordingServer(t, status, body)
	return NewBookService(newTestClient(srv.URL, nil)), srv
}

func TestBookService(t *testing.T) {
	ctx := context.Background()

	t.Run("Login", func(t *testing.T) {
		t.Run("Token As Data", func(t *testing.T) {
			svc, srv := newTestBookService(t, http.StatusOK, `{"success":true,"data":"jwt-token"}`)

			result, err := svc.Login(ctx, models.Credentials{Email: "a@b.co", Password: "password1"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Token != "jwt-token" || result.User != nil {
				t.Errorf("unexpected result %+v", result)
			}

			req := srv.Last(t)
			if req.Method != http.MethodPost || req.Path != LoginPath {
				t.Errorf("unexpected request %s %s", req.Method, req.Path)
			}
			var sent models.Credentials
			json.Unmarshal(req.Body, &sent)
			if sent.Email != "a@b.co" || sent.Password != "password1" {
				t.Errorf("unexpected body %s", req.Body)
			}
		})

		t.Run("Token And User", func(t *testing.T) {
			svc, _ := newTestBookService(t, http.StatusOK, `{"token":"t","user":{"id":"u1","email":"a@b.co","name":"Ann"}}`)

			result, err := svc.Login(ctx, models.Credentials{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Token != "t" || result.User == nil || result.User.Name != "Ann" {
				t.Errorf("unexpected result %+v", result)
			}
		})

		t.Run("Missing Token", func(t *testing.T) {
			for _, body := range []string{`{"success":true,"data":""}`, `{"user":{"id":"u1"}}`} {
				svc, _ := newTestBookService(t, http.StatusOK, body)
				if _, err := svc.Login(ctx, models.Credentials{}); !errors.Is(err, shared.ErrAuthFailed) {
					t.Errorf("expected ErrAuthFailed for %s, got %v", body, err)
				}
			}
		})

		t.Run("Rejected", func(t *testing.T) {
			svc, _ := newTestBookService(t, http.StatusUnauthorized, `{"success":false,"error":"Invalid credentials"}`)

			_, err := svc.Login(ctx, models.Credentials{})
			if got := shared.ErrorMessage(err); got != "Invalid credentials" {
				t.Errorf("expected backend message, got %q", got)
			}
		})
	})

	t.Run("Register Sends Genres", func(t *testing.T) {
		svc, srv := newTestBookService(t, http.StatusCreated, `{"success":true,"data":{"token":"t"}}`)

		if _, err := svc.Register(ctx, models.Registration{Email: "a@b.co", Password: "password1", Name: "Ann"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req := srv.Last(t)
		if req.Path != RegisterPath {
			t.Errorf("unexpected path %s", req.Path)
		}
		var sent map[string]any
		json.Unmarshal(req.Body, &sent)
		if genres, ok := sent["genres"].([]any); !ok || len(genres) != 0 {
			t.Errorf("expected empty genres array, got %v", sent["genres"])
		}
	})

	t.Run("Books", func(t *testing.T) {
		svc, srv := newTestBookService(t, http.StatusOK, `{"success":true,"data":[
			{"id":"1","title":"Dune","authors":["Frank Herbert"],"status":"READING"},
			{"id":"2","title":"Emma","authors":["Jane Austen"],"status":"TO_READ"}
		]}`)

		books, err := svc.Books(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(books) != 2 || books[0].Status != models.StatusReading || books[1].Title != "Emma" {
			t.Errorf("unexpected books %+v", books)
		}
		if req := srv.Last(t); req.Method != http.MethodGet || req.Path != BooksPath {
			t.Errorf("unexpected request %s %s", req.Method, req.Path)
		}
	})

	t.Run("Books Null Data", func(t *testing.T) {
		svc, _ := newTestBookService(t, http.StatusOK, `{"success":true,"data":null}`)

		books, err := svc.Books(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if books == nil || len(books) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", books)
		}
	})

	t.Run("AddBook", func(t *testing.T) {
		t.Run("Posts Payload", func(t *testing.T) {
			svc, srv := newTestBookService(t, http.StatusCreated, `{"success":true,"data":{"id":"9","title":"Dune","status":"TO_READ"}}`)

			created, err := svc.AddBook(ctx, models.NewBook{GoogleBookID: "g1", Title: "Dune", Status: models.StatusToRead})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if created == nil || created.ID != "9" {
				t.Errorf("unexpected created book %+v", created)
			}

			var sent map[string]any
			json.Unmarshal(srv.Last(t).Body, &sent)
			if sent["googleBookId"] != "g1" || sent["status"] != "TO_READ" {
				t.Errorf("unexpected payload %v", sent)
			}
		})

		t.Run("Rejects Invalid Status", func(t *testing.T) {
			svc, srv := newTestBookService(t, http.StatusOK, nil)

			_, err := svc.AddBook(ctx, models.NewBook{Status: models.StatusAll})
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if len(srv.Requests()) != 0 {
				t.Error("no request should be sent")
			}
		})
	})

	t.Run("UpdateBookStatus", func(t *testing.T) {
		svc, srv := newTestBookService(t, http.StatusOK, `{"success":true}`)

		if err := svc.UpdateBookStatus(ctx, "b1", models.StatusCompleted); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req := srv.Last(t)
		if req.Method != http.MethodPut || req.Path != BookStatusPath {
			t.Errorf("unexpected request %s %s", req.Method, req.Path)
		}
		var sent map[string]string
		json.Unmarshal(req.Body, &sent)
		if sent["book_id"] != "b1" || sent["status"] != "COMPLETED" {
			t.Errorf("unexpected payload %v", sent)
		}
	})

	t.Run("DeleteBook", func(t *testing.T) {
		svc, srv := newTestBookService(t, http.StatusOK, `{"success":true}`)

		if err := svc.DeleteBook(ctx, "b 1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		req := srv.Last(t)
		if req.Method != http.MethodDelete || req.Path != "/api/books/b 1" {
			t.Errorf("unexpected request %s %s", req.Method, req.Path)
		}

		if err := svc.DeleteBook(ctx, " "); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("SearchBooks", func(t *testing.T) {
		t.Run("Flat Shape", func(t *testing.T) {
			svc, srv := newTestBookService(t, http.StatusOK, `[{"id":"g1","title":"Dune","authors":["Frank Herbert"],"imageURL":"http://img"}]`)

			volumes, err := svc.SearchBooks(ctx, "dune messiah")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(volumes) != 1 || volumes[0].ID != "g1" || volumes[0].ImageURL != "http://img" {
				t.Errorf("unexpected volumes %+v", volumes)
			}
			req := srv.Last(t)
			if req.Path != SearchPath || req.Query != "q=dune+messiah" {
				t.Errorf("unexpected request %s?%s", req.Path, req.Query)
			}
		})

		t.Run("VolumeInfo Shape In Envelope", func(t *testing.T) {
			svc, _ := newTestBookService(t, http.StatusOK, `{"success":true,"data":{"items":[
				{"id":"g1","volumeInfo":{"title":"Dune","authors":["Frank Herbert"],"categories":["Fiction"],"imageLinks":{"thumbnail":"http://thumb"}}},
				{"id":"g2","volumeInfo":{"title":"Bare","imageLinks":{"smallThumbnail":"http://small"}}},
				{"id":"g3","volumeInfo":{"title":"No Cover"}}
			]}}`)

			volumes, err := svc.SearchBooks(ctx, "dune")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(volumes) != 3 {
				t.Fatalf("expected 3 volumes, got %d", len(volumes))
			}
			if volumes[0].Title != "Dune" || volumes[0].ImageURL != "http://thumb" || volumes[0].Categories[0] != "Fiction" {
				t.Errorf("unexpected first volume %+v", volumes[0])
			}
			if volumes[1].ImageURL != "http://small" {
				t.Errorf("expected small thumbnail fallback, got %q", volumes[1].ImageURL)
			}
			if volumes[2].ImageURL != "" || volumes[2].Authors != nil {
				t.Errorf("expected missing fields left empty, got %+v", volumes[2])
			}
		})

		t.Run("Empty Results", func(t *testing.T) {
			for _, body := range []string{`{"success":true,"data":null}`, `{"items":null}`, `[]`} {
				svc, _ := newTestBookService(t, http.StatusOK, body)
				volumes, err := svc.SearchBooks(ctx, "x")
				if err != nil {
					t.Fatalf("unexpected error for %s: %v", body, err)
				}
				if len(volumes) != 0 {
					t.Errorf("expected no volumes for %s, got %d", body, len(volumes))
				}
			}
		})

		t.Run("Unexpected Shape", func(t *testing.T) {
			svc, _ := newTestBookService(t, http.StatusOK, `"hello"`)
			if _, err := svc.SearchBooks(ctx, "x"); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})
}
