package viewmodels

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

func sampleBooks() []models.Book {
	return []models.Book{
		{ID: "1", Title: "Dune", Authors: []string{"Frank Herbert"}, Status: models.StatusReading},
		{ID: "2", Title: "Emma", Authors: []string{"Jane Austen"}, Status: models.StatusToRead},
		{ID: "3", Title: "Ubik", Authors: []string{"Philip K. Dick"}, Status: models.StatusReading},
		{ID: "4", Title: "Ulysses", Authors: []string{"James Joyce"}, Status: models.StatusDNF},
	}
}

func confirmWith(answer bool, prompts *[]string) Confirmer {
	return ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
		*prompts = append(*prompts, prompt)
		return answer, nil
	})
}

func loadedList(t *testing.T, api *fakeLibraryAPI, confirmer Confirmer) *BookListViewModel {
	t.Helper()
	vm := NewBookListViewModel(api, confirmer, discardLogger())
	if err := vm.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return vm
}

func TestBookListLoad(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		vm := NewBookListViewModel(&fakeLibraryAPI{books: sampleBooks()}, nil, discardLogger())
		if !vm.IsLoading() {
			t.Error("expected loading before the first fetch")
		}

		if err := vm.Load(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if vm.IsLoading() || vm.Err() != nil {
			t.Error("expected loaded state")
		}
		if !reflect.DeepEqual(vm.Books(), sampleBooks()) {
			t.Errorf("unexpected books %+v", vm.Books())
		}
	})

	t.Run("Failure Keeps Error And Clears Loading", func(t *testing.T) {
		loadErr := &shared.NetworkError{Err: errors.New("down")}
		vm := NewBookListViewModel(&fakeLibraryAPI{loadErr: loadErr}, nil, discardLogger())

		if err := vm.Load(context.Background()); !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected network error, got %v", err)
		}
		if vm.IsLoading() {
			t.Error("loading must be cleared on failure")
		}
		if !errors.Is(vm.Err(), shared.ErrNetwork) {
			t.Errorf("expected Err to keep the failure, got %v", vm.Err())
		}
		if len(vm.Books()) != 0 {
			t.Error("expected no books")
		}
	})

	t.Run("Overlapping Loads Share One Request", func(t *testing.T) {
		api := &fakeLibraryAPI{books: sampleBooks(), release: make(chan struct{})}
		vm := NewBookListViewModel(api, nil, discardLogger())

		var wg sync.WaitGroup
		errs := make([]error, 3)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = vm.Load(context.Background())
			}()
		}
		time.Sleep(50 * time.Millisecond)
		close(api.release)
		wg.Wait()

		for i, err := range errs {
			if err != nil {
				t.Errorf("load %d: unexpected error %v", i, err)
			}
		}
		if got := api.loads.Load(); got != 1 {
			t.Errorf("expected one backend call, got %d", got)
		}
		if vm.IsLoading() || len(vm.Books()) != len(sampleBooks()) {
			t.Errorf("expected loaded state, got loading=%v books=%d", vm.IsLoading(), len(vm.Books()))
		}
	})
}

func TestFilteredBooks(t *testing.T) {
	vm := loadedList(t, &fakeLibraryAPI{books: sampleBooks()}, nil)

	t.Run("All", func(t *testing.T) {
		if got := vm.FilteredBooks(); !reflect.DeepEqual(got, sampleBooks()) {
			t.Errorf("ALL should return every book, got %+v", got)
		}
	})

	t.Run("Exact Status In Order", func(t *testing.T) {
		vm.SetFilter(models.StatusReading)
		got := vm.FilteredBooks()
		if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
			t.Errorf("unexpected READING subset %+v", got)
		}
	})

	t.Run("Empty Subset", func(t *testing.T) {
		vm.SetFilter(models.StatusCompleted)
		if got := vm.FilteredBooks(); got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", got)
		}
	})

	t.Run("Rejects Unknown Filter", func(t *testing.T) {
		if err := vm.SetFilter("LOST"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if vm.Filter() != models.StatusCompleted {
			t.Error("filter must be unchanged after a rejected value")
		}
	})

	t.Run("Counts", func(t *testing.T) {
		want := map[models.Status]int{
			models.StatusAll:       4,
			models.StatusToRead:    1,
			models.StatusReading:   2,
			models.StatusCompleted: 0,
			models.StatusDNF:       1,
		}
		if got := vm.CountByStatus(); !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
		if vm.StatusLabel(models.StatusDNF) != "Did Not Finish" {
			t.Error("unexpected label")
		}
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Replaces Only Matching Book", func(t *testing.T) {
		api := &fakeLibraryAPI{books: sampleBooks()}
		vm := loadedList(t, api, nil)
		vm.OpenStatusModal("2")
		before := vm.Books()

		if err := vm.UpdateStatus(ctx, "2", models.StatusCompleted); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		after := vm.Books()
		for i := range after {
			if after[i].ID == "2" {
				if after[i].Status != models.StatusCompleted || after[i].Title != "Emma" {
					t.Errorf("unexpected updated book %+v", after[i])
				}
				continue
			}
			if !reflect.DeepEqual(after[i], before[i]) {
				t.Errorf("book %s changed: %+v", after[i].ID, after[i])
			}
		}
		if before[1].Status != models.StatusToRead {
			t.Error("earlier snapshots must not be mutated")
		}
		if open, _ := vm.StatusModal(); open {
			t.Error("modal should close after a successful update")
		}
		if !reflect.DeepEqual(api.updates, []string{"2=COMPLETED"}) {
			t.Errorf("unexpected backend calls %v", api.updates)
		}
	})

	t.Run("Failure Leaves State Untouched", func(t *testing.T) {
		api := &fakeLibraryAPI{books: sampleBooks(), updateErr: &shared.APIError{Status: 500}}
		vm := loadedList(t, api, nil)
		vm.OpenStatusModal("1")

		if err := vm.UpdateStatus(ctx, "1", models.StatusCompleted); err == nil {
			t.Fatal("expected error")
		}
		if !reflect.DeepEqual(vm.Books(), sampleBooks()) {
			t.Errorf("books changed after failure: %+v", vm.Books())
		}
		if open, id := vm.StatusModal(); !open || id != "1" {
			t.Error("modal should stay open after a failure")
		}
	})

	t.Run("Rejects ALL", func(t *testing.T) {
		api := &fakeLibraryAPI{books: sampleBooks()}
		vm := loadedList(t, api, nil)

		if err := vm.UpdateStatus(ctx, "1", models.StatusAll); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if len(api.updates) != 0 {
			t.Error("invalid status must not reach the backend")
		}
	})

	t.Run("Keeps Empty Lists Intact", func(t *testing.T) {
		book := models.Book{ID: "1", Title: "Anon", Authors: []string{}, Categories: []string{}, Status: models.StatusToRead}
		vm := loadedList(t, &fakeLibraryAPI{books: []models.Book{book}}, nil)

		if err := vm.UpdateStatus(ctx, "1", models.StatusReading); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, _ := vm.Book("1")
		want := book
		want.Status = models.StatusReading
		if !reflect.DeepEqual(got, want) {
			t.Errorf("only the status should change: got %#v, want %#v", got, want)
		}
		data, _ := json.Marshal(got)
		if !strings.Contains(string(data), `"authors":[]`) || !strings.Contains(string(data), `"categories":[]`) {
			t.Errorf("empty lists must encode as [], got %s", data)
		}
	})
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("Confirmed", func(t *testing.T) {
		var prompts []string
		api := &fakeLibraryAPI{books: sampleBooks()}
		vm := loadedList(t, api, confirmWith(true, &prompts))

		if err := vm.Remove(ctx, "3"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(prompts) != 1 || prompts[0] != RemovePrompt {
			t.Errorf("unexpected prompts %v", prompts)
		}
		if _, ok := vm.Book("3"); ok {
			t.Error("book should be removed")
		}
		if got := vm.Books(); len(got) != 3 || got[0].ID != "1" || got[2].ID != "4" {
			t.Errorf("unexpected remaining books %+v", got)
		}
	})

	t.Run("Declined", func(t *testing.T) {
		var prompts []string
		api := &fakeLibraryAPI{books: sampleBooks()}
		vm := loadedList(t, api, confirmWith(false, &prompts))

		if err := vm.Remove(ctx, "3"); !errors.Is(err, shared.ErrCancelled) {
			t.Errorf("expected ErrCancelled, got %v", err)
		}
		if len(api.deletes) != 0 || len(vm.Books()) != 4 {
			t.Error("declined removal must do nothing")
		}
	})

	t.Run("No Confirmer Declines", func(t *testing.T) {
		api := &fakeLibraryAPI{books: sampleBooks()}
		vm := loadedList(t, api, nil)

		if err := vm.Remove(ctx, "1"); !errors.Is(err, shared.ErrCancelled) {
			t.Errorf("expected ErrCancelled, got %v", err)
		}
		if len(api.deletes) != 0 {
			t.Error("no request expected")
		}
	})

	t.Run("Confirmer Error", func(t *testing.T) {
		api := &fakeLibraryAPI{books: sampleBooks()}
		boom := errors.New("prompt closed")
		vm := loadedList(t, api, ConfirmFunc(func(context.Context, string) (bool, error) { return false, boom }))

		if err := vm.Remove(ctx, "1"); !errors.Is(err, boom) {
			t.Errorf("expected prompt error, got %v", err)
		}
	})

	t.Run("Backend Failure", func(t *testing.T) {
		var prompts []string
		api := &fakeLibraryAPI{books: sampleBooks(), deleteErr: &shared.APIError{Status: 404, Message: "Book not found"}}
		vm := loadedList(t, api, confirmWith(true, &prompts))

		if err := vm.Remove(ctx, "1"); err == nil {
			t.Fatal("expected error")
		}
		if !reflect.DeepEqual(vm.Books(), sampleBooks()) {
			t.Error("books changed after a failed delete")
		}
	})
}
