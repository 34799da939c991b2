package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/tasks"
	"github.com/desertthunder/shelf/internal/viewmodels"
	"github.com/urfave/cli/v3"
)

// loadLibrary fetches the library into a fresh view model.
func (r *Runner) loadLibrary(ctx context.Context, confirmer viewmodels.Confirmer) (*viewmodels.BookListViewModel, error) {
	if err := r.requireSession(); err != nil {
		return nil, err
	}

	vm := viewmodels.NewBookListViewModel(r.books, confirmer, r.logger)
	if err := vm.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load books: %w", err)
	}
	return vm, nil
}

func (r *Runner) findBook(vm *viewmodels.BookListViewModel, id string) (models.Book, error) {
	if id == "" {
		return models.Book{}, fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}
	book, ok := vm.Book(id)
	if !ok {
		return models.Book{}, fmt.Errorf("%w: %s", shared.ErrBookNotFound, id)
	}
	return book, nil
}

// BooksList prints the library, optionally narrowed to one status shelf.
func (r *Runner) BooksList(ctx context.Context, cmd *cli.Command) error {
	vm, err := r.loadLibrary(ctx, nil)
	if err != nil {
		return err
	}

	if v := cmd.String("status"); v != "" {
		status, err := models.ParseStatus(v)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		if err := vm.SetFilter(status); err != nil {
			return err
		}
	}

	books := vm.FilteredBooks()
	if cmd.Bool("json") {
		return r.writeJSON(books, cmd.Bool("pretty"))
	}

	counts := vm.CountByStatus()
	r.writePlainHeader(fmt.Sprintf("%s (%d)", vm.StatusLabel(vm.Filter()), len(books)))
	for _, opt := range models.StatusOptions[1:] {
		r.writePlain("%s %s: %d  ", opt.Icon, opt.Label, counts[opt.Value])
	}
	r.writePlain("\n\n")

	if len(books) == 0 {
		return r.writePlain("No books found\n")
	}
	for _, b := range books {
		r.writePlain("%-12s %-15s %s by %s\n", b.ID, b.Status.Label(), b.Title, b.AuthorLine())
	}
	return nil
}

// BooksStatus moves a book to another status shelf.
func (r *Runner) BooksStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}
	status, err := models.ParseStatus(cmd.StringArg("status"))
	if err != nil || !status.IsValid() {
		return fmt.Errorf("%w: status must be one of TO_READ, READING, COMPLETED, DNF", shared.ErrInvalidArgument)
	}

	vm := viewmodels.NewBookListViewModel(r.books, nil, r.logger)
	if err := vm.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to update book status: %w", err)
	}

	r.logger.Info("status updated", "book", id, "status", status)
	return r.writePlain("✓ Moved %s to %s\n", id, status.Label())
}

// BooksRemove deletes a book after confirmation.
func (r *Runner) BooksRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}

	vm, err := r.loadLibrary(ctx, r.confirmer(cmd.Bool("yes")))
	if err != nil {
		return err
	}
	book, err := r.findBook(vm, id)
	if err != nil {
		return err
	}

	if err := vm.Remove(ctx, id); err != nil {
		if errors.Is(err, shared.ErrCancelled) {
			return r.writePlain("Cancelled\n")
		}
		return fmt.Errorf("failed to remove book: %w", err)
	}

	return r.writePlain("✓ Removed %s\n", book.Title)
}

// BooksShow prints one book, rendering its description as markdown.
func (r *Runner) BooksShow(ctx context.Context, cmd *cli.Command) error {
	vm, err := r.loadLibrary(ctx, nil)
	if err != nil {
		return err
	}
	book, err := r.findBook(vm, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(book, true)
	}
	return r.writePlain("%s\n", formatter.RenderDescription(formatter.BookMarkdown(book), int(cmd.Int("width"))))
}

// BooksOpen opens the catalog page of a book in the browser.
func (r *Runner) BooksOpen(ctx context.Context, cmd *cli.Command) error {
	vm, err := r.loadLibrary(ctx, nil)
	if err != nil {
		return err
	}
	book, err := r.findBook(vm, cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if book.GoogleBookID == "" {
		return fmt.Errorf("%w: %s has no catalog id", shared.ErrInvalidArgument, book.Title)
	}

	url := shared.BookPageURL(r.config.Catalog.BookPageURL, book.GoogleBookID)
	r.logger.Info("opening book page", "url", url)
	if err := shared.OpenBrowser(url); err != nil {
		r.writePlain("Open this URL in your browser:\n%s\n", url)
		return err
	}
	return nil
}

// BooksExport writes the library to disk, one file per status shelf.
func (r *Runner) BooksExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		Covers:     cmd.Bool("covers"),
		NumWorkers: int(cmd.Int("workers")),
	}

	r.logger.Info("starting export", "format", format, "dir", opts.OutputDir, "covers", opts.Covers)

	exporter := tasks.NewLibraryExporter(r.books, r.httpClient, r.logger)
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchLibrary:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.DownloadCovers:
				r.writePlain("   🖼  %s\n", update.Message)
			case tasks.WriteShelves:
				r.writePlain("📝 %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("📦 %s\n", update.Message)
			}
		}
	}()

	result, err := exporter.Export(ctx, progressCh, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Books: %d\n", result.TotalBooks)
	r.writePlain("Format: %s\n", result.Format)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	if opts.Covers {
		r.writePlain("Covers: %d downloaded, %d failed\n", result.CoversDownloaded, result.CoverFailures)
	}
	for _, s := range result.Shelves {
		if s.Success {
			r.writePlain("  ✓ %s (%d) %s\n", s.Label, s.Count, s.File)
		} else {
			r.writePlain("  ✗ %s: %s\n", s.Label, s.Error)
		}
	}

	if n := result.Failed(); n > 0 {
		return fmt.Errorf("failed to write %d shelves", n)
	}
	return nil
}
