package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/viewmodels"
	"github.com/urfave/cli/v3"
)

// Search queries the catalog and optionally adds results to the library.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	toAdd := cmd.StringSlice("add")
	if len(toAdd) > 0 {
		if err := r.requireSession(); err != nil {
			return err
		}
	}

	vm := viewmodels.NewSearchViewModel(ctx, r.books, r.store, r.notifier(), nil, viewmodels.SearchOpts{
		PlaceholderCover: r.config.Catalog.PlaceholderCover,
		ResultLimit:      r.config.Catalog.ResultLimit,
	}, r.logger)
	defer vm.Release()

	r.store.ToggleSearch(true)
	defer vm.Close()

	r.logger.Info("searching catalog", "query", query)
	if err := vm.Search(ctx, query); err != nil {
		return fmt.Errorf("%s: %w", viewmodels.MsgSearchFailed, err)
	}

	results := vm.Results()
	for _, id := range toAdd {
		i := slices.IndexFunc(results, func(res models.SearchResult) bool { return res.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: %s is not in the results", shared.ErrInvalidArgument, id)
		}
		if err := vm.AddBook(ctx, results[i]); err != nil {
			return fmt.Errorf("%s: %w", viewmodels.MsgAddFailed, err)
		}
		r.writePlain("✓ Added %s\n", results[i].Title)
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}
	if len(toAdd) > 0 {
		return nil
	}

	if len(results) == 0 {
		return r.writePlain("No results for %q\n", query)
	}

	r.writePlainHeader(fmt.Sprintf("Results for %q", query))
	for i, res := range results {
		authors := "Unknown author"
		if len(res.Authors) > 0 {
			authors = strings.Join(res.Authors, ", ")
		}
		r.writePlain("%2d. %s by %s\n", i+1, res.Title, authors)
		r.writePlain("    id: %s\n", res.ID)
	}
	return r.writePlain("\nAdd with: shelf search %q --add <id>\n", query)
}
