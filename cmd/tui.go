package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/tasks"
	"github.com/desertthunder/shelf/internal/ui"
	"github.com/desertthunder/shelf/internal/viewmodels"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(shared.ExpandPath(r.config.Log.File))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	bridge := ui.NewBridge()
	if err := r.connect(r.storage, bridge); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if q := cmd.String("search"); q != "" {
		r.store.SetSearchQuery(q)
	}

	search := viewmodels.NewSearchViewModel(ctx, r.books, r.store, bridge, bridge, viewmodels.SearchOpts{
		PlaceholderCover: r.config.Catalog.PlaceholderCover,
		ResultLimit:      r.config.Catalog.ResultLimit,
	}, r.logger)
	defer search.Release()

	model := ui.NewModel(ctx, ui.Deps{
		Store:        r.store,
		Auth:         viewmodels.NewAuthViewModel(r.books, r.store, bridge, r.logger),
		Books:        viewmodels.NewBookListViewModel(r.books, bridge, r.logger),
		Search:       search,
		Exporter:     tasks.NewLibraryExporter(r.books, r.httpClient, r.logger),
		Bridge:       bridge,
		BookPageURL:  r.config.Catalog.BookPageURL,
		ExportDir:    cmd.String("export-dir"),
		ExportFormat: format,
		Logger:       r.logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
