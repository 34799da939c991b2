package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/repositories"
	"github.com/desertthunder/shelf/internal/services"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/store"
	"github.com/desertthunder/shelf/internal/viewmodels"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	storage     repositories.Storage
	client      *services.Client
	books       *services.BookService
	store       *store.Store
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	interactive bool
	reloads     int
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Storage     repositories.Storage
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	Interactive bool // prompt with huh forms when arguments are missing
}

// NewRunner creates a new Runner with the provided configuration.
//
// Without storage the runner can only run commands that do not need a session, such as setup.
func NewRunner(opts RunnerOpts) (*Runner, error) {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		storage:     opts.Storage,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		interactive: opts.Interactive,
	}
	if opts.Storage == nil {
		return r, nil
	}

	if err := r.connect(opts.Storage, store.ReloadFunc(r.reload)); err != nil {
		return nil, err
	}
	return r, nil
}

// connect builds the backend client and the session store on top of storage.
// Reconnecting replaces both, so only one store is live at a time.
func (r *Runner) connect(storage repositories.Storage, reloader store.Reloader) error {
	r.storage = storage
	r.client = services.NewClient(services.ClientOpts{
		BaseURL:           r.config.API.BaseURL,
		HTTPClient:        r.httpClient,
		Tokens:            storage,
		Timeout:           r.config.API.Timeout(),
		RequestsPerSecond: r.config.API.RequestsPerSecond,
		Logger:            r.logger,
	})
	r.books = services.NewBookService(r.client)

	s, err := store.New(storage, reloader, r.logger)
	if err != nil {
		return err
	}
	r.store = s
	return nil
}

// reload ends the command once the session changes. One-shot commands have no state to rebuild.
func (r *Runner) reload() {
	r.reloads++
	r.logger.Debug("session changed")
}

// SetLogger replaces the logger used by the runner.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the storage.
func (r *Runner) Close() error {
	if r.storage == nil {
		return nil
	}
	return r.storage.Close()
}

func (r *Runner) requireStore() error {
	if r.store == nil {
		return fmt.Errorf("%w: storage not initialized, run 'shelf setup'", shared.ErrStorage)
	}
	return nil
}

func (r *Runner) requireSession() error {
	if err := r.requireStore(); err != nil {
		return err
	}
	if !r.store.IsAuthenticated() {
		return fmt.Errorf("%w: run 'shelf auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

// notifier logs view model notifications.
func (r *Runner) notifier() viewmodels.Notifier {
	return viewmodels.NotifyFunc(func(n models.Notification) {
		switch n.Kind {
		case models.NotifyError:
			r.logger.Error(n.Message)
		default:
			r.logger.Info(n.Message)
		}
	})
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, booksCommand, searchCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
