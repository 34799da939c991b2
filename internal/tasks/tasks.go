package tasks

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// LibraryLister fetches the user's books. [services.BookService] satisfies it.
type LibraryLister interface {
	Books(ctx context.Context) ([]models.Book, error)
}

// ExportOpts contains configuration for library exports.
type ExportOpts struct {
	Format     formatter.Format // Export format: json, csv, markdown, txt, yaml
	OutputDir  string           // Output directory (default: shelf_export_{epoch})
	Covers     bool             // Download cover images into {OutputDir}/covers
	NumWorkers int              // Concurrent workers (default: 5, max: 10)
	RateLimit  float64          // Cover downloads per second (default: 5)
}

// ShelfResult describes one written shelf.
type ShelfResult struct {
	Status  models.Status `json:"status"`
	Label   string        `json:"label"`
	Count   int           `json:"count"`
	File    string        `json:"file,omitempty"`
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
}

// ExportResult summarizes an export. It is also the manifest's content.
type ExportResult struct {
	ExportedAt       time.Time     `json:"exported_at"`
	Format           string        `json:"format"`
	TotalBooks       int           `json:"total_books"`
	Shelves          []ShelfResult `json:"shelves"`
	CoversDownloaded int           `json:"covers_downloaded"`
	CoverFailures    int           `json:"cover_failures"`
	OutputDirectory  string        `json:"output_directory"`
	ManifestPath     string        `json:"-"`
}

// Failed counts shelves that could not be written.
func (r *ExportResult) Failed() int {
	n := 0
	for _, s := range r.Shelves {
		if !s.Success {
			n++
		}
	}
	return n
}

// LibraryExporter writes the library to disk.
type LibraryExporter struct {
	library    LibraryLister
	httpClient *http.Client
	logger     *log.Logger
}

// NewLibraryExporter creates an exporter. A nil httpClient uses a client with a 30 second timeout for covers.
func NewLibraryExporter(library LibraryLister, httpClient *http.Client, logger *log.Logger) *LibraryExporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LibraryExporter{library: library, httpClient: httpClient, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *LibraryExporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

type coverJob struct {
	book models.Book
	path string
}

type coverResult struct {
	book models.Book
	path string
	err  error
}

// Export fetches the library and writes one file per shelf plus a manifest.
func (e *LibraryExporter) Export(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: library not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("shelf_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	e.sendProgress(progress, fetchingLibraryUpdate())
	books, err := e.library.Books(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch library: %w", err)
	}
	e.sendProgress(progress, fetchedLibraryUpdate(len(books)))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		ExportedAt:      time.Now().UTC(),
		Format:          string(opts.Format),
		TotalBooks:      len(books),
		Shelves:         []ShelfResult{},
		OutputDirectory: opts.OutputDir,
	}

	covers := map[string]string{}
	if opts.Covers {
		covers = e.downloadCovers(ctx, progress, books, opts, result)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	shelves := formatter.GroupByStatus(books)
	for i, shelf := range shelves {
		res := ShelfResult{Status: shelf.Status, Label: shelf.Label, Count: len(shelf.Books)}
		path, err := formatter.WriteShelf(shelf, opts.OutputDir, opts.Format, covers)
		if err != nil {
			res.Error = err.Error()
			e.logger.Warn("shelf export failed", "shelf", shelf.Status, "error", err)
			e.sendProgress(progress, shelfFailedUpdate(i+1, len(shelves), res))
		} else {
			res.File = path
			res.Success = true
			e.sendProgress(progress, shelfWrittenUpdate(i+1, len(shelves), res))
		}
		result.Shelves = append(result.Shelves, res)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(progress, manifestUpdate(manifestPath))
	return result, nil
}

// downloadCovers fetches covers with a worker pool and returns book IDs mapped to paths relative to OutputDir.
func (e *LibraryExporter) downloadCovers(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	books []models.Book,
	opts ExportOpts,
	result *ExportResult,
) map[string]string {
	covers := map[string]string{}

	pending := make([]coverJob, 0, len(books))
	seen := map[string]bool{}
	for _, b := range books {
		if !isRemoteImage(b.ImageURL) {
			continue
		}
		if b.ID == "" || seen[b.ID] {
			e.logger.Warn("skipping cover without a unique book id", "title", b.Title, "id", b.ID)
			continue
		}
		seen[b.ID] = true
		pending = append(pending, coverJob{book: b, path: filepath.Join("covers", coverFilename(b.ID))})
	}
	if len(pending) == 0 {
		return covers
	}

	if err := os.MkdirAll(filepath.Join(opts.OutputDir, "covers"), 0755); err != nil {
		e.logger.Warn("failed to create covers directory", "error", err)
		result.CoverFailures = len(pending)
		return covers
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan coverJob, len(pending))
	results := make(chan coverResult, len(pending))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.coverWorker(ctx, &wg, limiter, opts.OutputDir, jobs, results)
	}

	for _, job := range pending {
		jobs <- job
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.err != nil {
			result.CoverFailures++
			e.sendProgress(progress, coverFailedUpdate(completed, len(pending), res.book.Title, res.err))
			continue
		}
		result.CoversDownloaded++
		covers[res.book.ID] = filepath.ToSlash(res.path)
		e.sendProgress(progress, coverDownloadedUpdate(completed, len(pending), res.book.Title))
	}
	return covers
}

// coverWorker downloads covers from the jobs channel until it closes or ctx ends.
func (e *LibraryExporter) coverWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	outputDir string,
	jobs <-chan coverJob,
	results chan<- coverResult,
) {
	defer wg.Done()

	for job := range jobs {
		res := coverResult{book: job.book, path: job.path}
		if err := limiter.Wait(ctx); err != nil {
			res.err = err
			results <- res
			continue
		}

		data, err := formatter.DownloadImage(ctx, e.httpClient, job.book.ImageURL)
		if err == nil {
			err = os.WriteFile(filepath.Join(outputDir, job.path), data, 0644)
		}
		res.err = err
		results <- res
	}
}

func isRemoteImage(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// coverFilename maps a book id to a file name. Ids that need rewriting get a suffix derived
// from the raw id so that "a.b" and "a_b" stay distinct.
func coverFilename(id string) string {
	name := sanitizeFilename(id)
	if name != id {
		name += "-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()[:8]
	}
	return name + ".jpg"
}

func sanitizeFilename(v string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, v)
}
