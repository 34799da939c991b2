// package formatter renders library shelves to export formats (CSV, Markdown, plain text, JSON, YAML)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"gopkg.in/yaml.v3"
)

// Format is an export file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatYAML     Format = "yaml"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText, FormatYAML}
}

// ParseFormat accepts a format name or a common alias ("md", "text", "yml").
func ParseFormat(v string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "json", "":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, v)
	}
}

// Extension returns the file extension, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Shelf is the set of books sharing a status.
type Shelf struct {
	Status models.Status `json:"status" yaml:"status"`
	Label  string        `json:"label" yaml:"label"`
	Books  []models.Book `json:"books" yaml:"books"`
}

// Slug returns a filename-safe name for the shelf, e.g. "to-read".
func (s Shelf) Slug() string {
	return strings.ToLower(strings.ReplaceAll(string(s.Status), "_", "-"))
}

// GroupByStatus splits books into one shelf per book status, in taxonomy order. Empty shelves are kept.
func GroupByStatus(books []models.Book) []Shelf {
	shelves := make([]Shelf, 0, len(models.BookStatuses()))
	for _, status := range models.BookStatuses() {
		shelf := Shelf{Status: status, Label: status.Label(), Books: []models.Book{}}
		for _, b := range books {
			if b.Status == status {
				shelf.Books = append(shelf.Books, b)
			}
		}
		shelves = append(shelves, shelf)
	}
	return shelves
}

// ExportToCSV converts books to CSV with columns: ID, Title, Authors, Categories, Status, Catalog ID, Image URL
func ExportToCSV(books []models.Book) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Authors", "Categories", "Status", "Catalog ID", "Image URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, book := range books {
		record := []string{
			book.ID,
			book.Title,
			strings.Join(book.Authors, "; "),
			strings.Join(book.Categories, "; "),
			string(book.Status),
			book.GoogleBookID,
			book.ImageURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a shelf as Markdown. covers maps book IDs to local image paths.
func ExportToMarkdown(shelf Shelf, covers map[string]string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", shelf.Label)
	fmt.Fprintf(&buf, "**Books**: %d\n\n", len(shelf.Books))

	for _, book := range shelf.Books {
		fmt.Fprintf(&buf, "## %s\n\n", book.Title)
		if cover, ok := covers[book.ID]; ok && cover != "" {
			fmt.Fprintf(&buf, "![Cover](%s)\n\n", cover)
		}
		fmt.Fprintf(&buf, "**Authors**: %s\n", book.AuthorLine())
		if len(book.Categories) > 0 {
			fmt.Fprintf(&buf, "**Categories**: %s\n", strings.Join(book.Categories, ", "))
		}
		buf.WriteString("\n")
		if book.Description != "" {
			fmt.Fprintf(&buf, "%s\n\n", book.Description)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders a shelf as a numbered list
func ExportToText(shelf Shelf) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Shelf: %s\n", shelf.Label)
	fmt.Fprintf(&buf, "Books: %d\n\n", len(shelf.Books))

	for i, book := range shelf.Books {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, book.AuthorLine(), book.Title)
	}

	return buf.Bytes(), nil
}

// ExportToYAML renders a shelf as YAML
func ExportToYAML(shelf Shelf) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(shelf); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// Render renders a shelf in the given format.
func Render(shelf Shelf, format Format, covers map[string]string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return shared.MarshalJSON(shelf, true)
	case FormatCSV:
		return ExportToCSV(shelf.Books)
	case FormatMarkdown:
		return ExportToMarkdown(shelf, covers)
	case FormatText:
		return ExportToText(shelf)
	case FormatYAML:
		return ExportToYAML(shelf)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteShelf renders a shelf into dir as {slug}.{ext} and returns the file path.
func WriteShelf(shelf Shelf, dir string, format Format, covers map[string]string) (string, error) {
	data, err := Render(shelf, format, covers)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, shelf.Slug()+"."+format.Extension())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return path, nil
}

// RenderDescription renders Markdown for the terminal at the given width.
// Rendering failures fall back to the raw text.
func RenderDescription(markdown string, width int) string {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// BookMarkdown describes a single book as Markdown, for detail views.
func BookMarkdown(book models.Book) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", book.Title)
	fmt.Fprintf(&b, "*%s*\n\n", book.AuthorLine())
	fmt.Fprintf(&b, "**Status**: %s\n\n", book.Status.Label())
	if len(book.Categories) > 0 {
		fmt.Fprintf(&b, "**Categories**: %s\n\n", strings.Join(book.Categories, ", "))
	}
	if book.Description != "" {
		b.WriteString(book.Description)
		b.WriteString("\n")
	}
	return b.String()
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}
