package models

import (
	"fmt"
	"slices"
	"strings"
)

// Status represents the reading status of a book
type Status string

const (
	StatusAll       Status = "ALL" // virtual filter value, never stored
	StatusToRead    Status = "TO_READ"
	StatusReading   Status = "READING"
	StatusCompleted Status = "COMPLETED"
	StatusDNF       Status = "DNF" // Did Not Finish
)

// StatusOption describes a status for filter tabs and pickers.
type StatusOption struct {
	Value Status
	Label string
	Icon  string
}

// StatusOptions lists the fixed status taxonomy in display order, starting with [StatusAll].
var StatusOptions = []StatusOption{
	{Value: StatusAll, Label: "All Books", Icon: "📚"},
	{Value: StatusToRead, Label: "To Read", Icon: "🔖"},
	{Value: StatusReading, Label: "Reading", Icon: "📖"},
	{Value: StatusCompleted, Label: "Completed", Icon: "✓"},
	{Value: StatusDNF, Label: "Did Not Finish", Icon: "✗"},
}

// BookStatuses lists the statuses a stored book can have.
func BookStatuses() []Status {
	return []Status{StatusToRead, StatusReading, StatusCompleted, StatusDNF}
}

// IsValid checks if the status is one a book can be stored with
func (s Status) IsValid() bool {
	switch s {
	case StatusToRead, StatusReading, StatusCompleted, StatusDNF:
		return true
	default:
		return false
	}
}

// IsFilter reports whether s can be used as a list filter (any book status or [StatusAll]).
func (s Status) IsFilter() bool {
	return s == StatusAll || s.IsValid()
}

// Label returns the display label, or the raw value for unknown statuses.
func (s Status) Label() string {
	for _, opt := range StatusOptions {
		if opt.Value == s {
			return opt.Label
		}
	}
	return string(s)
}

// ParseStatus accepts values like "reading", "to-read" or "TO_READ".
func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(v), "-", "_")))
	if !s.IsFilter() {
		return "", fmt.Errorf("unknown status %q", v)
	}
	return s, nil
}

// Book represents an entry in the user's library
type Book struct {
	ID           string   `json:"id" yaml:"id"`
	GoogleBookID string   `json:"googleBookId,omitempty" yaml:"google_book_id,omitempty"`
	Title        string   `json:"title" yaml:"title"`
	Authors      []string `json:"authors" yaml:"authors"`
	Categories   []string `json:"categories" yaml:"categories"`
	Description  string   `json:"description" yaml:"description"`
	ImageURL     string   `json:"imageURL" yaml:"image_url"`
	Status       Status   `json:"status" yaml:"status"`
}

// WithStatus returns a copy of b with the given status; b itself is not modified.
func (b Book) WithStatus(status Status) Book {
	next := b
	next.Authors = slices.Clone(b.Authors)
	next.Categories = slices.Clone(b.Categories)
	next.Status = status
	return next
}

// AuthorLine joins the authors for display.
func (b Book) AuthorLine() string {
	if len(b.Authors) == 0 {
		return "Unknown author"
	}
	return strings.Join(b.Authors, ", ")
}

// NewBook is the payload for adding a catalog volume to the library.
type NewBook struct {
	GoogleBookID string   `json:"googleBookId"`
	Title        string   `json:"title"`
	Authors      []string `json:"authors"`
	Description  string   `json:"description"`
	Categories   []string `json:"categories"`
	ImageURL     string   `json:"imageURL"`
	Status       Status   `json:"status"`
}
