package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/shelf/internal/models"
)

var (
	_ list.Item = bookItem{}
	_ list.Item = resultItem{}
)

// bookItem wraps [models.Book] to implement [list.Item].
type bookItem struct {
	book models.Book
}

func (i bookItem) FilterValue() string { return i.book.Title }
func (i bookItem) Title() string       { return i.book.Title }
func (i bookItem) Description() string {
	return fmt.Sprintf("%s • %s", i.book.AuthorLine(), i.book.Status.Label())
}

// resultItem wraps [models.SearchResult] to implement [list.Item].
type resultItem struct {
	result models.SearchResult
	added  bool
}

func (i resultItem) FilterValue() string { return i.result.Title }
func (i resultItem) Title() string {
	if i.added {
		return "✓ " + i.result.Title
	}
	return i.result.Title
}
func (i resultItem) Description() string {
	desc := "Unknown author"
	if len(i.result.Authors) > 0 {
		desc = strings.Join(i.result.Authors, ", ")
	}
	if len(i.result.Categories) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.result.Categories, ", "))
	}
	return desc
}

func bookItems(books []models.Book) []list.Item {
	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = bookItem{book: b}
	}
	return items
}

func resultItems(results []models.SearchResult, isAdded func(string) bool) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r, added: isAdded(r.ID)}
	}
	return items
}
