package models

import "strings"

// CatalogVolume is a catalog search hit as decoded from the backend. Optional fields are left empty.
type CatalogVolume struct {
	ID          string
	Title       string
	Authors     []string
	Categories  []string
	Description string
	ImageURL    string
}

// SearchResult is a catalog volume shaped for display.
type SearchResult struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Categories  []string `json:"categories"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageURL"`
}

// NewSearchResult fills defaults: empty (non-nil) author and category lists, placeholder cover when missing.
func NewSearchResult(v CatalogVolume, placeholderCover string) SearchResult {
	r := SearchResult{
		ID:          v.ID,
		Title:       v.Title,
		Authors:     []string{},
		Categories:  []string{},
		Description: v.Description,
		ImageURL:    v.ImageURL,
	}
	if v.Authors != nil {
		r.Authors = append(r.Authors, v.Authors...)
	}
	if v.Categories != nil {
		r.Categories = append(r.Categories, v.Categories...)
	}
	if strings.TrimSpace(r.ImageURL) == "" {
		r.ImageURL = placeholderCover
	}
	return r
}

// ToNewBook converts r into a library entry payload with the given status.
func (r SearchResult) ToNewBook(status Status) NewBook {
	return NewBook{
		GoogleBookID: r.ID,
		Title:        r.Title,
		Authors:      r.Authors,
		Description:  r.Description,
		Categories:   r.Categories,
		ImageURL:     r.ImageURL,
		Status:       status,
	}
}
