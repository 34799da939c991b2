package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// catalogImageLinks mirrors the catalog's imageLinks object.
type catalogImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

type catalogVolumeInfo struct {
	Title       string             `json:"title"`
	Authors     []string           `json:"authors"`
	Categories  []string           `json:"categories"`
	Description string             `json:"description"`
	ImageLinks  *catalogImageLinks `json:"imageLinks"`
}

// catalogItem decodes both the flat result shape and the items[].volumeInfo shape.
type catalogItem struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Authors     []string           `json:"authors"`
	Categories  []string           `json:"categories"`
	Description string             `json:"description"`
	ImageURL    string             `json:"imageURL"`
	VolumeInfo  *catalogVolumeInfo `json:"volumeInfo"`
}

func (i catalogItem) toModel() models.CatalogVolume {
	if i.VolumeInfo == nil {
		return models.CatalogVolume{
			ID:          i.ID,
			Title:       i.Title,
			Authors:     i.Authors,
			Categories:  i.Categories,
			Description: i.Description,
			ImageURL:    i.ImageURL,
		}
	}

	v := models.CatalogVolume{
		ID:          i.ID,
		Title:       i.VolumeInfo.Title,
		Authors:     i.VolumeInfo.Authors,
		Categories:  i.VolumeInfo.Categories,
		Description: i.VolumeInfo.Description,
	}
	if links := i.VolumeInfo.ImageLinks; links != nil {
		v.ImageURL = links.Thumbnail
		if v.ImageURL == "" {
			v.ImageURL = links.SmallThumbnail
		}
	}
	return v
}

// decodeCatalog accepts a flat list, an {items: [...]} object, or an empty payload.
func decodeCatalog(data json.RawMessage) ([]models.CatalogVolume, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return []models.CatalogVolume{}, nil
	}

	var items []catalogItem
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: failed to decode search results: %v", shared.ErrAPIRequest, err)
		}
	case '{':
		var wrapper struct {
			Items []catalogItem `json:"items"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: failed to decode search results: %v", shared.ErrAPIRequest, err)
		}
		items = wrapper.Items
	default:
		return nil, fmt.Errorf("%w: unexpected search response", shared.ErrAPIRequest)
	}

	volumes := make([]models.CatalogVolume, 0, len(items))
	for _, item := range items {
		volumes = append(volumes, item.toModel())
	}
	return volumes, nil
}
