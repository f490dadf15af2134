package googlebooks

import (
	"encoding/json"

	"bookproxy/pkg/providers"
)

// volumesResponse is the Google Books /volumes envelope. Items stay raw so
// one malformed volume cannot fail the page.
type volumesResponse struct {
	Kind       string            `json:"kind"`
	TotalItems int               `json:"totalItems"`
	Items      []json.RawMessage `json:"items"`
}

type googleVolume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
	PageCount           int                  `json:"pageCount"`
	Categories          []string             `json:"categories"`
	ImageLinks          imageLinks           `json:"imageLinks"`
	Language            string               `json:"language"`
	PreviewLink         string               `json:"previewLink"`
	InfoLink            string               `json:"infoLink"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// transformResponse normalizes a /volumes payload.
func transformResponse(name string, body []byte) (*providers.Result, error) {
	var resp volumesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	volumes := providers.DecodeItems(name, resp.Items, toVolume)

	total := resp.TotalItems
	if total < len(volumes) {
		total = len(volumes)
	}
	if len(volumes) == 0 {
		total = 0
	}

	return &providers.Result{
		Provider:   name,
		TotalItems: total,
		Volumes:    volumes,
	}, nil
}

func toVolume(item googleVolume) providers.Volume {
	info := item.VolumeInfo

	ids := make([]providers.IndustryIdentifier, 0, len(info.IndustryIdentifiers))
	for _, id := range info.IndustryIdentifiers {
		if id.Identifier == "" {
			continue
		}
		ids = append(ids, providers.IndustryIdentifier{Type: id.Type, Identifier: id.Identifier})
	}

	return providers.Volume{
		ID: item.ID,
		VolumeInfo: providers.VolumeInfo{
			Title:               providers.JoinTitle(info.Title, info.Subtitle),
			Authors:             info.Authors,
			Publisher:           info.Publisher,
			PublishedDate:       info.PublishedDate,
			Description:         info.Description,
			IndustryIdentifiers: ids,
			PageCount:           info.PageCount,
			Categories:          info.Categories,
			ImageLinks: providers.ImageLinks{
				SmallThumbnail: info.ImageLinks.SmallThumbnail,
				Thumbnail:      info.ImageLinks.Thumbnail,
			},
			Language:    info.Language,
			PreviewLink: info.PreviewLink,
			InfoLink:    info.InfoLink,
		},
	}
}
