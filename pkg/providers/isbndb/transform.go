package isbndb

import (
	"encoding/json"
	"strings"

	"bookproxy/pkg/providers"
)

// searchResponse is the ISBNdb /books/{query} envelope.
type searchResponse struct {
	Total int               `json:"total"`
	Books []json.RawMessage `json:"books"`
}

// lookupResponse is the ISBNdb /book/{isbn} envelope.
type lookupResponse struct {
	Book json.RawMessage `json:"book"`
}

type book struct {
	Title         string   `json:"title"`
	TitleLong     string   `json:"title_long"`
	ISBN          string   `json:"isbn"`
	ISBN10        string   `json:"isbn10"`
	ISBN13        string   `json:"isbn13"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher"`
	DatePublished string   `json:"date_published"`
	Synopsis      string   `json:"synopsis"`
	Overview      string   `json:"overview"`
	Pages         int      `json:"pages"`
	Subjects      []string `json:"subjects"`
	Image         string   `json:"image"`
	Language      string   `json:"language"`
}

func transformSearch(name string, body []byte) (*providers.Result, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	volumes := providers.DecodeItems(name, resp.Books, toVolume)
	total := resp.Total
	if total < len(volumes) {
		total = len(volumes)
	}
	if len(volumes) == 0 {
		total = 0
	}

	return &providers.Result{Provider: name, TotalItems: total, Volumes: volumes}, nil
}

func transformLookup(name string, body []byte) (*providers.Result, error) {
	var resp lookupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if len(resp.Book) > 0 && string(resp.Book) != "null" {
		items = append(items, resp.Book)
	}

	volumes := providers.DecodeItems(name, items, toVolume)
	return &providers.Result{Provider: name, TotalItems: len(volumes), Volumes: volumes}, nil
}

func toVolume(b book) providers.Volume {
	isbn10 := b.ISBN10
	if isbn10 == "" && len(b.ISBN) == 10 {
		isbn10 = b.ISBN
	}
	isbn13 := b.ISBN13
	if isbn13 == "" && len(b.ISBN) == 13 {
		isbn13 = b.ISBN
	}

	id := isbn13
	if id == "" {
		id = isbn10
	}

	title := b.Title
	if title == "" {
		title = b.TitleLong
	}

	description := b.Synopsis
	if description == "" {
		description = b.Overview
	}

	v := providers.Volume{
		ID: id,
		VolumeInfo: providers.VolumeInfo{
			Title:               title,
			Authors:             b.Authors,
			Publisher:           b.Publisher,
			PublishedDate:       b.DatePublished,
			Description:         strings.TrimSpace(description),
			IndustryIdentifiers: providers.ISBNIdentifiers(isbn10, isbn13),
			PageCount:           b.Pages,
			Categories:          b.Subjects,
			ImageLinks: providers.ImageLinks{
				SmallThumbnail: b.Image,
				Thumbnail:      b.Image,
			},
			Language: b.Language,
		},
	}
	if id != "" {
		v.InfoLink = "https://isbndb.com/book/" + id
	}
	return v
}
