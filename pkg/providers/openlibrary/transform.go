package openlibrary

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"bookproxy/pkg/providers"
)

// maxCategories caps the subject list; Open Library works often carry
// hundreds of subjects.
const maxCategories = 10

// searchResponse is the /search.json envelope.
type searchResponse struct {
	NumFound int               `json:"numFound"`
	Docs     []json.RawMessage `json:"docs"`
}

type searchDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	Subtitle            string   `json:"subtitle"`
	AuthorName          []string `json:"author_name"`
	Publisher           []string `json:"publisher"`
	FirstPublishYear    int      `json:"first_publish_year"`
	PublishDate         []string `json:"publish_date"`
	ISBN                []string `json:"isbn"`
	CoverI              int      `json:"cover_i"`
	Subject             []string `json:"subject"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
	Language            []string `json:"language"`
	FirstSentence       []string `json:"first_sentence"`
}

// languageCodes maps the MARC codes Open Library uses to ISO 639-1.
var languageCodes = map[string]string{
	"eng": "en", "fre": "fr", "ger": "de", "spa": "es", "ita": "it",
	"por": "pt", "dut": "nl", "rus": "ru", "jpn": "ja", "chi": "zh",
	"ara": "ar", "swe": "sv", "pol": "pl", "kor": "ko", "tur": "tr",
}

// marcCode returns the MARC code for an ISO 639-1 code, or "" if unknown.
func marcCode(iso string) string {
	code, _ := lo.FindKey(languageCodes, iso)
	return code
}

func transformSearch(name string, body []byte, preferISBN string) (*providers.Result, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	volumes := providers.DecodeItems(name, resp.Docs, func(doc searchDoc) providers.Volume {
		return toVolume(doc, preferISBN)
	})

	total := resp.NumFound
	if total < len(volumes) {
		total = len(volumes)
	}
	if len(volumes) == 0 {
		total = 0
	}

	return &providers.Result{Provider: name, TotalItems: total, Volumes: volumes}, nil
}

func toVolume(doc searchDoc, preferISBN string) providers.Volume {
	id := strings.TrimPrefix(doc.Key, "/works/")

	publishedDate := ""
	if doc.FirstPublishYear > 0 {
		publishedDate = strconv.Itoa(doc.FirstPublishYear)
	} else if len(doc.PublishDate) > 0 {
		publishedDate = doc.PublishDate[0]
	}

	language := ""
	if len(doc.Language) > 0 {
		language = doc.Language[0]
		if iso, ok := languageCodes[language]; ok {
			language = iso
		}
	}

	v := providers.Volume{
		ID: id,
		VolumeInfo: providers.VolumeInfo{
			Title:               providers.JoinTitle(doc.Title, doc.Subtitle),
			Authors:             doc.AuthorName,
			Publisher:           lo.FirstOrEmpty(doc.Publisher),
			PublishedDate:       publishedDate,
			Description:         lo.FirstOrEmpty(doc.FirstSentence),
			IndustryIdentifiers: pickISBNs(doc.ISBN, preferISBN),
			PageCount:           doc.NumberOfPagesMedian,
			Categories:          lo.Slice(providers.CleanStrings(doc.Subject), 0, maxCategories),
			Language:            language,
		},
	}

	if doc.CoverI > 0 {
		v.ImageLinks = providers.ImageLinks{
			SmallThumbnail: fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-S.jpg", doc.CoverI),
			Thumbnail:      fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", doc.CoverI),
		}
	}
	if doc.Key != "" {
		v.InfoLink = "https://openlibrary.org" + doc.Key
	}
	return v
}

// pickISBNs selects one ISBN-13 and one ISBN-10 from a work's edition
// list. When prefer is among them it wins so ISBN lookups echo the
// requested edition.
func pickISBNs(isbns []string, prefer string) []providers.IndustryIdentifier {
	var isbn10, isbn13 string

	if prefer != "" && lo.Contains(isbns, prefer) {
		if len(prefer) == 13 {
			isbn13 = prefer
		} else if len(prefer) == 10 {
			isbn10 = prefer
		}
	}

	for _, isbn := range isbns {
		switch {
		case len(isbn) == 13 && isbn13 == "":
			isbn13 = isbn
		case len(isbn) == 10 && isbn10 == "":
			isbn10 = isbn
		}
	}

	return providers.ISBNIdentifiers(isbn10, isbn13)
}
