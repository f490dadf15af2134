package providers

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

// CleanStrings trims every element, drops empties and duplicates, and
// always returns a non-nil slice. Order of first occurrence is kept.
func CleanStrings(values []string) []string {
	cleaned := lo.Uniq(lo.Compact(lo.Map(values, func(s string, _ int) string {
		return strings.TrimSpace(s)
	})))
	if cleaned == nil {
		return []string{}
	}
	return cleaned
}

// SecureURL upgrades http:// links to https://. Other values pass through.
func SecureURL(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// JoinTitle combines a title and optional subtitle as "Title: Subtitle".
func JoinTitle(title, subtitle string) string {
	title = strings.TrimSpace(title)
	subtitle = strings.TrimSpace(subtitle)
	if title == "" || subtitle == "" {
		return title
	}
	return title + ": " + subtitle
}

// ISBNIdentifiers builds the identifier list from optional ISBN-10 and
// ISBN-13 values, ISBN-13 first.
func ISBNIdentifiers(isbn10, isbn13 string) []IndustryIdentifier {
	ids := make([]IndustryIdentifier, 0, 2)
	if isbn13 = strings.TrimSpace(isbn13); isbn13 != "" {
		ids = append(ids, IndustryIdentifier{Type: IdentifierISBN13, Identifier: isbn13})
	}
	if isbn10 = strings.TrimSpace(isbn10); isbn10 != "" {
		ids = append(ids, IndustryIdentifier{Type: IdentifierISBN10, Identifier: isbn10})
	}
	return ids
}

// NormalizeVolume fills nil slices so the JSON form never contains null.
func NormalizeVolume(v Volume) Volume {
	v.Title = strings.TrimSpace(v.Title)
	v.Authors = CleanStrings(v.Authors)
	v.Categories = CleanStrings(v.Categories)
	if v.IndustryIdentifiers == nil {
		v.IndustryIdentifiers = []IndustryIdentifier{}
	}
	v.ImageLinks.Thumbnail = SecureURL(v.ImageLinks.Thumbnail)
	v.ImageLinks.SmallThumbnail = SecureURL(v.ImageLinks.SmallThumbnail)
	v.PreviewLink = SecureURL(v.PreviewLink)
	v.InfoLink = SecureURL(v.InfoLink)
	return v
}

// DecodeItems decodes each raw item on its own and converts it with
// convert. Items that fail to decode or convert to a volume without a
// title are dropped with a warning; the rest of the page survives.
func DecodeItems[T any](provider string, items []json.RawMessage, convert func(T) Volume) []Volume {
	volumes := make([]Volume, 0, len(items))
	for i, raw := range items {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			slog.Warn("dropping malformed provider item",
				"provider", provider,
				"index", i,
				"error", err,
			)
			continue
		}

		v := NormalizeVolume(convert(item))
		if v.Title == "" {
			slog.Warn("dropping provider item without title",
				"provider", provider,
				"index", i,
				"id", v.ID,
			)
			continue
		}
		volumes = append(volumes, v)
	}
	return volumes
}
