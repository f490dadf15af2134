package types

import "bookproxy/pkg/providers"

// Response kinds, matching the Google Books API so existing clients can
// decode proxy responses unchanged.
const (
	KindVolumes = "books#volumes"
	KindVolume  = "books#volume"
)

// SearchResponse is the body of a successful GET /search.
type SearchResponse struct {
	Kind       string       `json:"kind"`
	TotalItems int          `json:"totalItems"`
	Provider   string       `json:"provider"`
	Cached     bool         `json:"cached"`
	Items      []VolumeItem `json:"items"`
	RequestID  string       `json:"requestId"`
}

// VolumeItem is one volume in a search response.
type VolumeItem struct {
	ID         string               `json:"id"`
	VolumeInfo providers.VolumeInfo `json:"volumeInfo"`
}

// VolumeResponse is the body of a successful GET /isbn.
type VolumeResponse struct {
	Kind       string               `json:"kind"`
	Provider   string               `json:"provider"`
	Cached     bool                 `json:"cached"`
	ID         string               `json:"id"`
	VolumeInfo providers.VolumeInfo `json:"volumeInfo"`
	RequestID  string               `json:"requestId"`
}

// NewSearchResponse builds a search body from a provider result.
func NewSearchResponse(result *providers.Result, cached bool, requestID string) *SearchResponse {
	items := make([]VolumeItem, 0, len(result.Volumes))
	for _, v := range result.Volumes {
		items = append(items, VolumeItem{ID: v.ID, VolumeInfo: v.VolumeInfo})
	}

	total := result.TotalItems
	if total < len(items) {
		total = len(items)
	}

	return &SearchResponse{
		Kind:       KindVolumes,
		TotalItems: total,
		Provider:   result.Provider,
		Cached:     cached,
		Items:      items,
		RequestID:  requestID,
	}
}

// NewVolumeResponse builds an ISBN body from the first volume of a
// non-empty provider result.
func NewVolumeResponse(result *providers.Result, cached bool, requestID string) *VolumeResponse {
	v := result.Volumes[0]
	return &VolumeResponse{
		Kind:       KindVolume,
		Provider:   result.Provider,
		Cached:     cached,
		ID:         v.ID,
		VolumeInfo: v.VolumeInfo,
		RequestID:  requestID,
	}
}
