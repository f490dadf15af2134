package providers

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCleanStrings(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"trim and dedupe", []string{" Frank Herbert", "Frank Herbert ", ""}, []string{"Frank Herbert"}},
		{"keeps order", []string{"b", "a", "b"}, []string{"b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanStrings(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestJoinTitle(t *testing.T) {
	if got := JoinTitle("Dune", "Deluxe Edition"); got != "Dune: Deluxe Edition" {
		t.Errorf("unexpected title %q", got)
	}
	if got := JoinTitle(" Dune ", ""); got != "Dune" {
		t.Errorf("unexpected title %q", got)
	}
	if got := JoinTitle("", "Orphan"); got != "" {
		t.Errorf("expected subtitle alone to be ignored, got %q", got)
	}
}

func TestNormalizeVolume_Idempotent(t *testing.T) {
	v := Volume{ID: "x", VolumeInfo: VolumeInfo{
		Title:      " Dune ",
		Authors:    []string{"A", "A"},
		ImageLinks: ImageLinks{Thumbnail: "http://covers/1.jpg"},
	}}

	once := NormalizeVolume(v)
	twice := NormalizeVolume(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("expected normalization to be idempotent\n%+v\n%+v", once, twice)
	}
	if once.ImageLinks.Thumbnail != "https://covers/1.jpg" {
		t.Errorf("expected https link, got %q", once.ImageLinks.Thumbnail)
	}
}

func TestDecodeItems(t *testing.T) {
	type item struct {
		Name string `json:"name"`
	}
	raw := []json.RawMessage{
		json.RawMessage(`{"name": "Dune"}`),
		json.RawMessage(`{"name": 7}`),
		json.RawMessage(`{"name": ""}`),
	}

	got := DecodeItems("test", raw, func(it item) Volume {
		return Volume{ID: it.Name, VolumeInfo: VolumeInfo{Title: it.Name}}
	})
	if len(got) != 1 || got[0].Title != "Dune" {
		t.Errorf("expected only the valid titled item, got %+v", got)
	}
}
