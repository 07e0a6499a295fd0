package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeCatalog implements CatalogClient with canned responses.
type fakeCatalog struct {
	searchResult []Track
	searchErr    error
	searchLimit  int // records the limit passed to SearchTracks

	track    *Track
	trackErr error

	variants    []DownloadVariant
	variantsErr error

	downloadErr    error
	downloadCalled bool
	downloadPath   string
}

func (f *fakeCatalog) SearchTracks(_ context.Context, _ string, limit int) ([]Track, error) {
	f.searchLimit = limit
	return f.searchResult, f.searchErr
}

func (f *fakeCatalog) GetTrack(_ context.Context, _ string) (*Track, error) {
	return f.track, f.trackErr
}

func (f *fakeCatalog) DownloadInfo(_ context.Context, _ string) ([]DownloadVariant, error) {
	return f.variants, f.variantsErr
}

func (f *fakeCatalog) DownloadTrack(_ context.Context, _ string, _ DownloadVariant, destPath string) error {
	f.downloadCalled = true
	f.downloadPath = destPath
	return f.downloadErr
}

func makeTracks(n int) []Track {
	tracks := make([]Track, 0, n)
	for i := 0; i < n; i++ {
		tracks = append(tracks, Track{
			ID:       fmt.Sprintf("%d", i+1),
			Title:    fmt.Sprintf("Song %d", i+1),
			Artist:   "Artist",
			Duration: 3 * time.Minute,
		})
	}
	return tracks
}

func TestResolver_SearchTracks_TruncatesToLimit(t *testing.T) {
	resolver := NewResolver(6)
	client := &fakeCatalog{searchResult: makeTracks(10)}

	tracks, err := resolver.SearchTracks(context.Background(), client, "query")
	if err != nil {
		t.Fatalf("SearchTracks returned error: %v", err)
	}
	if len(tracks) != 6 {
		t.Errorf("len(tracks) = %d, want 6", len(tracks))
	}
	if client.searchLimit != 6 {
		t.Errorf("Limit passed to catalog = %d, want 6", client.searchLimit)
	}
	// Relevance order must be preserved
	if tracks[0].ID != "1" || tracks[5].ID != "6" {
		t.Errorf("Result order changed: first=%s last=%s", tracks[0].ID, tracks[5].ID)
	}
}

func TestResolver_SearchTracks_EmptyIsNotAnError(t *testing.T) {
	resolver := NewResolver(6)
	client := &fakeCatalog{searchResult: nil}

	tracks, err := resolver.SearchTracks(context.Background(), client, "nothing")
	if err != nil {
		t.Fatalf("No matches must not be an error, got: %v", err)
	}
	if len(tracks) != 0 {
		t.Errorf("len(tracks) = %d, want 0", len(tracks))
	}
}

func TestResolver_SearchTracks_TransportError(t *testing.T) {
	resolver := NewResolver(6)
	client := &fakeCatalog{searchErr: errors.New("connection refused")}

	tracks, err := resolver.SearchTracks(context.Background(), client, "query")
	if err == nil {
		t.Fatal("Transport failure must surface as an error")
	}
	if tracks != nil {
		t.Errorf("tracks = %v, want nil on error", tracks)
	}
}

func TestResolver_ExtractTrackID(t *testing.T) {
	resolver := NewResolver(6)

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "plain track url",
			url:  "https://music.example/track/12345",
			want: "12345",
		},
		{
			name: "query string stripped",
			url:  "https://music.example/track/12345?from=share&utm=x",
			want: "12345",
		},
		{
			name: "album url embedding a track",
			url:  "https://music.example/album/111/track/456",
			want: "456",
		},
		{
			name:    "album-only url",
			url:     "https://music.example/album/111",
			wantErr: true,
		},
		{
			name:    "no track segment",
			url:     "https://music.example/artist/42",
			wantErr: true,
		},
		{
			name:    "track segment at end of path",
			url:     "https://music.example/track/",
			wantErr: true,
		},
		{
			name:    "empty input",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.ExtractTrackID(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedLink) {
					t.Errorf("ExtractTrackID(%q) error = %v, want ErrUnsupportedLink", tt.url, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractTrackID(%q) returned error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ExtractTrackID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
