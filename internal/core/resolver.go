package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// trackPathSegment marks the track id inside a catalog URL path,
// e.g. https://music.example/album/111/track/12345
const trackPathSegment = "track"

// Resolver turns user input into track candidates or track ids.
type Resolver struct {
	searchLimit int
}

// NewResolver creates a resolver that truncates search results to limit.
func NewResolver(limit int) *Resolver {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &Resolver{searchLimit: limit}
}

// SearchTracks searches the catalog for free-text input and returns up to
// the configured limit of candidates in the catalog's relevance order.
// An empty slice with a nil error means the catalog had no matches; a
// non-nil error means the search call itself failed. The two outcomes are
// deliberately distinct so the adapter can word them differently.
func (r *Resolver) SearchTracks(ctx context.Context, client CatalogClient, query string) ([]Track, error) {
	tracks, err := client.SearchTracks(ctx, query, r.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}

	if len(tracks) > r.searchLimit {
		tracks = tracks[:r.searchLimit]
	}
	return tracks, nil
}

// ExtractTrackID pulls the track id out of a catalog URL. The query string
// is stripped first; the id is the path component immediately following the
// track segment marker. Album links that embed a track segment resolve to
// that track; album-only links carry no track id and are rejected as
// unsupported rather than resolved to the album's contents.
func (r *Resolver) ExtractTrackID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if idx := strings.Index(rawURL, "?"); idx != -1 {
		rawURL = rawURL[:idx]
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedLink, err)
	}

	pathParts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range pathParts {
		if part == trackPathSegment && i+1 < len(pathParts) {
			if id := pathParts[i+1]; id != "" {
				return id, nil
			}
		}
	}

	return "", ErrUnsupportedLink
}
