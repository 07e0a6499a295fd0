// Package catalog provides the REST client for the external music catalog:
// track search, metadata, download variants and audio download.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"tunegram/internal/core"
)

const (
	// DefaultTimeout covers search and metadata calls; downloads use the
	// context deadline of the caller on top of this
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies the bot to the catalog API
	DefaultUserAgent = "tunegram/1.0"
	// searchTypeTrack restricts search results to tracks
	searchTypeTrack = "track"
)

// Client is a thin façade over the catalog HTTP API. One authenticated and
// one anonymous instance live for the whole process; both are read-only
// credential holders and safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option is a functional option for configuring the catalog client.
type Option func(*Client)

// WithBaseURL sets a custom API base URL (useful for testing).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a catalog client. An empty token yields the anonymous
// client, which the catalog serves with preview-quality audio; a non-empty
// token authenticates requests via a static bearer credential.
func NewClient(cfg *core.CatalogConfig, token string, logger *zap.Logger, opts ...Option) *Client {
	httpClient := &http.Client{Timeout: DefaultTimeout}
	if token != "" {
		source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(context.Background(), source)
		httpClient.Timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  DefaultUserAgent,
		httpClient: httpClient,
		logger:     logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Wire types owned by the catalog API.

type wireArtist struct {
	Name string `json:"name"`
}

type wireAlbum struct {
	Title string `json:"title"`
}

type wireTrack struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Artists    []wireArtist `json:"artists"`
	Albums     []wireAlbum  `json:"albums"`
	DurationMs int64        `json:"duration_ms"`
}

type searchResponse struct {
	Tracks []wireTrack `json:"tracks"`
}

type wireVariant struct {
	Codec       string `json:"codec"`
	BitrateKbps int    `json:"bitrate_in_kbps"`
}

type downloadInfoResponse struct {
	Variants []wireVariant `json:"variants"`
}

// SearchTracks searches the catalog for tracks matching the query, in the
// catalog's relevance order, truncated to limit.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]core.Track, error) {
	params := url.Values{}
	params.Set("text", query)
	params.Set("type", searchTypeTrack)
	params.Set("limit", strconv.Itoa(limit))

	var resp searchResponse
	if err := c.getJSON(ctx, "/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	tracks := make([]core.Track, 0, len(resp.Tracks))
	for i := range resp.Tracks {
		if len(tracks) >= limit {
			break
		}
		tracks = append(tracks, convertTrack(&resp.Tracks[i]))
	}

	c.logger.Debug("Catalog search completed",
		zap.String("query", query),
		zap.Int("results", len(tracks)))

	return tracks, nil
}

// GetTrack fetches metadata for a single track id.
func (c *Client) GetTrack(ctx context.Context, trackID string) (*core.Track, error) {
	var wire wireTrack
	if err := c.getJSON(ctx, "/tracks/"+url.PathEscape(trackID), &wire); err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", trackID, err)
	}

	track := convertTrack(&wire)
	return &track, nil
}

// DownloadInfo fetches the downloadable variants of a track. An empty slice
// means the catalog offers no download for this track.
func (c *Client) DownloadInfo(ctx context.Context, trackID string) ([]core.DownloadVariant, error) {
	var resp downloadInfoResponse
	if err := c.getJSON(ctx, "/tracks/"+url.PathEscape(trackID)+"/download-info", &resp); err != nil {
		return nil, fmt.Errorf("failed to get download info for %s: %w", trackID, err)
	}

	variants := make([]core.DownloadVariant, 0, len(resp.Variants))
	for _, v := range resp.Variants {
		variants = append(variants, core.DownloadVariant{
			Codec:       v.Codec,
			BitrateKbps: v.BitrateKbps,
		})
	}
	return variants, nil
}

// DownloadTrack streams the selected variant's audio into destPath.
// A partially written file is left for the caller to clean up.
func (c *Client) DownloadTrack(ctx context.Context, trackID string, variant core.DownloadVariant, destPath string) error {
	params := url.Values{}
	params.Set("codec", variant.Codec)
	params.Set("bitrate_in_kbps", strconv.Itoa(variant.BitrateKbps))

	endpoint := c.baseURL + "/tracks/" + url.PathEscape(trackID) + "/file?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write audio: %w", err)
	}

	c.logger.Debug("Track downloaded",
		zap.String("trackID", trackID),
		zap.String("codec", variant.Codec),
		zap.Int("bitrateKbps", variant.BitrateKbps),
		zap.Int64("bytes", written))

	return nil
}

// getJSON performs a GET against the API and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// statusError maps HTTP status codes onto the acquisition error taxonomy
// where one applies; everything else stays a plain transport error.
func statusError(status int) error {
	switch status {
	case http.StatusNotFound:
		return core.ErrTrackNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("catalog rejected credentials: status %d", status)
	default:
		return fmt.Errorf("unexpected status: %d", status)
	}
}

func convertTrack(wire *wireTrack) core.Track {
	names := make([]string, 0, len(wire.Artists))
	for _, artist := range wire.Artists {
		names = append(names, artist.Name)
	}

	album := core.UnknownAlbum
	if len(wire.Albums) > 0 && wire.Albums[0].Title != "" {
		album = wire.Albums[0].Title
	}

	return core.Track{
		ID:       wire.ID,
		Title:    wire.Title,
		Artist:   strings.Join(names, ", "),
		Album:    album,
		Duration: time.Duration(wire.DurationMs) * time.Millisecond,
	}
}
