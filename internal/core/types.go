package core

import (
	"context"
	"time"
)

const (
	// UnknownAlbum is the album title used when the catalog has no album info
	UnknownAlbum = "Unknown Album"
	// CodecMP3 is the only codec the pipeline will deliver
	CodecMP3 = "mp3"
)

// Track is a single catalog recording as shown to users and delivered as audio.
type Track struct {
	ID       string
	Title    string
	Artist   string // all artist names, joined with ", "
	Album    string
	Duration time.Duration
}

// DownloadVariant is one downloadable encoding of a track.
type DownloadVariant struct {
	Codec       string
	BitrateKbps int
}

// Tier is the permission level of a user, selecting the catalog credential.
type Tier int

const (
	// TierDemo uses the anonymous catalog client (preview-quality audio)
	TierDemo Tier = iota
	// TierFull uses the authenticated catalog client
	TierFull
)

func (t Tier) String() string {
	if t == TierFull {
		return "full"
	}
	return "demo"
}

// CatalogClient is the façade over the external catalog API. Two instances
// exist for the lifetime of the process, one per tier; both are stateless
// credential holders and safe for concurrent use.
type CatalogClient interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]Track, error)
	GetTrack(ctx context.Context, trackID string) (*Track, error)
	DownloadInfo(ctx context.Context, trackID string) ([]DownloadVariant, error)
	DownloadTrack(ctx context.Context, trackID string, variant DownloadVariant, destPath string) error
}

// Audio is a downloaded track ready for delivery to a chat.
type Audio struct {
	Path      string
	Title     string
	Performer string
	Caption   string
}

// AudioSender delivers a downloaded audio file to its destination chat.
// The pipeline only ever delivers audio; user-facing error text is the
// adapter's responsibility.
type AudioSender interface {
	SendAudio(ctx context.Context, audio *Audio) error
}
