package core

import "errors"

// Acquisition and resolution failure kinds. Every path through the pipeline
// terminates in one of these (or nil); the adapter translates them into
// user-facing text and nothing here ever escapes the dispatch loop.
var (
	// ErrTrackNotFound means the catalog has no track for the requested id
	ErrTrackNotFound = errors.New("track not found")
	// ErrUnavailable means the track exists but has no download variants
	ErrUnavailable = errors.New("track unavailable for download")
	// ErrNoSuitableVariant means no mp3 variant exists for the track
	ErrNoSuitableVariant = errors.New("no suitable download variant")
	// ErrDownloadFailed wraps a transfer error while fetching the audio
	ErrDownloadFailed = errors.New("download failed")
	// ErrDeliveryFailed means the audio could not be sent after all retries
	ErrDeliveryFailed = errors.New("delivery failed")
	// ErrUnsupportedLink means the URL shape carries no extractable track id
	ErrUnsupportedLink = errors.New("unsupported link format")
)
