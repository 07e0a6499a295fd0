// Package flood provides anti-spam flood prevention for chat applications.
package flood

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// windowDuration is the fixed time window for flood detection (always 1 minute)
	windowDuration = 60 * time.Second
	// maxTrackedUsers bounds the per-user entries; least recently active
	// users are evicted, which is equivalent to their window expiring
	maxTrackedUsers = 4096
)

// Floodgate provides per-user, per-chat flood prevention with sliding window
// rate limiting. Entries live in an LRU so idle users age out without any
// background cleanup.
type Floodgate struct {
	limitPerMinute int
	entries        *lru.Cache[string, *userEntry]
	mutex          sync.Mutex
}

// userEntry tracks message timestamps for a specific user in a specific chat
type userEntry struct {
	timestamps []time.Time
}

// Stats reports the current state of the flood gate.
type Stats struct {
	ActiveUsers    int
	LimitPerMinute int
	WindowSeconds  int
}

// New creates a new Floodgate with the specified rate limiting configuration.
// The time window is fixed at 60 seconds (1 minute).
func New(limitPerMinute int) *Floodgate {
	entries, _ := lru.New[string, *userEntry](maxTrackedUsers)

	return &Floodgate{
		limitPerMinute: limitPerMinute,
		entries:        entries,
	}
}

// CheckMessage checks if a message from the specified user in the specified
// chat should be allowed. Returns true if the message should be processed,
// false if it should be blocked due to flood.
func (fg *Floodgate) CheckMessage(chatID string, userID int64) bool {
	if fg.limitPerMinute <= 0 {
		return true
	}

	key := fmt.Sprintf("%s:%d", chatID, userID)
	now := time.Now()

	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	entry, exists := fg.entries.Get(key)
	if !exists {
		entry = &userEntry{
			timestamps: make([]time.Time, 0, fg.limitPerMinute+1),
		}
		fg.entries.Add(key, entry)
	}

	// Drop timestamps outside the window, reusing slice capacity
	windowStart := now.Add(-windowDuration)
	validTimestamps := entry.timestamps[:0]
	for _, ts := range entry.timestamps {
		if ts.After(windowStart) {
			validTimestamps = append(validTimestamps, ts)
		}
	}
	entry.timestamps = validTimestamps

	if len(entry.timestamps) >= fg.limitPerMinute {
		return false
	}

	entry.timestamps = append(entry.timestamps, now)
	return true
}

// GetStats returns the current flood gate statistics.
func (fg *Floodgate) GetStats() Stats {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	return Stats{
		ActiveUsers:    fg.entries.Len(),
		LimitPerMinute: fg.limitPerMinute,
		WindowSeconds:  int(windowDuration.Seconds()),
	}
}
