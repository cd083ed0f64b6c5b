package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// PlaybackStatus is the tag of a PlaybackState.
type PlaybackStatus int

const (
	// StatusPaused means a track is loaded but elapsed time is not advancing
	// (paused by a user, or the voice connection was lost).
	StatusPaused PlaybackStatus = iota
	// StatusPlaying means the current track has been playing since PlaybackState.Since.
	StatusPlaying
)

// String returns a human-readable representation of the status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	default:
		return "paused"
	}
}

// PlaybackState is the play-state of a guild's current track.
// A guild without a Slot is empty; there is no empty PlaybackState.
type PlaybackState struct {
	status PlaybackStatus
	since  time.Time
}

// Playing returns a state that has been playing since the given moment.
func Playing(since time.Time) PlaybackState {
	return PlaybackState{status: StatusPlaying, since: since}
}

// Paused returns a paused state.
func Paused() PlaybackState {
	return PlaybackState{status: StatusPaused}
}

// Status returns the state tag.
func (s PlaybackState) Status() PlaybackStatus {
	return s.status
}

// IsPlaying returns true if the state is Playing.
func (s PlaybackState) IsPlaying() bool {
	return s.status == StatusPlaying
}

// IsPaused returns true if the state is Paused.
func (s PlaybackState) IsPaused() bool {
	return s.status == StatusPaused
}

// Since returns the moment playback started, and false if the state is not Playing.
func (s PlaybackState) Since() (time.Time, bool) {
	if s.status != StatusPlaying {
		return time.Time{}, false
	}
	return s.since, true
}

// Slot holds the currently loaded track of a guild and its play-state.
type Slot struct {
	GuildID snowflake.ID
	Current *Track
	State   PlaybackState
}

// Elapsed returns how long the current track has been playing at now.
// Returns false if the slot is not Playing.
func (s Slot) Elapsed(now time.Time) (time.Duration, bool) {
	since, ok := s.State.Since()
	if !ok {
		return 0, false
	}
	return now.Sub(since), true
}

// IsDue reports whether the current track has played for its full duration
// plus grace at now. Paused slots are never due.
func (s Slot) IsDue(now time.Time, grace time.Duration) bool {
	if s.Current == nil {
		return false
	}
	elapsed, ok := s.Elapsed(now)
	if !ok {
		return false
	}
	return elapsed >= s.Current.Duration+grace
}
