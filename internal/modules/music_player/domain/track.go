package domain

import (
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// TrackID is a unique identifier for one resolved track instance.
// Two resolutions of the same URL yield two different TrackIDs.
type TrackID string

// Track represents a playable audio track.
type Track struct {
	ID             TrackID
	SourceID       string // resolver-specific identifier, e.g. a YouTube video ID
	Title          string
	Duration       time.Duration
	StreamURL      string // direct media URL handed to the transcoder
	WebpageURL     string // optional: page the track was resolved from
	Uploader       string // optional
	ThumbnailURL   string // optional
	Extractor      string // optional: e.g. "youtube", "soundcloud"
	ReplyChannelID snowflake.ID
	EnqueuedAt     time.Time
}

// NewTrack creates a new Track with the given parameters.
func NewTrack(
	id TrackID,
	title string,
	duration time.Duration,
	streamURL string,
	replyChannelID snowflake.ID,
) *Track {
	return &Track{
		ID:             id,
		Title:          title,
		Duration:       duration,
		StreamURL:      streamURL,
		ReplyChannelID: replyChannelID,
		EnqueuedAt:     time.Now().UTC(),
	}
}

// Clone returns a copy of the track. The copy shares no mutable state with t.
func (t *Track) Clone() *Track {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Source returns the platform the track was resolved from.
func (t *Track) Source() TrackSource {
	return ParseTrackSource(t.Extractor)
}

// IsValid returns true if the track has the minimum required fields.
func (t *Track) IsValid() bool {
	return t.Title != "" && t.StreamURL != "" && t.Duration >= 0
}

// FormattedDuration returns the duration as a human-readable string (mm:ss or hh:mm:ss).
func (t *Track) FormattedDuration() string {
	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return formatTime(hours, minutes, seconds)
	}
	return formatTimeShort(minutes, seconds)
}

func formatTime(hours, minutes, seconds int) string {
	return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
}

func formatTimeShort(minutes, seconds int) string {
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
