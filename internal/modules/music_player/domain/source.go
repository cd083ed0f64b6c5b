package domain

import "strings"

// TrackSource represents the platform a track was resolved from.
type TrackSource string

const (
	TrackSourceYouTube    TrackSource = "youtube"
	TrackSourceSoundCloud TrackSource = "soundcloud"
	TrackSourceBandcamp   TrackSource = "bandcamp"
	TrackSourceTwitch     TrackSource = "twitch"
	TrackSourceOther      TrackSource = "other"
)

// ParseTrackSource converts a yt-dlp extractor key to a TrackSource.
// Extractor keys carry suffixes for sub-extractors, e.g. "YoutubeTab" or "SoundcloudPlaylist".
func ParseTrackSource(extractor string) TrackSource {
	key := strings.ToLower(extractor)
	switch {
	case strings.HasPrefix(key, "youtube"):
		return TrackSourceYouTube
	case strings.HasPrefix(key, "soundcloud"):
		return TrackSourceSoundCloud
	case strings.HasPrefix(key, "bandcamp"):
		return TrackSourceBandcamp
	case strings.HasPrefix(key, "twitch"):
		return TrackSourceTwitch
	default:
		return TrackSourceOther
	}
}

// DisplayName returns the platform name as shown to users.
func (s TrackSource) DisplayName() string {
	switch s {
	case TrackSourceYouTube:
		return "YouTube"
	case TrackSourceSoundCloud:
		return "SoundCloud"
	case TrackSourceBandcamp:
		return "Bandcamp"
	case TrackSourceTwitch:
		return "Twitch"
	default:
		return ""
	}
}
