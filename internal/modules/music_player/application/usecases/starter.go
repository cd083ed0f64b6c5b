package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/boombox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

// TrackStarter opens audio for a track and hands it to the voice sink.
// Commands and the scheduler share it so every promotion to current behaves the same.
type TrackStarter struct {
	audio ports.AudioSource
	voice ports.VoiceSink
}

// NewTrackStarter creates a new TrackStarter.
func NewTrackStarter(audio ports.AudioSource, voice ports.VoiceSink) *TrackStarter {
	return &TrackStarter{
		audio: audio,
		voice: voice,
	}
}

// Start begins playback of track in the guild.
// Returns a *TranscodeError if audio could not be opened and a
// *ConnectionError if the voice sink refused the stream.
func (s *TrackStarter) Start(ctx context.Context, guildID snowflake.ID, track *domain.Track) error {
	stream, err := s.audio.Open(ctx, track)
	if err != nil {
		return &TranscodeError{Track: track, Err: err}
	}

	if err := s.voice.Play(guildID, stream); err != nil {
		_ = stream.Close()
		return &ConnectionError{Op: "play", Err: err}
	}

	return nil
}
