package ports

import (
	"context"
	"io"

	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

// AudioSource opens decoded audio for a track.
type AudioSource interface {
	// Open returns a stream of signed 16-bit little-endian stereo PCM at 48 kHz.
	// Closing the stream releases the underlying transcoder.
	Open(ctx context.Context, track *domain.Track) (io.ReadCloser, error)
}
