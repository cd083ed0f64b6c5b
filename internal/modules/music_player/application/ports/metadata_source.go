package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

// FetchResult is one item of a MetadataSource resolution.
// Exactly one of Track and Err is set.
type FetchResult struct {
	Track *domain.Track
	Err   error
}

// MetadataSource resolves a URL into zero or more tracks.
type MetadataSource interface {
	// Fetch starts resolving url and streams results as they are produced.
	// Every resolved track is tagged with replyChannelID.
	// The channel is closed when the resolver has no more output or ctx is done.
	// A malformed item is delivered as a FetchResult with Err set and does not
	// end the stream.
	Fetch(
		ctx context.Context,
		url string,
		replyChannelID snowflake.ID,
	) (<-chan FetchResult, error)
}
