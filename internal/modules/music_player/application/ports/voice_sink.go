package ports

import (
	"context"
	"io"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceSink transmits decoded audio into a guild's voice channel.
type VoiceSink interface {
	// Join connects the bot to the specified voice channel.
	Join(ctx context.Context, guildID, channelID snowflake.ID) error

	// Play starts transmitting stream, replacing anything currently playing.
	// The sink takes ownership of stream and closes it when playback ends or is stopped.
	Play(guildID snowflake.ID, stream io.ReadCloser) error

	// Stop halts transmission. It is a no-op if nothing is playing.
	Stop(guildID snowflake.ID)

	// Leave disconnects the bot from the guild's voice channel.
	Leave(ctx context.Context, guildID snowflake.ID) error

	// IsConnected returns true if the bot has a ready voice connection in the guild.
	IsConnected(guildID snowflake.ID) bool
}
