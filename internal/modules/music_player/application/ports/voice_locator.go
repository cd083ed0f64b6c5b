package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// VoiceChannelLocator finds the voice channel a guild member is connected to.
type VoiceChannelLocator interface {
	// UserVoiceChannel returns the channel userID is connected to in guildID,
	// or domain.ErrUserNotInVoice if there is none.
	UserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)
}
