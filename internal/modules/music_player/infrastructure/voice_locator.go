package infrastructure

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/boombox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

// StateVoiceLocator answers voice channel lookups from the gateway state cache.
type StateVoiceLocator struct {
	state *discordgo.State
}

// NewStateVoiceLocator creates a new StateVoiceLocator reading from the session state.
func NewStateVoiceLocator(session *discordgo.Session) *StateVoiceLocator {
	return &StateVoiceLocator{state: session.State}
}

// UserVoiceChannel returns the voice channel userID is in. A member sitting in
// the guild's AFK channel counts as not in voice.
func (l *StateVoiceLocator) UserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error) {
	guild, err := l.state.Guild(guildID.String())
	if err != nil {
		return 0, fmt.Errorf("look up guild %s: %w", guildID, err)
	}

	vs, err := l.state.VoiceState(guild.ID, userID.String())
	if errors.Is(err, discordgo.ErrStateNotFound) {
		return 0, domain.ErrUserNotInVoice
	}
	if err != nil {
		return 0, fmt.Errorf("look up voice state of %s: %w", userID, err)
	}
	if vs.ChannelID == "" || vs.ChannelID == guild.AfkChannelID {
		return 0, domain.ErrUserNotInVoice
	}

	channelID, err := snowflake.Parse(vs.ChannelID)
	if err != nil {
		return 0, fmt.Errorf("parse voice channel id %q: %w", vs.ChannelID, err)
	}
	return channelID, nil
}

// Ensure StateVoiceLocator implements ports.VoiceChannelLocator.
var _ ports.VoiceChannelLocator = (*StateVoiceLocator)(nil)
