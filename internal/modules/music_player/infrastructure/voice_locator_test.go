package infrastructure

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

func TestStateVoiceLocator_UserVoiceChannel(t *testing.T) {
	state := discordgo.NewState()
	if err := state.GuildAdd(&discordgo.Guild{
		ID:           "1",
		AfkChannelID: "5",
		VoiceStates: []*discordgo.VoiceState{
			{GuildID: "1", UserID: "2", ChannelID: "4"},
			{GuildID: "1", UserID: "3", ChannelID: ""},
			{GuildID: "1", UserID: "6", ChannelID: "5"},
			{GuildID: "1", UserID: "7", ChannelID: "voice"},
		},
	}); err != nil {
		t.Fatalf("failed to seed state: %v", err)
	}
	locator := NewStateVoiceLocator(&discordgo.Session{State: state})

	tests := []struct {
		name          string
		guildID       snowflake.ID
		userID        snowflake.ID
		want          snowflake.ID
		wantErr       error
		wantLookupErr bool
	}{
		{name: "user in voice", guildID: 1, userID: 2, want: 4},
		{name: "user left voice", guildID: 1, userID: 3, wantErr: domain.ErrUserNotInVoice},
		{name: "user never joined", guildID: 1, userID: 9, wantErr: domain.ErrUserNotInVoice},
		{name: "user in afk channel", guildID: 1, userID: 6, wantErr: domain.ErrUserNotInVoice},
		{name: "malformed channel id", guildID: 1, userID: 7, wantLookupErr: true},
		{name: "unknown guild", guildID: 8, userID: 2, wantLookupErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := locator.UserVoiceChannel(tt.guildID, tt.userID)
			if tt.wantLookupErr {
				if err == nil || errors.Is(err, domain.ErrUserNotInVoice) {
					t.Errorf("expected a lookup error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected channel %d, got %d", tt.want, got)
			}
		})
	}
}
