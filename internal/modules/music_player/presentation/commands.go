package presentation

import "github.com/bwmarrin/discordgo"

// Command names.
const (
	CommandPlay       = "play"
	CommandAdd        = "add"
	CommandResume     = "resume"
	CommandSkip       = "skip"
	CommandSkipTo     = "skipto"
	CommandPause      = "pause"
	CommandStop       = "stop"
	CommandQueue      = "queue"
	CommandMechanicus = "mechanicus"
)

// Commands returns all slash commands for the music player module.
func Commands() []*discordgo.ApplicationCommand {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        CommandPlay,
			Description: "Play a URL right away, queueing the rest of its playlist",
			Options: []*discordgo.ApplicationCommandOption{
				urlOption(),
			},
		},
		{
			Name:        CommandAdd,
			Description: "Add a URL or playlist to the end of the queue",
			Options: []*discordgo.ApplicationCommandOption{
				urlOption(),
			},
		},
		{
			Name:        CommandResume,
			Description: "Resume the paused track",
		},
		{
			Name:        CommandSkip,
			Description: "Skip to the next queued track",
		},
		{
			Name:        CommandSkipTo,
			Description: "Skip ahead to a position in the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "position",
					Description: "Queue position to play (1-indexed, as shown in /queue)",
					Required:    true,
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        CommandPause,
			Description: "Pause playback",
		},
		{
			Name:        CommandStop,
			Description: "Stop playback, clear the queue and leave voice",
		},
		{
			Name:        CommandQueue,
			Description: "Show the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "page",
					Description: "Page number",
					Required:    false,
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        CommandMechanicus,
			Description: "Praise the Omnissiah",
		},
	}

	for _, cmd := range commands {
		cmd.DMPermission = boolPtr(false)
	}
	return commands
}

func urlOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "url",
		Description: "Video or playlist URL",
		Required:    true,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

func boolPtr(b bool) *bool {
	return &b
}
