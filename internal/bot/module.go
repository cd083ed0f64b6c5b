package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// InteractionHandler answers one slash command through r.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error

// EventHandler is any discordgo handler func,
// e.g. func(*discordgo.Session, *discordgo.VoiceStateUpdate).
type EventHandler any

// ModuleDependencies is what the bot hands a module at Init.
type ModuleDependencies struct {
	Session *discordgo.Session
	Config  *Config
}

// Module is a bundle of slash commands and the services behind them.
// Modules are initialized in registration order and shut down in reverse,
// so a module may rely on anything registered before it.
type Module interface {
	Name() string

	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers maps each of Commands' names to its handler.
	CommandHandlers() map[string]InteractionHandler

	EventHandlers() []EventHandler

	Init(deps ModuleDependencies) error

	// Shutdown releases the module's resources. Work still pending when ctx
	// is done may be dropped.
	Shutdown(ctx context.Context) error
}

// ConfigurableModule is implemented by modules that read their own
// environment. LoadConfig runs for every module before any Init, so a bad
// variable fails startup before the gateway is opened.
type ConfigurableModule interface {
	LoadConfig() error
}
