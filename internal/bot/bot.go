package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Gateway intents the modules depend on: guild and channel caches, and the
// voice states used to find a member's voice channel.
const intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

// Bot owns the Discord session and the lifecycle of its modules.
type Bot struct {
	config  *Config
	session *discordgo.Session
	modules []Module
	started []Module // initialized, in init order
	router  *Router
}

// NewBot creates a new Bot instance with the given configuration.
func NewBot(cfg *Config) *Bot {
	return &Bot{config: cfg}
}

// LoadModules loads modules from the global registry.
func (b *Bot) LoadModules() {
	b.modules = Modules()
}

// Start initializes the modules, connects to Discord and registers commands.
// On error, Stop still unwinds whatever was started.
func (b *Bot) Start() error {
	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = intents
	b.session = session

	if err := b.initModules(); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	routes, err := Routes(b.started)
	if err != nil {
		return err
	}
	b.router = NewRouter(routes, LogCommands, RecoverPanics)
	b.session.AddHandler(b.router.Handle)

	for _, mod := range b.started {
		for _, handler := range mod.EventHandlers() {
			b.session.AddHandler(handler)
		}
	}

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	slog.Info("started bot",
		"user_id", b.session.State.User.ID,
		"username", b.session.State.User.Username,
	)

	return nil
}

// Stop shuts the started modules down in reverse init order, then closes the
// session. Modules share ctx as their shutdown deadline.
func (b *Bot) Stop(ctx context.Context) error {
	for i := len(b.started) - 1; i >= 0; i-- {
		mod := b.started[i]
		if err := mod.Shutdown(ctx); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}
	b.started = nil

	if b.session != nil {
		return b.session.Close()
	}
	return nil
}

// initModules loads every module's config, then initializes them in order.
// A failed Init leaves the modules before it in b.started.
func (b *Bot) initModules() error {
	for _, mod := range b.modules {
		configurable, ok := mod.(ConfigurableModule)
		if !ok {
			continue
		}
		if err := configurable.LoadConfig(); err != nil {
			return fmt.Errorf("failed to load %s module config: %w", mod.Name(), err)
		}
	}

	deps := ModuleDependencies{
		Session: b.session,
		Config:  b.config,
	}
	for _, mod := range b.modules {
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		b.started = append(b.started, mod)
		slog.Debug("initialized module", "module", mod.Name())
	}

	names := make([]string, len(b.started))
	for i, mod := range b.started {
		names[i] = mod.Name()
	}
	slog.Info("initialized modules", "modules", names)

	return nil
}

// commands gathers the slash commands of the started modules.
func (b *Bot) commands() []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, mod := range b.started {
		commands = append(commands, mod.Commands()...)
	}
	return commands
}

// registerCommands replaces the application's commands with those of the
// started modules. With COMMAND_GUILD_ID set they are registered to that
// guild only, where changes show up immediately.
func (b *Bot) registerCommands() error {
	created, err := b.session.ApplicationCommandBulkOverwrite(
		b.session.State.User.ID,
		b.config.CommandGuildID,
		b.commands(),
	)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	slog.Info("registered commands", "count", len(created), "guild", b.config.CommandGuildID)
	return nil
}
