package music_player

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/boombox/internal/bot"
	"github.com/sglre6355/boombox/internal/modules/music_player/application"
	"github.com/sglre6355/boombox/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/boombox/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/boombox/internal/modules/music_player/presentation"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// ErrNoSession is returned when the module is initialized without a Discord session.
var ErrNoSession = errors.New("music_player requires a discord session")

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config   *Config
	handlers *presentation.Handlers

	scheduler *application.PlaybackScheduler
	resolver  *usecases.TrackResolver
	notifier  *infrastructure.DiscordNotifier
	voice     *infrastructure.DiscordVoiceSink

	cancel context.CancelFunc
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		presentation.CommandPlay:       m.handlers.HandlePlay,
		presentation.CommandAdd:        m.handlers.HandleAdd,
		presentation.CommandResume:     m.handlers.HandleResume,
		presentation.CommandSkip:       m.handlers.HandleSkip,
		presentation.CommandSkipTo:     m.handlers.HandleSkipTo,
		presentation.CommandPause:      m.handlers.HandlePause,
		presentation.CommandStop:       m.handlers.HandleStop,
		presentation.CommandQueue:      m.handlers.HandleQueue,
		presentation.CommandMechanicus: m.handlers.HandleMechanicus,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return nil
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return ErrNoSession
	}
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}
	cfg := m.config

	// Infrastructure
	queueStore := infrastructure.NewMemoryQueueStore()
	playbackStore := infrastructure.NewMemoryPlaybackStore()
	metadata := infrastructure.NewYtdlpSource(infrastructure.YtdlpConfig{
		Executable: cfg.YtdlpPath,
		Format:     cfg.YtdlpFormat,
		Username:   cfg.YtdlpUsername,
		Password:   cfg.YtdlpPassword,
	})
	audio := infrastructure.NewFfmpegSource(cfg.FfmpegPath)
	m.voice = infrastructure.NewDiscordVoiceSink(deps.Session)
	locator := infrastructure.NewStateVoiceLocator(deps.Session)
	m.notifier = infrastructure.NewDiscordNotifier(deps.Session, infrastructure.NotifierConfig{
		Rate:       cfg.NotifyRate,
		Burst:      cfg.NotifyBurst,
		BufferSize: cfg.NotifyBuffer,
	})

	// Use cases
	locks := usecases.NewGuildLocks()
	starter := usecases.NewTrackStarter(audio, m.voice)
	m.resolver = usecases.NewTrackResolver(metadata, queueStore, m.notifier)
	playback := usecases.NewPlaybackService(
		playbackStore,
		queueStore,
		m.voice,
		locator,
		starter,
		m.resolver,
		m.notifier,
		locks,
	)
	queue := usecases.NewQueueService(queueStore, playbackStore, m.resolver)

	// Scheduler
	m.scheduler = application.NewPlaybackScheduler(
		playbackStore,
		queueStore,
		m.voice,
		starter,
		locks,
		m.notifier,
		application.SchedulerConfig{
			Interval:    cfg.SchedulerInterval,
			GracePeriod: cfg.TrackGracePeriod,
		},
	)

	var ctx context.Context
	ctx, m.cancel = context.WithCancel(context.Background())
	m.scheduler.Start(ctx)

	// Presentation
	m.handlers = presentation.NewHandlers(playback, queue, cfg.MechanicusURL)

	slog.Info(
		"music_player module initialized",
		"ytdlp", cfg.YtdlpPath,
		"ffmpeg", cfg.FfmpegPath,
		"interval", cfg.SchedulerInterval,
		"grace", cfg.TrackGracePeriod,
	)

	return nil
}

// Shutdown stops the scheduler, cancels in-flight resolutions, leaves every
// voice channel, then flushes pending notifications until ctx is done.
func (m *MusicPlayerModule) Shutdown(ctx context.Context) error {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
	if m.cancel != nil {
		m.cancel()
	}

	if m.resolver != nil {
		m.resolver.Close()
	}

	if m.voice != nil {
		m.voice.LeaveAll(ctx)
	}

	if m.notifier != nil {
		m.notifier.Close(ctx)
	}

	slog.Info("music_player module shut down")
	return nil
}
