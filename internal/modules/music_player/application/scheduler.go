package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/boombox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/boombox/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

// Scheduler defaults.
const (
	DefaultTickInterval = time.Second
	DefaultGracePeriod  = 10 * time.Second
)

const (
	msgPlaying      = "Playing %s"
	msgCantPlayNext = "Can't play the next queued song"
	msgVoiceDropped = "Lost the voice connection, pausing %s"
)

// SchedulerConfig configures a PlaybackScheduler.
type SchedulerConfig struct {
	// Interval between ticks.
	Interval time.Duration
	// GracePeriod is added to a track's duration before it is considered finished.
	GracePeriod time.Duration
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// PlaybackScheduler advances every Playing guild to its next queued track
// once the current track's duration plus the grace period has elapsed.
type PlaybackScheduler struct {
	slots    domain.PlaybackStore
	queue    domain.QueueStore
	voice    ports.VoiceSink
	starter  *usecases.TrackStarter
	locks    *usecases.GuildLocks
	notifier ports.Notifier

	interval time.Duration
	grace    time.Duration
	now      func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPlaybackScheduler creates a new PlaybackScheduler.
func NewPlaybackScheduler(
	slots domain.PlaybackStore,
	queue domain.QueueStore,
	voice ports.VoiceSink,
	starter *usecases.TrackStarter,
	locks *usecases.GuildLocks,
	notifier ports.Notifier,
	cfg SchedulerConfig,
) *PlaybackScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultTickInterval
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &PlaybackScheduler{
		slots:    slots,
		queue:    queue,
		voice:    voice,
		starter:  starter,
		locks:    locks,
		notifier: notifier,
		interval: cfg.Interval,
		grace:    cfg.GracePeriod,
		now:      cfg.Now,
	}
}

// Start runs the tick loop in the background until Stop is called or ctx is done.
func (s *PlaybackScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)

	slog.Info("playback scheduler started", "interval", s.interval, "grace", s.grace)
}

// Stop halts the tick loop and waits for an in-progress tick to finish.
func (s *PlaybackScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()

	slog.Info("playback scheduler stopped")
}

func (s *PlaybackScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick evaluates every Playing guild once.
func (s *PlaybackScheduler) Tick(ctx context.Context) {
	now := s.now()
	for _, slot := range s.slots.Playing() {
		if !slot.IsDue(now, s.grace) {
			continue
		}
		s.advance(ctx, slot.GuildID, now)
	}
}

// advance moves one guild to its next track. A failure here never reaches
// other guilds.
func (s *PlaybackScheduler) advance(ctx context.Context, guildID snowflake.ID, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered from panic while advancing guild", "guild", guildID, "panic", r)
		}
	}()

	// A command holding the guild is already transitioning it.
	unlock, ok := s.locks.TryLock(guildID)
	if !ok {
		slog.Debug("guild busy, deferring advance", "guild", guildID)
		return
	}
	defer unlock()

	slot, ok := s.slots.Get(guildID)
	if !ok || !slot.IsDue(now, s.grace) {
		return
	}

	if !s.voice.IsConnected(guildID) {
		s.voice.Stop(guildID)
		s.slots.SetState(guildID, domain.Paused())
		slog.Info("voice disconnected, pausing guild", "guild", guildID, "title", slot.Current.Title)
		s.notifier.Notify(slot.Current.ReplyChannelID, fmt.Sprintf(msgVoiceDropped, slot.Current.Title))
		return
	}

	next := s.queue.PopFront(guildID)
	if next == nil {
		// Hold: the next track added is picked up on a later tick.
		return
	}

	if err := s.starter.Start(ctx, guildID, next); err != nil {
		var connErr *usecases.ConnectionError
		if errors.As(err, &connErr) {
			s.slots.SetState(guildID, domain.Paused())
			slog.Warn(
				"voice refused next track, pausing guild",
				"guild", guildID,
				"lost", next.Title,
				"error", err,
			)
			return
		}

		slog.Error(
			"failed to start next track",
			"guild", guildID,
			"title", next.Title,
			"error", err,
		)
		s.notifier.Notify(next.ReplyChannelID, msgCantPlayNext)
		return
	}

	s.slots.SetCurrent(guildID, next, domain.Playing(now))
	slog.Info("advanced to next track", "guild", guildID, "title", next.Title)
	s.notifier.Notify(next.ReplyChannelID, fmt.Sprintf(msgPlaying, next.Title))
}
