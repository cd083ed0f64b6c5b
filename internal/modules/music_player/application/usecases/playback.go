package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/boombox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	GuildID        snowflake.ID
	UserID         snowflake.ID
	URL            string
	ReplyChannelID snowflake.ID
}

// PlayOutput contains the result of the Play use case.
type PlayOutput struct {
	Track    *domain.Track
	Replaced *domain.Track // previous current track, nil if the guild was empty
}

// ResumeInput contains the input for the Resume use case.
type ResumeInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// ResumeOutput contains the result of the Resume use case.
type ResumeOutput struct {
	Track *domain.Track
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// SkipToInput contains the input for the SkipTo use case.
type SkipToInput struct {
	GuildID  snowflake.ID
	UserID   snowflake.ID
	Position int // 1-indexed queue position
}

// SkipOutput contains the result of the Skip and SkipTo use cases.
type SkipOutput struct {
	SkippedTrack *domain.Track // nil if the guild had no slot
	Track        *domain.Track
}

// PauseInput contains the input for the Pause use case.
type PauseInput struct {
	GuildID snowflake.ID
}

// PauseOutput contains the result of the Pause use case.
type PauseOutput struct {
	Track *domain.Track // nil if nothing was playing
}

// StopInput contains the input for the Stop use case.
type StopInput struct {
	GuildID snowflake.ID
}

// StopOutput contains the result of the Stop use case.
type StopOutput struct {
	ClearedCount int
	Disconnected bool
}

// msgCantPlay is announced when a resolved track fails to start and the next
// one is tried instead.
const msgCantPlay = "Can't play %s"

// PlaybackService handles the per-guild playback state machine.
type PlaybackService struct {
	slots    domain.PlaybackStore
	queue    domain.QueueStore
	voice    ports.VoiceSink
	locator  ports.VoiceChannelLocator
	starter  *TrackStarter
	resolver *TrackResolver
	notifier ports.Notifier
	locks    *GuildLocks

	now func() time.Time
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	slots domain.PlaybackStore,
	queue domain.QueueStore,
	voice ports.VoiceSink,
	locator ports.VoiceChannelLocator,
	starter *TrackStarter,
	resolver *TrackResolver,
	notifier ports.Notifier,
	locks *GuildLocks,
) *PlaybackService {
	return &PlaybackService{
		slots:    slots,
		queue:    queue,
		voice:    voice,
		locator:  locator,
		starter:  starter,
		resolver: resolver,
		notifier: notifier,
		locks:    locks,
		now:      time.Now,
	}
}

// Play resolves the URL and immediately plays its first playable track,
// replacing the current one if any. The remaining tracks are appended to the
// queue as they are resolved. A track whose audio fails to open is announced
// and the next resolved one is tried.
//
// The guild lock is only taken once a track is in hand. A stop that lands
// while the resolver is still silent wins, and Play returns
// ErrStoppedWhileResolving.
func (p *PlaybackService) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	url, err := domain.ParseMediaURL(input.URL)
	if err != nil {
		return nil, &InputValidationError{Field: "url", Err: err}
	}

	if err := p.requireVoice(input.GuildID, input.UserID); err != nil {
		return nil, err
	}

	resolution, err := p.resolver.Resolve(input.GuildID, url, input.ReplyChannelID)
	if err != nil {
		return nil, err
	}

	for {
		track := p.resolver.First(resolution)
		if track == nil {
			resolution.Cancel()
			return nil, &ResolutionError{URL: url, Err: ErrNoTracks}
		}

		output, err := p.promote(ctx, input, resolution, track)
		if err == nil {
			return output, nil
		}
		if !isTranscodeError(err) {
			resolution.Cancel()
			return nil, err
		}

		slog.Error("failed to start resolved track", "guild", input.GuildID, "title", track.Title, "error", err)
		p.notifier.Notify(input.ReplyChannelID, fmt.Sprintf(msgCantPlay, track.Title))
	}
}

// promote joins voice, starts track and makes it current. The rest of the
// resolution is handed to the queue on success.
func (p *PlaybackService) promote(
	ctx context.Context,
	input PlayInput,
	resolution *Resolution,
	track *domain.Track,
) (*PlayOutput, error) {
	unlock := p.locks.Lock(input.GuildID)
	defer unlock()

	if p.resolver.Stale(resolution) {
		return nil, ErrStoppedWhileResolving
	}

	if err := p.joinVoice(ctx, input.GuildID, input.UserID); err != nil {
		return nil, err
	}

	if err := p.starter.Start(ctx, input.GuildID, track); err != nil {
		return nil, err
	}

	var replaced *domain.Track
	if slot, ok := p.slots.Get(input.GuildID); ok {
		replaced = slot.Current
	}
	p.slots.SetCurrent(input.GuildID, track, domain.Playing(p.now()))
	p.resolver.EnqueueRemaining(resolution, AnnounceTotal)

	slog.Info("started playback", "guild", input.GuildID, "title", track.Title)

	return &PlayOutput{
		Track:    track,
		Replaced: replaced,
	}, nil
}

// Resume restarts the current track from the beginning.
func (p *PlaybackService) Resume(ctx context.Context, input ResumeInput) (*ResumeOutput, error) {
	unlock := p.locks.Lock(input.GuildID)
	defer unlock()

	slot, ok := p.slots.Get(input.GuildID)
	if !ok || slot.Current == nil {
		return nil, ErrNothingQueued
	}
	if slot.State.IsPlaying() {
		return nil, ErrAlreadyPlaying
	}

	if err := p.joinVoice(ctx, input.GuildID, input.UserID); err != nil {
		return nil, err
	}

	if err := p.starter.Start(ctx, input.GuildID, slot.Current); err != nil {
		return nil, err
	}

	p.slots.SetState(input.GuildID, domain.Playing(p.now()))

	slog.Info("resumed playback", "guild", input.GuildID, "title", slot.Current.Title)

	return &ResumeOutput{
		Track: slot.Current,
	}, nil
}

// Skip plays the next queued track. If the queue is empty, the current slot
// is left unchanged and ErrQueueEmpty is returned.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	unlock := p.locks.Lock(input.GuildID)
	defer unlock()

	return p.skip(ctx, input.GuildID, input.UserID)
}

// SkipTo drops the tracks ahead of the given queue position and plays it.
func (p *PlaybackService) SkipTo(ctx context.Context, input SkipToInput) (*SkipOutput, error) {
	unlock := p.locks.Lock(input.GuildID)
	defer unlock()

	if input.Position < 1 || input.Position > p.queue.Len(input.GuildID) {
		return nil, ErrNotEnoughSongs
	}

	if err := p.joinVoice(ctx, input.GuildID, input.UserID); err != nil {
		return nil, err
	}

	dropped := p.queue.DropFirst(input.GuildID, input.Position-1)
	slog.Debug("dropped queued tracks", "guild", input.GuildID, "count", dropped)

	return p.skip(ctx, input.GuildID, input.UserID)
}

// skip promotes the front of the queue. The caller must hold the guild lock.
func (p *PlaybackService) skip(
	ctx context.Context,
	guildID, userID snowflake.ID,
) (*SkipOutput, error) {
	if p.queue.Len(guildID) == 0 {
		return nil, ErrQueueEmpty
	}

	if err := p.joinVoice(ctx, guildID, userID); err != nil {
		return nil, err
	}

	track := p.queue.PopFront(guildID)
	if track == nil {
		return nil, ErrQueueEmpty
	}

	var skipped *domain.Track
	if slot, ok := p.slots.Get(guildID); ok {
		skipped = slot.Current
	}

	if err := p.starter.Start(ctx, guildID, track); err != nil {
		slog.Error(
			"failed to start skipped-to track",
			"guild", guildID,
			"title", track.Title,
			"error", err,
		)
		return nil, err
	}

	p.slots.SetCurrent(guildID, track, domain.Playing(p.now()))

	slog.Info("skipped track", "guild", guildID, "title", track.Title)

	return &SkipOutput{
		SkippedTrack: skipped,
		Track:        track,
	}, nil
}

// Pause stops transmission and freezes the current track.
// It is a no-op if nothing is playing.
func (p *PlaybackService) Pause(_ context.Context, input PauseInput) (*PauseOutput, error) {
	unlock := p.locks.Lock(input.GuildID)
	defer unlock()

	slot, ok := p.slots.Get(input.GuildID)
	if !ok || slot.Current == nil || slot.State.IsPaused() {
		return &PauseOutput{}, nil
	}

	p.voice.Stop(input.GuildID)
	p.slots.SetState(input.GuildID, domain.Paused())

	slog.Info("paused playback", "guild", input.GuildID, "title", slot.Current.Title)

	return &PauseOutput{
		Track: slot.Current,
	}, nil
}

// Stop halts playback, leaves voice, and empties the guild's slot and queue.
// In-flight resolutions for the guild are invalidated.
func (p *PlaybackService) Stop(ctx context.Context, input StopInput) (*StopOutput, error) {
	unlock := p.locks.Lock(input.GuildID)
	defer unlock()

	p.voice.Stop(input.GuildID)

	disconnected := false
	if p.voice.IsConnected(input.GuildID) {
		if err := p.voice.Leave(ctx, input.GuildID); err != nil {
			return nil, &ConnectionError{Op: "leave", Err: err}
		}
		disconnected = true
	}

	cleared := p.queue.Len(input.GuildID)
	generation := p.queue.Clear(input.GuildID)
	p.slots.ClearCurrent(input.GuildID)

	slog.Info(
		"stopped playback",
		"guild", input.GuildID,
		"cleared", cleared,
		"generation", generation,
	)

	return &StopOutput{
		ClearedCount: cleared,
		Disconnected: disconnected,
	}, nil
}

// requireVoice fails fast when the bot would have no channel to join.
func (p *PlaybackService) requireVoice(guildID, userID snowflake.ID) error {
	if p.voice.IsConnected(guildID) {
		return nil
	}
	_, err := p.locator.UserVoiceChannel(guildID, userID)
	return err
}

// joinVoice connects to the user's voice channel unless the bot is already connected.
func (p *PlaybackService) joinVoice(ctx context.Context, guildID, userID snowflake.ID) error {
	if p.voice.IsConnected(guildID) {
		return nil
	}
	channelID, err := p.locator.UserVoiceChannel(guildID, userID)
	if err != nil {
		return err
	}
	if err := p.voice.Join(ctx, guildID, channelID); err != nil {
		return &ConnectionError{Op: "join", Err: err}
	}
	return nil
}
