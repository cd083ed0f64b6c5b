package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/boombox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

// Messages sent while a resolution streams in.
const (
	msgItemFailed  = "There was a problem processing a video in the playlist, it was not added"
	msgQueued      = "Queued %s"
	msgQueueLength = "%d songs are in the queue"
)

// Resolution is an in-flight MetadataSource fetch bound to the queue
// generation that was current when it started.
type Resolution struct {
	GuildID        snowflake.ID
	URL            string
	ReplyChannelID snowflake.ID

	results    <-chan ports.FetchResult
	cancel     context.CancelFunc
	generation uint64
}

// Cancel stops the resolver and discards anything it has not yet delivered.
func (r *Resolution) Cancel() {
	r.cancel()
	for range r.results {
	}
}

// EnqueueMode controls what is announced while the rest of a resolution is enqueued.
type EnqueueMode int

const (
	// AnnounceEach notifies the title of every enqueued track.
	AnnounceEach EnqueueMode = iota
	// AnnounceTotal notifies the queue length once the resolution is exhausted.
	AnnounceTotal
)

// TrackResolver streams MetadataSource output into the queue store.
// Resolutions outlive the command that started them; Close cancels them all.
type TrackResolver struct {
	metadata ports.MetadataSource
	queue    domain.QueueStore
	notifier ports.Notifier

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTrackResolver creates a new TrackResolver.
func NewTrackResolver(
	metadata ports.MetadataSource,
	queue domain.QueueStore,
	notifier ports.Notifier,
) *TrackResolver {
	ctx, cancel := context.WithCancel(context.Background())
	return &TrackResolver{
		metadata: metadata,
		queue:    queue,
		notifier: notifier,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Resolve starts fetching url for the guild.
func (t *TrackResolver) Resolve(
	guildID snowflake.ID,
	url string,
	replyChannelID snowflake.ID,
) (*Resolution, error) {
	generation := t.queue.Generation(guildID)

	ctx, cancel := context.WithCancel(t.ctx)
	results, err := t.metadata.Fetch(ctx, url, replyChannelID)
	if err != nil {
		cancel()
		return nil, &ResolutionError{URL: url, Err: err}
	}

	return &Resolution{
		GuildID:        guildID,
		URL:            url,
		ReplyChannelID: replyChannelID,
		results:        results,
		cancel:         cancel,
		generation:     generation,
	}, nil
}

// First returns the first valid track of the resolution, reporting every
// failed item before it. Returns nil if the resolution ends without one.
func (t *TrackResolver) First(r *Resolution) *domain.Track {
	for result := range r.results {
		if track := t.accept(r, result); track != nil {
			return track
		}
	}
	return nil
}

// Stale reports whether the guild's queue was cleared since r started.
func (t *TrackResolver) Stale(r *Resolution) bool {
	return t.queue.Generation(r.GuildID) != r.generation
}

// EnqueueRemaining appends the rest of the resolution to the guild's queue
// in the background. It stops early if the queue was cleared since the
// resolution started.
func (t *TrackResolver) EnqueueRemaining(r *Resolution, mode EnqueueMode) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer r.cancel()

		added := 0
		for result := range r.results {
			track := t.accept(r, result)
			if track == nil {
				continue
			}

			err := t.queue.PushBack(r.GuildID, r.generation, track)
			if errors.Is(err, domain.ErrStaleGeneration) {
				slog.Info(
					"dropping resolution after queue was cleared",
					"guild", r.GuildID,
					"url", r.URL,
					"added", added,
				)
				r.Cancel()
				return
			}

			added++
			slog.Debug("queued track", "guild", r.GuildID, "title", track.Title)
			if mode == AnnounceEach {
				t.notifier.Notify(r.ReplyChannelID, fmt.Sprintf(msgQueued, track.Title))
			}
		}

		if mode == AnnounceTotal && !t.Stale(r) {
			t.notifier.Notify(
				r.ReplyChannelID,
				fmt.Sprintf(msgQueueLength, t.queue.Len(r.GuildID)),
			)
		}
	}()
}

// accept validates one result and reports it if it failed.
func (t *TrackResolver) accept(r *Resolution, result ports.FetchResult) *domain.Track {
	if result.Err == nil && result.Track != nil && result.Track.IsValid() {
		return result.Track
	}

	err := result.Err
	if err == nil {
		err = errors.New("incomplete track metadata")
	}
	slog.Warn(
		"failed to process resolved item",
		"guild", r.GuildID,
		"url", r.URL,
		"error", &ResolutionError{URL: r.URL, Err: err},
	)
	t.notifier.Notify(r.ReplyChannelID, msgItemFailed)
	return nil
}

// Wait blocks until every background enqueue has finished.
func (t *TrackResolver) Wait() {
	t.wg.Wait()
}

// Close cancels all in-flight resolutions and waits for them to finish.
func (t *TrackResolver) Close() {
	t.cancel()
	t.wg.Wait()
}
