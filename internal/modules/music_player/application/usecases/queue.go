package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

const DefaultPageSize = 10

// QueueAddInput contains the input for the QueueAdd use case.
type QueueAddInput struct {
	GuildID        snowflake.ID
	URL            string
	ReplyChannelID snowflake.ID
}

// QueueAddOutput contains the result of the QueueAdd use case.
type QueueAddOutput struct {
	URL string
}

// QueueListInput contains the input for the QueueList use case.
type QueueListInput struct {
	GuildID  snowflake.ID
	Page     int // 1-indexed page number
	PageSize int // Items per page (optional, defaults to 10)
}

// QueueListOutput contains the result of the QueueList use case.
type QueueListOutput struct {
	CurrentTrack *domain.Track // nil if the guild has no slot
	Paused       bool
	Tracks       []*domain.Track
	StartIndex   int // 1-indexed queue position of Tracks[0]
	TotalTracks  int
	CurrentPage  int
	TotalPages   int
}

// IsEmpty returns true if there is neither a current track nor anything queued.
func (o *QueueListOutput) IsEmpty() bool {
	return o.CurrentTrack == nil && o.TotalTracks == 0
}

// QueueService handles queue operations.
type QueueService struct {
	queue    domain.QueueStore
	slots    domain.PlaybackStore
	resolver *TrackResolver
}

// NewQueueService creates a new QueueService.
func NewQueueService(
	queue domain.QueueStore,
	slots domain.PlaybackStore,
	resolver *TrackResolver,
) *QueueService {
	return &QueueService{
		queue:    queue,
		slots:    slots,
		resolver: resolver,
	}
}

// Add resolves the URL and appends every resulting track to the queue.
// Tracks stream in after Add returns; each is announced individually.
// The current slot is never touched.
func (q *QueueService) Add(_ context.Context, input QueueAddInput) (*QueueAddOutput, error) {
	url, err := domain.ParseMediaURL(input.URL)
	if err != nil {
		return nil, &InputValidationError{Field: "url", Err: err}
	}

	resolution, err := q.resolver.Resolve(input.GuildID, url, input.ReplyChannelID)
	if err != nil {
		return nil, err
	}
	q.resolver.EnqueueRemaining(resolution, AnnounceEach)

	return &QueueAddOutput{
		URL: url,
	}, nil
}

// List returns the current track and the queue with pagination.
func (q *QueueService) List(input QueueListInput) (*QueueListOutput, error) {
	// Validate and set defaults
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}

	var currentTrack *domain.Track
	paused := false
	if slot, ok := q.slots.Get(input.GuildID); ok {
		currentTrack = slot.Current
		paused = slot.State.IsPaused()
	}

	queuedTracks := q.queue.List(input.GuildID)

	totalTracks := len(queuedTracks)
	totalPages := (totalTracks + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	// Clamp page to valid range
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, totalTracks)

	var pageTracks []*domain.Track
	if start < totalTracks {
		pageTracks = queuedTracks[start:end]
	}

	return &QueueListOutput{
		CurrentTrack: currentTrack,
		Paused:       paused,
		Tracks:       pageTracks,
		StartIndex:   start + 1,
		TotalTracks:  totalTracks,
		CurrentPage:  page,
		TotalPages:   totalPages,
	}, nil
}
