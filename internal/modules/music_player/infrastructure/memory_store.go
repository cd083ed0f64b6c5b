package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

// MemoryQueueStore is an in-memory implementation of domain.QueueStore.
// One lock covers every guild.
type MemoryQueueStore struct {
	mu          sync.RWMutex
	queues      map[snowflake.ID]*domain.Queue
	generations map[snowflake.ID]uint64
}

// NewMemoryQueueStore creates a new MemoryQueueStore.
func NewMemoryQueueStore() *MemoryQueueStore {
	return &MemoryQueueStore{
		queues:      make(map[snowflake.ID]*domain.Queue),
		generations: make(map[snowflake.ID]uint64),
	}
}

// PushBack appends tracks to the guild's queue if generation is still current.
func (s *MemoryQueueStore) PushBack(
	guildID snowflake.ID,
	generation uint64,
	tracks ...*domain.Track,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generations[guildID] != generation {
		return domain.ErrStaleGeneration
	}
	if len(tracks) == 0 {
		return nil
	}

	queue, ok := s.queues[guildID]
	if !ok {
		queue = domain.NewQueue()
		s.queues[guildID] = queue
	}
	queue.PushBack(tracks...)
	return nil
}

// PopFront removes and returns the first track of the guild's queue.
func (s *MemoryQueueStore) PopFront(guildID snowflake.ID) *domain.Track {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue, ok := s.queues[guildID]
	if !ok {
		return nil
	}
	track := queue.PopFront()
	if queue.IsEmpty() {
		delete(s.queues, guildID)
	}
	return track
}

// DropFirst removes up to n tracks from the front of the guild's queue.
func (s *MemoryQueueStore) DropFirst(guildID snowflake.ID, n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue, ok := s.queues[guildID]
	if !ok {
		return 0
	}
	dropped := queue.DropFirst(n)
	if queue.IsEmpty() {
		delete(s.queues, guildID)
	}
	return dropped
}

// Len returns the number of pending tracks for the guild.
func (s *MemoryQueueStore) Len(guildID snowflake.ID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queue, ok := s.queues[guildID]
	if !ok {
		return 0
	}
	return queue.Len()
}

// List returns a snapshot of the guild's queue.
func (s *MemoryQueueStore) List(guildID snowflake.ID) []*domain.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queue, ok := s.queues[guildID]
	if !ok {
		return nil
	}
	return queue.List()
}

// Clear empties the guild's queue and advances its generation.
func (s *MemoryQueueStore) Clear(guildID snowflake.ID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.queues, guildID)
	s.generations[guildID]++
	return s.generations[guildID]
}

// Generation returns the guild's current generation.
func (s *MemoryQueueStore) Generation(guildID snowflake.ID) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.generations[guildID]
}

// Count returns the number of guilds with a non-empty queue (for testing/monitoring).
func (s *MemoryQueueStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.queues)
}

// MemoryPlaybackStore is an in-memory implementation of domain.PlaybackStore.
// One lock covers every guild.
type MemoryPlaybackStore struct {
	mu    sync.RWMutex
	slots map[snowflake.ID]domain.Slot
}

// NewMemoryPlaybackStore creates a new MemoryPlaybackStore.
func NewMemoryPlaybackStore() *MemoryPlaybackStore {
	return &MemoryPlaybackStore{
		slots: make(map[snowflake.ID]domain.Slot),
	}
}

// Get returns the guild's slot.
func (s *MemoryPlaybackStore) Get(guildID snowflake.ID) (domain.Slot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[guildID]
	return slot, ok
}

// SetCurrent stores a copy of track as the guild's current track.
func (s *MemoryPlaybackStore) SetCurrent(
	guildID snowflake.ID,
	track *domain.Track,
	state domain.PlaybackState,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[guildID] = domain.Slot{
		GuildID: guildID,
		Current: track.Clone(),
		State:   state,
	}
}

// SetState changes the state of the guild's slot.
func (s *MemoryPlaybackStore) SetState(guildID snowflake.ID, state domain.PlaybackState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[guildID]
	if !ok {
		return false
	}
	slot.State = state
	s.slots[guildID] = slot
	return true
}

// ClearCurrent removes the guild's slot.
func (s *MemoryPlaybackStore) ClearCurrent(guildID snowflake.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, guildID)
}

// Playing returns a snapshot of every Playing slot.
func (s *MemoryPlaybackStore) Playing() []domain.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		if slot.State.IsPlaying() {
			result = append(result, slot)
		}
	}
	return result
}

// Count returns the number of guilds with a slot (for testing/monitoring).
func (s *MemoryPlaybackStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.slots)
}

// Ensure the memory stores implement the domain store interfaces.
var (
	_ domain.QueueStore    = (*MemoryQueueStore)(nil)
	_ domain.PlaybackStore = (*MemoryPlaybackStore)(nil)
)
