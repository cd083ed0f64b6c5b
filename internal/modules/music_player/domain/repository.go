package domain

import (
	"errors"

	"github.com/disgoorg/snowflake/v2"
)

// ErrStaleGeneration is returned when a write is tagged with a queue
// generation that a stop has since invalidated.
var ErrStaleGeneration = errors.New("queue generation is stale")

// QueueStore owns the pending-track FIFO of every guild.
// A guild absent from the store is equivalent to an empty queue.
// All methods are atomic with respect to each other for the same guild.
type QueueStore interface {
	// PushBack appends tracks if generation still matches the guild's current
	// generation, and returns ErrStaleGeneration otherwise.
	PushBack(guildID snowflake.ID, generation uint64, tracks ...*Track) error

	// PopFront removes and returns the first track, or nil if the queue is empty.
	PopFront(guildID snowflake.ID) *Track

	// DropFirst removes up to n tracks from the front and returns how many were removed.
	DropFirst(guildID snowflake.ID, n int) int

	// Len returns the number of pending tracks.
	Len(guildID snowflake.ID) int

	// List returns a snapshot of the pending tracks in play order.
	List(guildID snowflake.ID) []*Track

	// Clear empties the queue and advances the guild's generation.
	// Returns the new generation.
	Clear(guildID snowflake.ID) uint64

	// Generation returns the guild's current generation.
	Generation(guildID snowflake.ID) uint64
}

// PlaybackStore owns the current-track slot of every guild.
type PlaybackStore interface {
	// Get returns the guild's slot, or false if the guild is empty.
	Get(guildID snowflake.ID) (Slot, bool)

	// SetCurrent loads track into the guild's slot with the given state,
	// creating the slot if needed.
	SetCurrent(guildID snowflake.ID, track *Track, state PlaybackState)

	// SetState changes the state of an existing slot.
	// Returns false if the guild has no slot.
	SetState(guildID snowflake.ID, state PlaybackState) bool

	// ClearCurrent removes the guild's slot.
	ClearCurrent(guildID snowflake.ID)

	// Playing returns a snapshot of every slot in the Playing state.
	Playing() []Slot
}
