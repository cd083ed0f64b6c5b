package usecases

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// GuildLocks serializes multi-step state transitions per guild.
// Store locks are never held across I/O; a guild lock may be.
type GuildLocks struct {
	mu    sync.Mutex
	locks map[snowflake.ID]*sync.Mutex
}

// NewGuildLocks creates a new GuildLocks.
func NewGuildLocks() *GuildLocks {
	return &GuildLocks{
		locks: make(map[snowflake.ID]*sync.Mutex),
	}
}

func (g *GuildLocks) get(guildID snowflake.ID) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[guildID] = l
	}
	return l
}

// Lock blocks until the guild's transition lock is held and returns its release func.
func (g *GuildLocks) Lock(guildID snowflake.ID) func() {
	l := g.get(guildID)
	l.Lock()
	return l.Unlock
}

// TryLock acquires the guild's transition lock without waiting.
// Returns false if another transition is in progress.
func (g *GuildLocks) TryLock(guildID snowflake.ID) (func(), bool) {
	l := g.get(guildID)
	if !l.TryLock() {
		return nil, false
	}
	return l.Unlock, true
}
