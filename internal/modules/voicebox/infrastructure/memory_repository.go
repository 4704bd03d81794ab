package infrastructure

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/playback"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/usecases"
)

// ErrSessionNotFound is returned when a guild has no session.
var ErrSessionNotFound = errors.New("session not found")

// MemoryRepository is an in-memory implementation of usecases.SessionRepository.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[snowflake.ID]*playback.Session
}

// NewMemoryRepository creates a new MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[snowflake.ID]*playback.Session),
	}
}

// Get returns the session for the given guild, or error if not exists.
func (r *MemoryRepository) Get(
	_ context.Context,
	guildID snowflake.ID,
) (*playback.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[guildID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Save stores the session.
func (r *MemoryRepository) Save(_ context.Context, session *playback.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.GuildID()] = session
	return nil
}

// Delete removes the session for the given guild.
func (r *MemoryRepository) Delete(_ context.Context, guildID snowflake.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, guildID)
	return nil
}

// All returns every stored session.
func (r *MemoryRepository) All() []*playback.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*playback.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Count returns the number of sessions (for testing/monitoring).
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Ensure MemoryRepository implements usecases.SessionRepository.
var _ usecases.SessionRepository = (*MemoryRepository)(nil)
