package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// Handle is an opaque reference to a dispatched playback instance.
type Handle struct {
	ID        uuid.UUID
	GuildID   snowflake.ID
	Track     *Track // the track the engine is actually playing
	StartedAt time.Time
}

// NewHandle creates a Handle for a track that was just dispatched.
func NewHandle(guildID snowflake.ID, track *Track) *Handle {
	return &Handle{
		ID:        uuid.New(),
		GuildID:   guildID,
		Track:     track,
		StartedAt: time.Now().UTC(),
	}
}

// Is reports whether h and other refer to the same playback.
func (h *Handle) Is(other *Handle) bool {
	if h == nil || other == nil {
		return false
	}
	return h.ID == other.ID
}
