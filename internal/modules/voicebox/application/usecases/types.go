package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/playback"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

// Track is an alias for domain.Track.
type Track = domain.Track

// Playable is an alias for domain.Playable.
type Playable = domain.Playable

// SessionRepository stores the playback session of each connected guild.
type SessionRepository interface {
	// Get returns the session for the guild, or an error if there is none.
	Get(ctx context.Context, guildID snowflake.ID) (*playback.Session, error)
	Save(ctx context.Context, session *playback.Session) error
	Delete(ctx context.Context, guildID snowflake.ID) error
}

// getSession returns the guild's session and optionally redirects its
// notifications to notificationChannelID.
func getSession(
	ctx context.Context,
	repo SessionRepository,
	guildID, notificationChannelID snowflake.ID,
) (*playback.Session, error) {
	session, err := repo.Get(ctx, guildID)
	if err != nil {
		return nil, ErrNotConnected
	}

	if notificationChannelID != 0 {
		session.SetNotificationChannelID(notificationChannelID)
	}

	return session, nil
}
