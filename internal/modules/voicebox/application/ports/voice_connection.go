package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceConnector establishes voice connections.
type VoiceConnector interface {
	// Connect joins the voice channel and returns the engine bound to it.
	Connect(ctx context.Context, guildID, channelID snowflake.ID) (PlaybackEngine, error)
}

// VoiceStateProvider reports where guild members are connected.
type VoiceStateProvider interface {
	// GetUserVoiceChannel returns the user's voice channel, or 0 when the user
	// is not connected.
	GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)
}
