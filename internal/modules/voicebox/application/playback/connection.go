package playback

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/ports"
)

// Connection is a live voice connection in one guild. It embeds the Facade so
// hosts can drive the engine directly.
type Connection struct {
	*Facade

	guildID snowflake.ID

	mu        sync.RWMutex
	channelID snowflake.ID
	alive     bool
}

// Connect joins the voice channel through connector.
func Connect(
	ctx context.Context,
	connector ports.VoiceConnector,
	guildID, channelID snowflake.ID,
) (*Connection, error) {
	engine, err := connector.Connect(ctx, guildID, channelID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to voice channel %d", channelID)
	}

	return &Connection{
		Facade:    NewFacade(engine),
		guildID:   guildID,
		channelID: channelID,
		alive:     true,
	}, nil
}

// GuildID returns the ID of the guild this connection is in.
func (c *Connection) GuildID() snowflake.ID {
	return c.guildID
}

// ChannelID returns the ID of the voice channel this connection is in.
func (c *Connection) ChannelID() snowflake.ID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channelID
}

// SetChannelID records that the bot was moved to another voice channel.
func (c *Connection) SetChannelID(channelID snowflake.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channelID = channelID
}

// IsAlive returns true until Disconnect is called.
func (c *Connection) IsAlive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.alive
}

// Disconnect leaves the voice channel. Calling it more than once is a no-op.
func (c *Connection) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return nil
	}
	c.alive = false
	c.mu.Unlock()

	return c.Leave(ctx)
}
