package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/bot"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/usecases"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/infrastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandlers() *CommandHandlers {
	repo := infrastructure.NewMemoryRepository()
	return NewCommandHandlers(
		nil,
		usecases.NewPlaybackService(repo),
		usecases.NewQueueService(repo),
		usecases.NewTrackLoaderService(nil),
		discardLogger(),
	)
}

func commandInteraction(
	name string,
	options ...*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionApplicationCommand,
			GuildID:   "1",
			ChannelID: "3",
			Member:    &discordgo.Member{User: &discordgo.User{ID: "2"}},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: options,
			},
		},
	}
}

func integerOption(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}

func errorDescription(t *testing.T, r *bot.MockResponder) string {
	t.Helper()
	require.NotNil(t, r.LastResponse)
	require.Len(t, r.LastResponse.Data.Embeds, 1)
	embed := r.LastResponse.Data.Embeds[0]
	assert.Equal(t, "Error", embed.Title)
	assert.Equal(t, colorError, embed.Color)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, r.LastResponse.Data.Flags)
	return embed.Description
}

func TestParseInteraction(t *testing.T) {
	ids, err := parseInteraction(commandInteraction("skip"))
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(1), ids.guildID)
	assert.Equal(t, snowflake.ID(2), ids.userID)
	assert.Equal(t, snowflake.ID(3), ids.channelID)

	dm := commandInteraction("skip")
	dm.Member = nil
	_, err = parseInteraction(dm)
	assert.True(t, errors.Is(err, errInvalidInteraction))

	badGuild := commandInteraction("skip")
	badGuild.GuildID = "not-a-guild"
	_, err = parseInteraction(badGuild)
	assert.True(t, errors.Is(err, errInvalidInteraction))
}

func TestCommandHandlers_NotConnected(t *testing.T) {
	h := newTestHandlers()

	tests := []struct {
		name   string
		handle bot.InteractionHandler
		i      *discordgo.InteractionCreate
	}{
		{name: "skip", handle: h.HandleSkip, i: commandInteraction("skip")},
		{name: "stop", handle: h.HandleStop, i: commandInteraction("stop")},
		{name: "start", handle: h.HandleStart, i: commandInteraction("start")},
		{name: "nowplaying", handle: h.HandleNowPlaying, i: commandInteraction("nowplaying")},
		{name: "mute", handle: h.HandleMute, i: commandInteraction("mute")},
		{name: "unmute", handle: h.HandleUnmute, i: commandInteraction("unmute")},
		{name: "volume", handle: h.HandleVolume, i: commandInteraction("volume", integerOption("level", 50))},
		{
			name:   "queue list",
			handle: h.HandleQueue,
			i: commandInteraction("queue", &discordgo.ApplicationCommandInteractionDataOption{
				Name: "list",
				Type: discordgo.ApplicationCommandOptionSubCommand,
			}),
		},
		{
			name:   "queue remove",
			handle: h.HandleQueue,
			i: commandInteraction("queue", &discordgo.ApplicationCommandInteractionDataOption{
				Name:    "remove",
				Type:    discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{integerOption("position", 1)},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &bot.MockResponder{}
			require.NoError(t, tt.handle(nil, tt.i, r))
			assert.Equal(t, "Not connected to a voice channel.", errorDescription(t, r))
		})
	}
}

func TestCommandHandlers_InvalidVolume(t *testing.T) {
	h := newTestHandlers()
	r := &bot.MockResponder{}

	require.NoError(t, h.HandleVolume(nil, commandInteraction("volume", integerOption("level", 2000)), r))
	assert.Equal(t, "Volume must be between 0 and 1000.", errorDescription(t, r))
}

func TestCommandHandlers_CustomBitrateNeedsValue(t *testing.T) {
	h := newTestHandlers()
	r := &bot.MockResponder{}

	i := commandInteraction("bitrate", &discordgo.ApplicationCommandInteractionDataOption{
		Name:  "mode",
		Type:  discordgo.ApplicationCommandOptionString,
		Value: "custom",
	})
	require.NoError(t, h.HandleBitrate(nil, i, r))
	assert.Equal(t, "Custom bitrate needs a kbps value.", errorDescription(t, r))
}

func TestCommandHandlers_OutsideServer(t *testing.T) {
	h := newTestHandlers()
	r := &bot.MockResponder{}

	i := commandInteraction("skip")
	i.Member = nil
	require.NoError(t, h.HandleSkip(nil, i, r))
	assert.Equal(t, "This command can only be used in a server.", errorDescription(t, r))
}

func TestCommandHandlers_QueueWithoutSubcommand(t *testing.T) {
	h := newTestHandlers()
	r := &bot.MockResponder{}

	require.NoError(t, h.HandleQueue(nil, commandInteraction("queue"), r))
	assert.Equal(t, "Missing subcommand", errorDescription(t, r))
}

func TestBitrateDescription(t *testing.T) {
	assert.Equal(t, "Bitrate set to 64 kbps.", bitrateDescription(usecases.BitrateModeAuto, 0))
	assert.Equal(t, "Bitrate set to the server maximum.", bitrateDescription(usecases.BitrateModeMax, 0))
	assert.Equal(t, "Bitrate set to 128 kbps.", bitrateDescription(usecases.BitrateModeCustom, 128000))
}
