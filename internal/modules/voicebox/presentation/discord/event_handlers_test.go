package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventHandlers_BotVoiceStateChange(t *testing.T) {
	h := NewEventHandlers(snowflake.ID(99), nil, discardLogger())

	tests := []struct {
		name        string
		state       *discordgo.VoiceState
		ok          bool
		wantChannel *snowflake.ID
	}{
		{name: "other user", state: &discordgo.VoiceState{UserID: "5", GuildID: "1", ChannelID: "2"}},
		{name: "missing state", state: nil},
		{name: "invalid guild", state: &discordgo.VoiceState{UserID: "99", GuildID: "x", ChannelID: "2"}},
		{name: "invalid channel", state: &discordgo.VoiceState{UserID: "99", GuildID: "1", ChannelID: "x"}},
		{name: "moved", state: &discordgo.VoiceState{UserID: "99", GuildID: "1", ChannelID: "2"}, ok: true, wantChannel: ptr(snowflake.ID(2))},
		{name: "disconnected", state: &discordgo.VoiceState{UserID: "99", GuildID: "1"}, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, ok := h.botVoiceStateChange(&discordgo.VoiceStateUpdate{VoiceState: tt.state})
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, snowflake.ID(1), input.GuildID)
			assert.Equal(t, tt.wantChannel, input.NewChannelID)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
