package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/usecases"
)

// EventHandlers handles Discord gateway events for voicebox.
type EventHandlers struct {
	botID        snowflake.ID
	voiceChannel *usecases.VoiceChannelService
	logger       *slog.Logger
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(
	botID snowflake.ID,
	voiceChannel *usecases.VoiceChannelService,
	logger *slog.Logger,
) *EventHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandlers{
		botID:        botID,
		voiceChannel: voiceChannel,
		logger:       logger,
	}
}

// HandleVoiceStateUpdate handles VoiceStateUpdate events for the bot.
func (h *EventHandlers) HandleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	input, ok := h.botVoiceStateChange(event)
	if !ok {
		return
	}

	h.voiceChannel.HandleBotVoiceStateChange(context.Background(), input)
}

// botVoiceStateChange converts an update of the bot's own voice state.
// It reports false for other users and malformed events.
func (h *EventHandlers) botVoiceStateChange(
	event *discordgo.VoiceStateUpdate,
) (usecases.BotVoiceStateChangeInput, bool) {
	if event.VoiceState == nil || event.UserID != h.botID.String() {
		return usecases.BotVoiceStateChangeInput{}, false
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		h.logger.Error("failed to parse guild ID in voice state update", "error", err)
		return usecases.BotVoiceStateChangeInput{}, false
	}

	// nil means disconnected
	var newChannelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			h.logger.Error("failed to parse channel ID in voice state update", "error", err)
			return usecases.BotVoiceStateChangeInput{}, false
		}
		newChannelID = &id
	}

	return usecases.BotVoiceStateChangeInput{
		GuildID:      guildID,
		NewChannelID: newChannelID,
	}, true
}
