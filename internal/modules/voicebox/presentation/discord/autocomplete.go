package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/usecases"
)

const (
	maxChoices        = 25
	autocompleteLimit = 2500 * time.Millisecond
)

// AutocompleteHandler handles autocomplete requests.
type AutocompleteHandler struct {
	queue       *usecases.QueueService
	trackLoader *usecases.TrackLoaderService
	logger      *slog.Logger
}

// NewAutocompleteHandler creates a new AutocompleteHandler.
func NewAutocompleteHandler(
	queue *usecases.QueueService,
	trackLoader *usecases.TrackLoaderService,
	logger *slog.Logger,
) *AutocompleteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutocompleteHandler{
		queue:       queue,
		trackLoader: trackLoader,
		logger:      logger,
	}
}

// HandleInteraction routes autocomplete interactions by command.
func (h *AutocompleteHandler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommandAutocomplete {
		return
	}

	data := i.ApplicationCommandData()

	var choices []*discordgo.ApplicationCommandOptionChoice
	switch data.Name {
	case "play", "playnext":
		choices = h.queryChoices(data.Options)
	case "queue":
		if len(data.Options) > 0 && data.Options[0].Name == "remove" {
			choices = h.positionChoices(i.GuildID)
		}
	default:
		return
	}

	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	}); err != nil {
		h.logger.Warn("failed to respond to autocomplete", "command", data.Name, "error", err)
	}
}

// queryChoices suggests search results for the focused query option.
func (h *AutocompleteHandler) queryChoices(
	options []*discordgo.ApplicationCommandInteractionDataOption,
) []*discordgo.ApplicationCommandOptionChoice {
	var query string
	for _, opt := range options {
		if opt.Name == "query" && opt.Focused {
			query = opt.StringValue()
			break
		}
	}

	// Don't search for very short queries
	if len([]rune(query)) < 2 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), autocompleteLimit)
	defer cancel()

	tracks, err := h.trackLoader.Search(ctx, query, maxChoices)
	if err != nil {
		return nil
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(tracks))
	for _, track := range tracks {
		value := track.URI
		if value == "" || len(value) > 100 {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(fmt.Sprintf("🎵 %s - %s", track.Title, track.Artist), 100),
			Value: value,
		})
	}
	return choices
}

// positionChoices suggests the first page of queued items.
func (h *AutocompleteHandler) positionChoices(rawGuildID string) []*discordgo.ApplicationCommandOptionChoice {
	guildID, err := snowflake.Parse(rawGuildID)
	if err != nil {
		h.logger.Warn("failed to parse guild ID in autocomplete", "error", err, "guildID", rawGuildID)
		return nil
	}

	output, err := h.queue.List(context.Background(), usecases.QueueListInput{
		GuildID:  guildID,
		Page:     1,
		PageSize: maxChoices,
	})
	if err != nil {
		return nil
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(output.Entries))
	for _, entry := range output.Entries {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%d. %s", entry.Position, truncate(entry.Label, 90)),
			Value: entry.Position,
		})
	}
	return choices
}
