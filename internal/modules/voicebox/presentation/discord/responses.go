package discord

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/sglre6355/voicebox/internal/bot"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/usecases"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// userErrors are shown to the user as they are.
var userErrors = []error{
	usecases.ErrNotConnected,
	usecases.ErrUserNotInVoice,
	usecases.ErrNotPlaying,
	usecases.ErrNoResults,
	usecases.ErrQueueEmpty,
	usecases.ErrInvalidPosition,
	usecases.ErrInvalidVolume,
	usecases.ErrInvalidBitrate,
	usecases.ErrLoadFailed,
	domain.ErrBitrateOutOfRange,
}

// userMessage returns the message shown for err. Unexpected errors are logged
// and replaced by a generic message.
func userMessage(logger *slog.Logger, command string, err error) string {
	for _, known := range userErrors {
		if errors.Is(err, known) {
			return sentence(known.Error())
		}
	}

	logger.Error("command failed", "command", command, "error", err)
	return "Something went wrong. Please try again later."
}

// sentence capitalizes s and terminates it with a period.
func sentence(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

func respond(r bot.Responder, description string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: description,
					Color:       colorSuccess,
				},
			},
		},
	})
}

func respondEmbed(r bot.Responder, embed *discordgo.MessageEmbed) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Error",
					Description: message,
					Color:       colorError,
				},
			},
		},
	})
}

// trackLink formats a track as a markdown link when it has a URI.
func trackLink(track *domain.Track) string {
	if track.URI != "" {
		return fmt.Sprintf("[%s](%s)", track.Title, track.URI)
	}
	return fmt.Sprintf("**%s**", track.Title)
}

// itemLink formats any queued item.
func itemLink(item domain.Playable) string {
	if track, ok := item.(*domain.Track); ok {
		return trackLink(track)
	}
	return fmt.Sprintf("**%s**", domain.Label(item))
}

// addedDescription describes tracks that were just queued.
func addedDescription(tracks []*domain.Track, playlistName string, output *usecases.QueueAddOutput, next bool) string {
	where := "to the queue"
	if next {
		where = "to the front of the queue"
	}

	var description string
	if playlistName != "" {
		description = fmt.Sprintf("Added **%d tracks** from playlist **%s** %s.", output.Count, playlistName, where)
	} else {
		description = fmt.Sprintf("Added %s %s.", trackLink(tracks[0]), where)
	}

	if output.StartsNow {
		description += " Starting playback."
	}
	return description
}

// writeEntryLine writes a single queue entry line to the string builder.
// Escapes period to prevent Discord markdown list formatting.
func writeEntryLine(sb *strings.Builder, entry usecases.QueueEntry) {
	switch {
	case entry.Track != nil && entry.Track.URI != "":
		fmt.Fprintf(sb, "%d\\. [%s](%s) - %s\n",
			entry.Position, entry.Track.Title, entry.Track.URI, entry.Track.Artist)
	case entry.Track != nil:
		fmt.Fprintf(sb, "%d\\. **%s** - %s\n", entry.Position, entry.Track.Title, entry.Track.Artist)
	case entry.Kind == domain.KindSource:
		fmt.Fprintf(sb, "%d\\. 📡 %s\n", entry.Position, entry.Label)
	default:
		fmt.Fprintf(sb, "%d\\. 🔎 %s\n", entry.Position, entry.Label)
	}
}

// queueEmbed renders a queue listing.
func queueEmbed(output *usecases.QueueListOutput) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Queue",
		Color: colorSuccess,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d/%d · %d queued · %s",
				output.CurrentPage, output.TotalPages, output.TotalItems, output.State),
		},
	}

	var sb strings.Builder
	if output.CurrentTrack != nil {
		sb.WriteString("### Now Playing\n")
		fmt.Fprintf(&sb, "%s - %s\n", trackLink(output.CurrentTrack), output.CurrentTrack.Artist)
	}

	if len(output.Entries) > 0 {
		sb.WriteString("### Up Next\n")
		for _, entry := range output.Entries {
			writeEntryLine(&sb, entry)
		}
	}

	if sb.Len() == 0 {
		embed.Description = "Queue is empty."
	} else {
		embed.Description = sb.String()
	}
	return embed
}

// nowPlayingEmbed renders the current track with its elapsed time.
func nowPlayingEmbed(output *usecases.NowPlayingOutput, now time.Time) *discordgo.MessageEmbed {
	track := output.Track

	position := track.FormattedDuration()
	if !track.IsStream {
		elapsed := min(max(now.Sub(output.StartedAt), 0), track.Duration)
		position = (&domain.Track{Duration: elapsed}).FormattedDuration() + " / " + position
	}

	return &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: "Now Playing",
		},
		Title: track.Title,
		URL:   track.URI,
		Color: track.Platform().Color(),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Artist",
				Value:  track.Artist,
				Inline: true,
			},
			{
				Name:   "Position",
				Value:  position,
				Inline: true,
			},
			{
				Name:   "Queue",
				Value:  fmt.Sprintf("%d waiting · %s", output.Queued, output.State),
				Inline: true,
			},
		},
	}
}

// splitQueries splits a ';' or newline separated list, dropping blanks.
func splitQueries(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ';' || r == '\n'
	})

	queries := make([]string, 0, len(fields))
	for _, field := range fields {
		if field = strings.TrimSpace(field); field != "" {
			queries = append(queries, field)
		}
	}
	return queries
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
