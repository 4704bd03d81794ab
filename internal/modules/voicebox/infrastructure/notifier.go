package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/ports"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// Embed colors.
const (
	colorRed = 0xE74C3C
)

// Notifier sends notifications to Discord channels.
type Notifier struct {
	session    *discordgo.Session
	userInfo   ports.UserInfoProvider
	httpClient *http.Client
	logger     *slog.Logger
}

// NewNotifier creates a new Notifier.
func NewNotifier(
	session *discordgo.Session,
	userInfo ports.UserInfoProvider,
	logger *slog.Logger,
) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		session:  session,
		userInfo: userInfo,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// SendNowPlaying sends a "Now Playing" embed to the channel and returns the message ID.
func (n *Notifier) SendNowPlaying(
	guildID, channelID snowflake.ID,
	track *domain.Track,
) (snowflake.ID, error) {
	requesterName, requesterAvatarURL := n.requester(guildID, track.RequesterID)

	embed := nowPlayingEmbed(track, requesterName, requesterAvatarURL)
	if thumbnailURL := n.getBestThumbnail(track); thumbnailURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{
			URL: thumbnailURL,
		}
	}

	msg, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	if err != nil {
		return 0, errors.Wrap(err, "failed to send now playing message")
	}
	messageID, err := snowflake.Parse(msg.ID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to parse message ID")
	}
	return messageID, nil
}

// DeleteMessage deletes a message from the channel.
func (n *Notifier) DeleteMessage(channelID snowflake.ID, messageID snowflake.ID) error {
	return n.session.ChannelMessageDelete(channelID.String(), messageID.String())
}

// SendError sends an error message embed to the channel.
func (n *Notifier) SendError(channelID snowflake.ID, message string) error {
	embed := &discordgo.MessageEmbed{
		Description: message,
		Color:       colorRed,
	}

	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

func (n *Notifier) requester(guildID, userID snowflake.ID) (name, avatarURL string) {
	if n.userInfo == nil || userID == 0 {
		return "Unknown", ""
	}

	info, err := n.userInfo.GetUserInfo(guildID, userID)
	if err != nil {
		n.logger.Warn("failed to fetch requester info for now playing",
			"guild", guildID,
			"requester", userID,
			"error", err,
		)
		return "Unknown", ""
	}
	return info.DisplayName, info.AvatarURL
}

func nowPlayingEmbed(track *domain.Track, requesterName, requesterAvatarURL string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
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
				Name:   "Duration",
				Value:  track.FormattedDuration(),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text:    fmt.Sprintf("Requested by %s", requesterName),
			IconURL: requesterAvatarURL,
		},
	}

	if !track.EnqueuedAt.IsZero() {
		embed.Timestamp = track.EnqueuedAt.UTC().Format(time.RFC3339)
	}

	return embed
}

// getBestThumbnail attempts to find the best quality thumbnail for the track.
func (n *Notifier) getBestThumbnail(track *domain.Track) string {
	switch track.Platform() {
	case domain.PlatformYouTube:
		return n.getYouTubeThumbnail(string(track.ID), track.ArtworkURL)
	case domain.PlatformTwitch:
		return n.getTwitchThumbnail(track.ArtworkURL)
	default:
		return track.ArtworkURL
	}
}

// getYouTubeThumbnail tries to find the highest quality YouTube thumbnail available.
func (n *Notifier) getYouTubeThumbnail(videoID string, fallbackURL string) string {
	qualities := []string{"maxresdefault", "sddefault", "hqdefault", "mqdefault"}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, quality := range qualities {
		url := fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", videoID, quality)
		if n.urlExists(ctx, url) {
			return url
		}
	}

	return fallbackURL
}

// getTwitchThumbnail tries to get a higher resolution Twitch thumbnail.
func (n *Notifier) getTwitchThumbnail(artworkURL string) string {
	if artworkURL == "" {
		return ""
	}

	highResURL := strings.Replace(artworkURL, "440x248", "1280x720", 1)
	if highResURL == artworkURL {
		return artworkURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if n.urlExists(ctx, highResURL) {
		return highResURL
	}

	return artworkURL
}

// urlExists checks if a URL returns a successful response using a HEAD request.
func (n *Notifier) urlExists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)
