package usecases

import (
	"fmt"
	"log/slog"

	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/playback"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/ports"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// NotificationService posts playback notifications to a session's
// notification channel and keeps at most one "Now Playing" message alive.
type NotificationService struct {
	sender ports.NotificationSender
	logger *slog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(sender ports.NotificationSender, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		sender: sender,
		logger: logger,
	}
}

// NowPlaying announces handle and deletes the previous announcement.
func (n *NotificationService) NowPlaying(session *playback.Session, handle *domain.Handle) {
	channelID := session.NotificationChannelID()

	n.logger.Debug("sending now playing notification",
		"guild", session.GuildID(),
		"track", handle.Track.Title,
	)

	messageID, err := n.sender.SendNowPlaying(session.GuildID(), channelID, handle.Track)
	if err != nil {
		n.logger.Error("failed to send now playing notification",
			"guild", session.GuildID(),
			"error", err,
		)
		n.delete(session, session.SwapNowPlayingMessage(nil))
		return
	}

	prev := session.SwapNowPlayingMessage(&playback.NowPlayingMessage{
		ChannelID: channelID,
		MessageID: messageID,
		HandleID:  handle.ID,
	})
	n.delete(session, prev)
}

// PlaybackEnded deletes the announcement of handle if it is still shown.
func (n *NotificationService) PlaybackEnded(session *playback.Session, handle *domain.Handle) {
	if handle == nil {
		return
	}
	n.delete(session, session.TakeNowPlayingMessage(handle.ID))
}

// Dismiss deletes the current announcement, if any.
func (n *NotificationService) Dismiss(session *playback.Session) {
	n.delete(session, session.SwapNowPlayingMessage(nil))
}

// ResolutionFailed reports a queued item that could not be resolved.
func (n *NotificationService) ResolutionFailed(
	session *playback.Session,
	item domain.Playable,
	err error,
) {
	n.logger.Debug("notifying resolution failure",
		"guild", session.GuildID(),
		"item", domain.Label(item),
		"error", err,
	)
	n.sendError(session, fmt.Sprintf("Could not play **%s**, skipping.", domain.Label(item)))
}

// PlaybackFailed reports an item the engine refused to play.
func (n *NotificationService) PlaybackFailed(session *playback.Session, err error) {
	n.sendError(session, fmt.Sprintf("Playback failed: %v", err))
}

// TrackException reports an exception raised while a track was playing.
func (n *NotificationService) TrackException(session *playback.Session, event domain.TrackEvent) {
	title := "the current track"
	if event.Handle != nil && event.Handle.Track != nil {
		title = "**" + event.Handle.Track.Title + "**"
	}
	n.sendError(session, fmt.Sprintf("Error while playing %s: %s", title, event.Message))
}

func (n *NotificationService) sendError(session *playback.Session, message string) {
	if err := n.sender.SendError(session.NotificationChannelID(), message); err != nil {
		n.logger.Warn("failed to send error notification",
			"guild", session.GuildID(),
			"error", err,
		)
	}
}

func (n *NotificationService) delete(session *playback.Session, msg *playback.NowPlayingMessage) {
	if msg == nil {
		return
	}

	n.logger.Debug("deleting now playing message",
		"guild", session.GuildID(),
		"message_id", msg.MessageID,
	)

	if err := n.sender.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
		n.logger.Warn("failed to delete now playing message",
			"guild", session.GuildID(),
			"error", err,
		)
	}
}
