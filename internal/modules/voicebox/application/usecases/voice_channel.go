package usecases

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/playback"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/ports"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	VoiceChannelID        snowflake.ID // Optional: specific channel to join (0 means use user's channel)
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID snowflake.ID
	Moved          bool // an existing session moved channels
}

// LeaveInput contains the input for the Leave use case.
type LeaveInput struct {
	GuildID snowflake.ID
}

// BotVoiceStateChangeInput contains the input for handling bot voice state changes.
type BotVoiceStateChangeInput struct {
	GuildID      snowflake.ID
	NewChannelID *snowflake.ID // nil means disconnected
}

// VoiceChannelService handles voice channel operations and owns session lifecycles.
type VoiceChannelService struct {
	repo          SessionRepository
	connector     ports.VoiceConnector
	voiceState    ports.VoiceStateProvider
	notifications *NotificationService
	config        domain.Config
	logger        *slog.Logger
}

// NewVoiceChannelService creates a new VoiceChannelService.
func NewVoiceChannelService(
	repo SessionRepository,
	connector ports.VoiceConnector,
	voiceState ports.VoiceStateProvider,
	notifications *NotificationService,
	config domain.Config,
	logger *slog.Logger,
) *VoiceChannelService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VoiceChannelService{
		repo:          repo,
		connector:     connector,
		voiceState:    voiceState,
		notifications: notifications,
		config:        config,
		logger:        logger,
	}
}

// Join joins the bot to a voice channel, creating a session with a running queue.
// Joining another channel while connected moves the session and keeps its queue.
func (v *VoiceChannelService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	voiceChannelID := input.VoiceChannelID
	if voiceChannelID == 0 {
		userChannel, err := v.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
		if err != nil {
			return nil, err
		}
		if userChannel == 0 {
			return nil, ErrUserNotInVoice
		}
		voiceChannelID = userChannel
	}

	if session, err := v.repo.Get(ctx, input.GuildID); err == nil {
		return v.move(ctx, session, voiceChannelID, input.NotificationChannelID)
	}

	connectCtx := ctx
	if v.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, v.config.ConnectTimeout)
		defer cancel()
	}

	conn, err := playback.Connect(connectCtx, v.connector, input.GuildID, voiceChannelID)
	if err != nil {
		return nil, err
	}

	session, err := v.newSession(ctx, conn, input.NotificationChannelID)
	if err != nil {
		if leaveErr := conn.Disconnect(ctx); leaveErr != nil {
			v.logger.Warn("failed to leave after session setup failed",
				"guild", input.GuildID,
				"error", leaveErr,
			)
		}
		return nil, err
	}

	if err := v.repo.Save(ctx, session); err != nil {
		session.Queue.Close()
		_ = conn.Disconnect(ctx)
		return nil, errors.Wrap(err, "failed to save session")
	}

	v.logger.Info("joined voice channel", "guild", input.GuildID, "channel", voiceChannelID)

	return &JoinOutput{VoiceChannelID: voiceChannelID}, nil
}

func (v *VoiceChannelService) move(
	ctx context.Context,
	session *playback.Session,
	voiceChannelID, notificationChannelID snowflake.ID,
) (*JoinOutput, error) {
	session.SetNotificationChannelID(notificationChannelID)

	conn := session.Connection
	if conn.ChannelID() == voiceChannelID {
		return &JoinOutput{VoiceChannelID: voiceChannelID}, nil
	}

	if _, err := v.connector.Connect(ctx, conn.GuildID(), voiceChannelID); err != nil {
		return nil, errors.Wrapf(err, "failed to move to voice channel %d", voiceChannelID)
	}
	conn.SetChannelID(voiceChannelID)

	return &JoinOutput{VoiceChannelID: voiceChannelID, Moved: true}, nil
}

func (v *VoiceChannelService) newSession(
	ctx context.Context,
	conn *playback.Connection,
	notificationChannelID snowflake.ID,
) (*playback.Session, error) {
	if err := conn.SetConfig(ctx, v.config); err != nil {
		return nil, errors.Wrap(err, "failed to apply player config")
	}

	session := playback.NewSession(conn, nil, notificationChannelID)

	if err := conn.Subscribe(domain.EventTrackEnd, func(_ context.Context, event domain.TrackEvent) {
		v.notifications.PlaybackEnded(session, event.Handle)
	}); err != nil {
		return nil, errors.Wrap(err, "failed to subscribe to track end events")
	}
	if err := conn.Subscribe(domain.EventTrackException, func(_ context.Context, event domain.TrackEvent) {
		v.notifications.TrackException(session, event)
	}); err != nil {
		return nil, errors.Wrap(err, "failed to subscribe to track exceptions")
	}

	queue, err := playback.NewQueue(ctx, conn.Facade,
		playback.WithLogger(v.logger.With("guild", conn.GuildID())),
		playback.WithOnNext(func(_ context.Context, _ *playback.Facade, handle *domain.Handle) {
			v.notifications.NowPlaying(session, handle)
		}),
		playback.WithOnFail(func(_ context.Context, _ *playback.Facade, item domain.Playable, err error) {
			v.notifications.ResolutionFailed(session, item, err)
		}),
		playback.WithOnError(func(_ context.Context, err error) {
			v.notifications.PlaybackFailed(session, err)
		}),
	)
	if err != nil {
		return nil, err
	}
	session.Queue = queue

	return session, nil
}

// HandleBotVoiceStateChange handles external voice state changes (bot moved or disconnected).
// This should be called when the bot's voice state changes due to external factors
// (e.g., being moved by a user or disconnected by Discord).
func (v *VoiceChannelService) HandleBotVoiceStateChange(
	ctx context.Context,
	input BotVoiceStateChangeInput,
) {
	session, err := v.repo.Get(ctx, input.GuildID)
	if err != nil {
		return
	}

	if input.NewChannelID == nil {
		v.logger.Info("disconnected from voice channel", "guild", input.GuildID)
		if err := v.teardown(ctx, session); err != nil {
			v.logger.Warn("failed to clean up after disconnect",
				"guild", input.GuildID,
				"error", err,
			)
		}
		return
	}

	if *input.NewChannelID != session.Connection.ChannelID() {
		session.Connection.SetChannelID(*input.NewChannelID)
	}
}

// Leave leaves the voice channel and deletes the session.
func (v *VoiceChannelService) Leave(ctx context.Context, input LeaveInput) error {
	session, err := v.repo.Get(ctx, input.GuildID)
	if err != nil {
		return ErrNotConnected
	}

	return v.teardown(ctx, session)
}

func (v *VoiceChannelService) teardown(ctx context.Context, session *playback.Session) error {
	v.notifications.Dismiss(session)
	session.Queue.Close()

	leaveErr := session.Connection.Disconnect(ctx)
	if err := v.repo.Delete(ctx, session.GuildID()); err != nil {
		return errors.Wrap(err, "failed to delete session")
	}
	return leaveErr
}
