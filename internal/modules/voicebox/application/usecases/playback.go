package usecases

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/playback"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// Volume bounds accepted by Lavalink.
const (
	MinVolume = 0
	MaxVolume = 1000
)

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	SkippedTrack *domain.Track
}

// StartInput contains the input for the Start use case.
type StartInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// StartOutput contains the result of the Start use case.
type StartOutput struct {
	WasRunning bool
}

// StopInput contains the input for the Stop use case.
type StopInput struct {
	GuildID               snowflake.ID
	KeepPlaying           bool         // only stop advancing, let the current track finish
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// NowPlayingInput contains the input for the NowPlaying use case.
type NowPlayingInput struct {
	GuildID snowflake.ID
}

// NowPlayingOutput contains the result of the NowPlaying use case.
type NowPlayingOutput struct {
	Track     *domain.Track
	StartedAt time.Time
	State     playback.State
	Queued    int
}

// MuteInput contains the input for the Mute and Unmute use cases.
type MuteInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// BitrateMode selects how SetBitrate picks the bitrate.
type BitrateMode string

const (
	BitrateModeAuto   BitrateMode = "auto"
	BitrateModeMax    BitrateMode = "max"
	BitrateModeCustom BitrateMode = "custom"
)

// SetBitrateInput contains the input for the SetBitrate use case.
type SetBitrateInput struct {
	GuildID               snowflake.ID
	Mode                  BitrateMode
	Bitrate               int          // bits per second, used with BitrateModeCustom
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// SetVolumeInput contains the input for the SetVolume use case.
type SetVolumeInput struct {
	GuildID               snowflake.ID
	Volume                int
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// SetVolumeOutput contains the result of the SetVolume use case.
type SetVolumeOutput struct {
	PreviousVolume int
}

// PlaybackService handles playback control of a session.
type PlaybackService struct {
	repo SessionRepository
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(repo SessionRepository) *PlaybackService {
	return &PlaybackService{repo: repo}
}

// Skip stops the current track. The queue moves on to the next item.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	session, err := getSession(ctx, p.repo, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	handle := session.Queue.Handle()
	if err := session.Queue.Skip(ctx); err != nil {
		if errors.Is(err, domain.ErrNoActiveTrack) {
			return nil, ErrNotPlaying
		}
		return nil, err
	}

	var skipped *domain.Track
	if handle != nil {
		skipped = handle.Track
	}
	return &SkipOutput{SkippedTrack: skipped}, nil
}

// Start resumes self-advance of the queue.
func (p *PlaybackService) Start(ctx context.Context, input StartInput) (*StartOutput, error) {
	session, err := getSession(ctx, p.repo, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	wasRunning := session.Queue.Running()
	if err := session.Queue.Start(); err != nil {
		return nil, err
	}

	return &StartOutput{WasRunning: wasRunning}, nil
}

// Stop halts self-advance and, unless KeepPlaying is set, the current track.
// The backlog is kept.
func (p *PlaybackService) Stop(ctx context.Context, input StopInput) error {
	session, err := getSession(ctx, p.repo, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return err
	}

	session.Queue.Stop()
	if input.KeepPlaying {
		return nil
	}

	handle := session.Queue.Handle()
	if handle == nil {
		return nil
	}
	if err := session.Connection.StopTrack(ctx, handle); err != nil {
		return errors.Wrap(err, "failed to stop current track")
	}
	return nil
}

// NowPlaying returns what the session is playing.
func (p *PlaybackService) NowPlaying(ctx context.Context, input NowPlayingInput) (*NowPlayingOutput, error) {
	session, err := getSession(ctx, p.repo, input.GuildID, 0)
	if err != nil {
		return nil, err
	}

	handle := session.Queue.Handle()
	if handle == nil {
		return nil, ErrNotPlaying
	}

	return &NowPlayingOutput{
		Track:     handle.Track,
		StartedAt: handle.StartedAt,
		State:     session.Queue.State(),
		Queued:    session.Queue.Backlog().Len(),
	}, nil
}

// Mute self-mutes the bot in the voice channel.
func (p *PlaybackService) Mute(ctx context.Context, input MuteInput) error {
	session, err := getSession(ctx, p.repo, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return err
	}
	return session.Connection.Mute(ctx)
}

// Unmute removes the self-mute.
func (p *PlaybackService) Unmute(ctx context.Context, input MuteInput) error {
	session, err := getSession(ctx, p.repo, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return err
	}
	return session.Connection.Unmute(ctx)
}

// SetBitrate changes the bitrate of the voice channel.
func (p *PlaybackService) SetBitrate(ctx context.Context, input SetBitrateInput) error {
	session, err := getSession(ctx, p.repo, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return err
	}

	switch input.Mode {
	case BitrateModeMax:
		return session.Connection.SetBitrateToMax(ctx)
	case BitrateModeCustom:
		if input.Bitrate < domain.BitrateMin {
			return ErrInvalidBitrate
		}
		return session.Connection.SetBitrate(ctx, input.Bitrate)
	default:
		return session.Connection.SetBitrateToAuto(ctx)
	}
}

// SetVolume changes the player volume.
func (p *PlaybackService) SetVolume(ctx context.Context, input SetVolumeInput) (*SetVolumeOutput, error) {
	if input.Volume < MinVolume || input.Volume > MaxVolume {
		return nil, ErrInvalidVolume
	}

	session, err := getSession(ctx, p.repo, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	config, err := session.Connection.Config(ctx)
	if err != nil {
		return nil, err
	}
	previous := config.Volume

	config.Volume = input.Volume
	if err := session.Connection.SetConfig(ctx, config); err != nil {
		return nil, err
	}

	return &SetVolumeOutput{PreviousVolume: previous}, nil
}
