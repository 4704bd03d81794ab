package ports

import (
	"context"

	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// PlaybackEngine is the per-connection playback capability of the audio backend.
type PlaybackEngine interface {
	// Leave disconnects from the voice channel and releases the player.
	Leave(ctx context.Context) error

	// Mute and Unmute toggle the self-mute voice state.
	Mute(ctx context.Context) error
	Unmute(ctx context.Context) error
	IsMuted(ctx context.Context) (bool, error)

	// Play starts playback of a track and returns its handle.
	Play(ctx context.Context, track *domain.Track) (*domain.Handle, error)

	// PlayOnly stops any current playback before playing the track.
	PlayOnly(ctx context.Context, track *domain.Track) (*domain.Handle, error)

	// PlaySource consumes the source and plays it.
	// Returns domain.ErrSourceConsumed if the source was already played.
	PlaySource(ctx context.Context, source *domain.Source) (*domain.Handle, error)

	// PlayOnlySource stops any current playback before playing the source.
	PlayOnlySource(ctx context.Context, source *domain.Source) (*domain.Handle, error)

	// StopTrack stops the playback referred to by handle.
	StopTrack(ctx context.Context, handle *domain.Handle) error

	// Stop stops all playback.
	Stop(ctx context.Context) error

	// SetBitrate sets the voice bitrate in bits per second.
	SetBitrate(ctx context.Context, bitrate int) error
	SetBitrateToMax(ctx context.Context) error
	SetBitrateToAuto(ctx context.Context) error

	SetConfig(ctx context.Context, config domain.Config) error
	Config(ctx context.Context) (domain.Config, error)

	// Subscribe registers a handler invoked asynchronously for events of kind.
	Subscribe(kind domain.EventKind, handler domain.EventHandler) error
}
