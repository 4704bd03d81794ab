// Package playback contains the per-guild playback queue and the facade it
// drives.
package playback

import (
	"context"

	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/ports"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// Facade exposes the operations of a playback engine without adding policy.
// Every method forwards to the engine and returns its result unchanged.
type Facade struct {
	engine ports.PlaybackEngine
}

// NewFacade creates a Facade over engine.
func NewFacade(engine ports.PlaybackEngine) *Facade {
	return &Facade{engine: engine}
}

// Leave disconnects the engine from its voice channel.
func (f *Facade) Leave(ctx context.Context) error {
	return f.engine.Leave(ctx)
}

// Mute self-mutes the connection.
func (f *Facade) Mute(ctx context.Context) error {
	return f.engine.Mute(ctx)
}

// Unmute removes the self-mute.
func (f *Facade) Unmute(ctx context.Context) error {
	return f.engine.Unmute(ctx)
}

// IsMuted reports whether the connection is self-muted.
func (f *Facade) IsMuted(ctx context.Context) (bool, error) {
	return f.engine.IsMuted(ctx)
}

// PlaySource plays a source. A source can only be played once.
func (f *Facade) PlaySource(ctx context.Context, source *domain.Source) (*domain.Handle, error) {
	return f.engine.PlaySource(ctx, source)
}

// PlayOnlySource stops any current playback, then plays the source.
func (f *Facade) PlayOnlySource(
	ctx context.Context,
	source *domain.Source,
) (*domain.Handle, error) {
	return f.engine.PlayOnlySource(ctx, source)
}

// Play plays a track.
func (f *Facade) Play(ctx context.Context, track *domain.Track) (*domain.Handle, error) {
	return f.engine.Play(ctx, track)
}

// PlayOnly stops any current playback, then plays the track.
func (f *Facade) PlayOnly(ctx context.Context, track *domain.Track) (*domain.Handle, error) {
	return f.engine.PlayOnly(ctx, track)
}

// StopTrack stops the playback referred to by handle.
func (f *Facade) StopTrack(ctx context.Context, handle *domain.Handle) error {
	return f.engine.StopTrack(ctx, handle)
}

// SetBitrate sets the voice bitrate in bits per second.
func (f *Facade) SetBitrate(ctx context.Context, bitrate int) error {
	return f.engine.SetBitrate(ctx, bitrate)
}

// SetBitrateToMax sets the highest bitrate the guild allows.
func (f *Facade) SetBitrateToMax(ctx context.Context) error {
	return f.engine.SetBitrateToMax(ctx)
}

// SetBitrateToAuto restores the default bitrate.
func (f *Facade) SetBitrateToAuto(ctx context.Context) error {
	return f.engine.SetBitrateToAuto(ctx)
}

// Stop stops all playback.
func (f *Facade) Stop(ctx context.Context) error {
	return f.engine.Stop(ctx)
}

// SetConfig replaces the engine configuration.
func (f *Facade) SetConfig(ctx context.Context, config domain.Config) error {
	return f.engine.SetConfig(ctx, config)
}

// Config returns the engine configuration.
func (f *Facade) Config(ctx context.Context) (domain.Config, error) {
	return f.engine.Config(ctx)
}

// Subscribe registers handler for engine events of the given kind.
func (f *Facade) Subscribe(kind domain.EventKind, handler domain.EventHandler) error {
	return f.engine.Subscribe(kind, handler)
}
