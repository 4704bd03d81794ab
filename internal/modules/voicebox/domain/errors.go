package domain

import "github.com/cockroachdb/errors"

// Playback error taxonomy.
var (
	// ErrResolution marks a pending item that failed to resolve.
	ErrResolution = errors.New("failed to resolve playable")

	// ErrInvalidPlayable is returned when a resolved value is neither a track nor a source.
	ErrInvalidPlayable = errors.New("not a playable object, must be a track or a source")

	// ErrNoActiveTrack is returned when skipping with nothing playing.
	ErrNoActiveTrack = errors.New("no track is playing")

	// ErrSourceConsumed is returned by the engine when a source is played twice.
	ErrSourceConsumed = errors.New("source has already been consumed")

	// ErrBitrateOutOfRange is returned when a bitrate exceeds what the guild allows.
	ErrBitrateOutOfRange = errors.New("bitrate is not allowed in this server")
)
