package infrastructure

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/ports"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

var (
	// ErrTrackNotLoaded is returned when playing a track without encoded data.
	ErrTrackNotLoaded = errors.New("track has no encoded data")

	// ErrSourceNotFound is returned when a source identifier loads no tracks.
	ErrSourceNotFound = errors.New("source did not load any track")
)

// LavalinkEngine is the playback engine of one guild, backed by a disgolink player.
type LavalinkEngine struct {
	adapter    *LavalinkAdapter
	guildID    snowflake.ID
	dispatcher *EventDispatcher
	logger     *slog.Logger

	mu        sync.Mutex
	channelID snowflake.ID
	config    domain.Config
	muted     bool
	current   *domain.Handle
	previous  *domain.Handle // replaced by current, its end event may still be in flight
}

func newLavalinkEngine(
	adapter *LavalinkAdapter,
	guildID, channelID snowflake.ID,
	config domain.Config,
	logger *slog.Logger,
) *LavalinkEngine {
	return &LavalinkEngine{
		adapter:    adapter,
		guildID:    guildID,
		channelID:  channelID,
		config:     config,
		dispatcher: NewEventDispatcher(DefaultEventBufferSize, logger),
		logger:     logger,
	}
}

func (e *LavalinkEngine) setChannelID(channelID snowflake.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.channelID = channelID
}

func (e *LavalinkEngine) voiceFlags() (domain.Config, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config, e.muted
}

// Leave disconnects from the voice channel and releases the player.
func (e *LavalinkEngine) Leave(ctx context.Context) error {
	e.mu.Lock()
	e.current, e.previous = nil, nil
	e.mu.Unlock()

	err := e.adapter.leaveChannel(ctx, e.guildID)
	e.dispatcher.Close()
	return err
}

// Mute sets the self-mute flag.
func (e *LavalinkEngine) Mute(ctx context.Context) error {
	return e.setMuted(true)
}

// Unmute clears the self-mute flag.
func (e *LavalinkEngine) Unmute(ctx context.Context) error {
	return e.setMuted(false)
}

func (e *LavalinkEngine) setMuted(muted bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.adapter.updateVoiceState(e.guildID, e.channelID, muted, e.config.SelfDeaf); err != nil {
		return err
	}
	e.muted = muted
	return nil
}

// IsMuted reports the self-mute flag.
func (e *LavalinkEngine) IsMuted(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted, nil
}

// Play starts playback of a track and returns its handle.
// A track already playing is replaced.
func (e *LavalinkEngine) Play(ctx context.Context, track *domain.Track) (*domain.Handle, error) {
	if track == nil || track.Encoded == "" {
		return nil, ErrTrackNotLoaded
	}

	handle := domain.NewHandle(e.guildID, track)

	e.mu.Lock()
	replaced := e.current
	if replaced != nil {
		e.previous = replaced
	}
	e.current = handle
	e.mu.Unlock()

	player := e.adapter.link.Player(e.guildID)
	if err := player.Update(ctx, lavalink.WithEncodedTrack(track.Encoded)); err != nil {
		e.mu.Lock()
		if e.current == handle {
			e.current = replaced
			if e.previous == replaced {
				e.previous = nil
			}
		}
		e.mu.Unlock()
		return nil, errors.Wrapf(err, "failed to play track %q", track.Title)
	}

	return handle, nil
}

// PlayOnly stops any current playback before playing the track.
func (e *LavalinkEngine) PlayOnly(ctx context.Context, track *domain.Track) (*domain.Handle, error) {
	if err := e.Stop(ctx); err != nil {
		return nil, err
	}
	return e.Play(ctx, track)
}

// PlaySource consumes the source, loads it and plays the first track it yields.
func (e *LavalinkEngine) PlaySource(ctx context.Context, source *domain.Source) (*domain.Handle, error) {
	if err := source.Consume(); err != nil {
		return nil, err
	}

	result, err := e.adapter.loadTracks(ctx, source.Identifier)
	if err != nil {
		return nil, err
	}

	if exception, ok := result.Data.(lavalink.Exception); ok {
		return nil, errors.Wrapf(ErrSourceNotFound, "%s: %s", source.Identifier, exception.Message)
	}

	loaded, ok := firstTrack(result)
	if !ok {
		return nil, errors.Wrapf(ErrSourceNotFound, "%s", source.Identifier)
	}

	return e.Play(ctx, trackFromLavalink(loaded, source.RequesterID))
}

// PlayOnlySource stops any current playback before playing the source.
func (e *LavalinkEngine) PlayOnlySource(ctx context.Context, source *domain.Source) (*domain.Handle, error) {
	if err := e.Stop(ctx); err != nil {
		return nil, err
	}
	return e.PlaySource(ctx, source)
}

// StopTrack stops the playback referred to by handle.
// It does nothing when handle is no longer the current playback.
func (e *LavalinkEngine) StopTrack(ctx context.Context, handle *domain.Handle) error {
	e.mu.Lock()
	active := e.current.Is(handle)
	e.mu.Unlock()

	if !active {
		return nil
	}
	return e.stopPlayer(ctx)
}

// Stop stops all playback.
func (e *LavalinkEngine) Stop(ctx context.Context) error {
	return e.stopPlayer(ctx)
}

func (e *LavalinkEngine) stopPlayer(ctx context.Context) error {
	player := e.adapter.link.Player(e.guildID)
	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return errors.Wrap(err, "failed to stop playback")
	}
	return nil
}

// SetBitrate sets the bitrate of the connected voice channel.
func (e *LavalinkEngine) SetBitrate(ctx context.Context, bitrate int) error {
	maxBitrate := e.maxBitrate()
	if bitrate < domain.BitrateMin || bitrate > maxBitrate {
		return errors.Wrapf(domain.ErrBitrateOutOfRange, "%d is not within [%d, %d]",
			bitrate, domain.BitrateMin, maxBitrate)
	}

	e.mu.Lock()
	channelID := e.channelID
	e.mu.Unlock()

	_, err := e.adapter.session.ChannelEdit(
		channelID.String(),
		&discordgo.ChannelEdit{Bitrate: bitrate},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to set bitrate of channel %s", channelID)
	}
	return nil
}

// SetBitrateToMax sets the highest bitrate the guild premium tier allows.
func (e *LavalinkEngine) SetBitrateToMax(ctx context.Context) error {
	return e.SetBitrate(ctx, e.maxBitrate())
}

// SetBitrateToAuto restores the default voice channel bitrate.
func (e *LavalinkEngine) SetBitrateToAuto(ctx context.Context) error {
	return e.SetBitrate(ctx, domain.BitrateAuto)
}

func (e *LavalinkEngine) maxBitrate() int {
	guild, err := e.adapter.session.State.Guild(e.guildID.String())
	if err != nil {
		return domain.MaxBitrate(0)
	}
	return domain.MaxBitrate(int(guild.PremiumTier))
}

// SetConfig applies the volume and self-deaf flag of config.
func (e *LavalinkEngine) SetConfig(ctx context.Context, config domain.Config) error {
	e.mu.Lock()
	previous := e.config
	channelID, muted := e.channelID, e.muted
	e.mu.Unlock()

	if config.Volume != previous.Volume {
		player := e.adapter.link.Player(e.guildID)
		if err := player.Update(ctx, lavalink.WithVolume(config.Volume)); err != nil {
			return errors.Wrapf(err, "failed to set volume to %d", config.Volume)
		}
	}

	if config.SelfDeaf != previous.SelfDeaf {
		if err := e.adapter.updateVoiceState(e.guildID, channelID, muted, config.SelfDeaf); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.config = config
	e.mu.Unlock()
	return nil
}

// Config returns the applied configuration.
func (e *LavalinkEngine) Config(ctx context.Context) (domain.Config, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config, nil
}

// Subscribe registers a handler invoked asynchronously for events of kind.
func (e *LavalinkEngine) Subscribe(kind domain.EventKind, handler domain.EventHandler) error {
	return e.dispatcher.Subscribe(kind, handler)
}

func (e *LavalinkEngine) publish(event domain.TrackEvent) {
	event.GuildID = e.guildID
	e.dispatcher.Publish(event)
}

// lookupHandle returns the handle playing the encoded track.
func (e *LavalinkEngine) lookupHandle(encoded string) *domain.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, handle := range []*domain.Handle{e.current, e.previous} {
		if handle != nil && handle.Track.Encoded == encoded {
			return handle
		}
	}
	return nil
}

// takeHandle returns the handle that ended and forgets it.
// A replaced track is looked up in the previous slot first.
func (e *LavalinkEngine) takeHandle(encoded string, replaced bool) *domain.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	first, second := &e.current, &e.previous
	if replaced {
		first, second = second, first
	}

	for _, slot := range []**domain.Handle{first, second} {
		if handle := *slot; handle != nil && handle.Track.Encoded == encoded {
			*slot = nil
			return handle
		}
	}
	return nil
}

func trackFromLavalink(track lavalink.Track, requesterID snowflake.ID) *domain.Track {
	info := convertTrack(track)
	return trackFromInfo(info, requesterID)
}

func trackFromInfo(info *ports.TrackInfo, requesterID snowflake.ID) *domain.Track {
	return &domain.Track{
		ID:          domain.TrackID(info.Identifier),
		Encoded:     info.Encoded,
		Title:       info.Title,
		Artist:      info.Artist,
		Duration:    info.Duration,
		URI:         info.URI,
		ArtworkURL:  info.ArtworkURL,
		SourceName:  info.SourceName,
		IsStream:    info.IsStream,
		RequesterID: requesterID,
		EnqueuedAt:  time.Now().UTC(),
	}
}

// Ensure LavalinkEngine implements the engine port.
var _ ports.PlaybackEngine = (*LavalinkEngine)(nil)
