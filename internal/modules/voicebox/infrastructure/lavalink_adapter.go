package infrastructure

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/ports"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// ErrNoNode is returned when no Lavalink node is available.
var ErrNoNode = errors.New("no available Lavalink node")

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	NodeName string
	Address  string
	Password string
	Secure   bool
}

// LavalinkAdapter wraps DisGoLink to implement the port interfaces.
// It owns one LavalinkEngine per connected guild.
type LavalinkAdapter struct {
	link    disgolink.Client
	session *discordgo.Session
	botID   snowflake.ID
	config  domain.Config // initial config of new engines
	logger  *slog.Logger

	// handshakes holds the voice joins waiting for gateway events
	handshakesMu sync.Mutex
	handshakes   map[snowflake.ID]*voiceHandshake

	enginesMu sync.RWMutex
	engines   map[snowflake.ID]*LavalinkEngine
}

// NewLavalinkAdapter creates a new LavalinkAdapter and connects to the Lavalink node.
func NewLavalinkAdapter(
	ctx context.Context,
	session *discordgo.Session,
	lavalinkConfig LavalinkConfig,
	config domain.Config,
	logger *slog.Logger,
) (*LavalinkAdapter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse bot ID")
	}

	adapter := newLavalinkAdapter(session, botID, config, logger)

	adapter.link = disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
	)

	nodeName := lavalinkConfig.NodeName
	if nodeName == "" {
		nodeName = "main"
	}

	node, err := adapter.link.AddNode(ctx, disgolink.NodeConfig{
		Name:     nodeName,
		Address:  lavalinkConfig.Address,
		Password: lavalinkConfig.Password,
		Secure:   lavalinkConfig.Secure,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to add Lavalink node")
	}

	logger.Info("connected to Lavalink", "node", node.Config().Name, "address", lavalinkConfig.Address)

	return adapter, nil
}

func newLavalinkAdapter(
	session *discordgo.Session,
	botID snowflake.ID,
	config domain.Config,
	logger *slog.Logger,
) *LavalinkAdapter {
	return &LavalinkAdapter{
		session:      session,
		botID:        botID,
		config:       config,
		logger:       logger,
		handshakes:   make(map[snowflake.ID]*voiceHandshake),
		engines:      make(map[snowflake.ID]*LavalinkEngine),
	}
}

// BotID returns the bot user ID.
func (c *LavalinkAdapter) BotID() snowflake.ID {
	return c.botID
}

// Close destroys all engines and closes the Lavalink client.
func (c *LavalinkAdapter) Close(ctx context.Context) {
	c.enginesMu.RLock()
	engines := make([]*LavalinkEngine, 0, len(c.engines))
	for _, engine := range c.engines {
		engines = append(engines, engine)
	}
	c.enginesMu.RUnlock()

	for _, engine := range engines {
		if err := engine.Leave(ctx); err != nil {
			c.logger.Warn("failed to leave voice channel", "guild", engine.guildID, "error", err)
		}
	}

	c.link.Close()
}

// Connect joins the voice channel and returns the engine of the guild.
// When the guild already has an engine, the bot is moved and the same engine is returned.
func (c *LavalinkAdapter) Connect(
	ctx context.Context,
	guildID, channelID snowflake.ID,
) (ports.PlaybackEngine, error) {
	engine := c.engine(guildID)

	config := c.config
	muted := false
	if engine != nil {
		config, muted = engine.voiceFlags()
	}

	if err := c.joinChannel(ctx, guildID, channelID, muted, config, engine == nil); err != nil {
		return nil, err
	}

	if engine != nil {
		engine.setChannelID(channelID)
		return engine, nil
	}

	engine = newLavalinkEngine(c, guildID, channelID, c.config, c.logger.With("guild", guildID))

	c.enginesMu.Lock()
	c.engines[guildID] = engine
	c.enginesMu.Unlock()

	return engine, nil
}

// joinChannel sends the voice state update and waits for the gateway to confirm it.
// A fresh connection also waits for the voice server update.
func (c *LavalinkAdapter) joinChannel(
	ctx context.Context,
	guildID, channelID snowflake.ID,
	muted bool,
	config domain.Config,
	needsServer bool,
) error {
	handshake := newVoiceHandshake(needsServer)

	c.handshakesMu.Lock()
	c.handshakes[guildID] = handshake
	c.handshakesMu.Unlock()

	defer func() {
		c.handshakesMu.Lock()
		if c.handshakes[guildID] == handshake {
			delete(c.handshakes, guildID)
		}
		c.handshakesMu.Unlock()
	}()

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), muted, config.SelfDeaf)
	if err != nil {
		return errors.Wrap(err, "failed to join voice channel")
	}

	timeout := config.ConnectTimeout
	if timeout <= 0 {
		timeout = domain.DefaultConfig().ConnectTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-handshake.ready:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "context cancelled while waiting for voice connection")
	case <-timer.C:
		return errors.Newf("timeout waiting for voice connection after %s", timeout)
	}
}

// updateVoiceState changes the self-mute and self-deaf flags without waiting for confirmation.
func (c *LavalinkAdapter) updateVoiceState(guildID, channelID snowflake.ID, muted, deafened bool) error {
	if err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), muted, deafened); err != nil {
		return errors.Wrap(err, "failed to update voice state")
	}
	return nil
}

// leaveChannel destroys the player of the guild and disconnects from voice.
func (c *LavalinkAdapter) leaveChannel(ctx context.Context, guildID snowflake.ID) error {
	c.enginesMu.Lock()
	delete(c.engines, guildID)
	c.enginesMu.Unlock()

	if player := c.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			c.logger.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
	}

	if err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, false); err != nil {
		return errors.Wrap(err, "failed to leave voice channel")
	}
	return nil
}

func (c *LavalinkAdapter) engine(guildID snowflake.ID) *LavalinkEngine {
	c.enginesMu.RLock()
	defer c.enginesMu.RUnlock()
	return c.engines[guildID]
}

// LoadTracks loads tracks from Lavalink.
func (c *LavalinkAdapter) LoadTracks(
	ctx context.Context,
	query string,
) (*ports.LoadResult, error) {
	result, err := c.loadTracks(ctx, query)
	if err != nil {
		return nil, err
	}
	return convertLoadResult(result), nil
}

func (c *LavalinkAdapter) loadTracks(ctx context.Context, query string) (*lavalink.LoadResult, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, ErrNoNode
	}

	result, err := node.LoadTracks(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load tracks for %q", query)
	}
	return result, nil
}

// convertLoadResult converts Lavalink result to ports result.
func convertLoadResult(result *lavalink.LoadResult) *ports.LoadResult {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return &ports.LoadResult{
			Type:   ports.LoadTypeTrack,
			Tracks: []*ports.TrackInfo{convertTrack(data)},
		}

	case lavalink.Playlist:
		tracks := make([]*ports.TrackInfo, len(data.Tracks))
		for i, track := range data.Tracks {
			tracks[i] = convertTrack(track)
		}
		return &ports.LoadResult{
			Type:         ports.LoadTypePlaylist,
			Tracks:       tracks,
			PlaylistName: data.Info.Name,
		}

	case lavalink.Search:
		tracks := make([]*ports.TrackInfo, len(data))
		for i, track := range data {
			tracks[i] = convertTrack(track)
		}
		return &ports.LoadResult{
			Type:   ports.LoadTypeSearch,
			Tracks: tracks,
		}

	case lavalink.Exception:
		return &ports.LoadResult{
			Type:    ports.LoadTypeError,
			Message: data.Message,
		}

	default:
		return &ports.LoadResult{
			Type: ports.LoadTypeEmpty,
		}
	}
}

// firstTrack returns the track a direct load or search would play first.
func firstTrack(result *lavalink.LoadResult) (lavalink.Track, bool) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return data, true
	case lavalink.Playlist:
		if len(data.Tracks) > 0 {
			return data.Tracks[0], true
		}
	case lavalink.Search:
		if len(data) > 0 {
			return data[0], true
		}
	}
	return lavalink.Track{}, false
}

// convertTrack converts a Lavalink track to TrackInfo.
func convertTrack(track lavalink.Track) *ports.TrackInfo {
	info := track.Info

	return &ports.TrackInfo{
		Identifier: info.Identifier,
		Encoded:    track.Encoded,
		Title:      info.Title,
		Artist:     info.Author,
		Duration:   time.Duration(info.Length) * time.Millisecond,
		URI:        derefString(info.URI),
		ArtworkURL: derefString(info.ArtworkURL),
		SourceName: info.SourceName,
		IsStream:   info.IsStream,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OnVoiceServerUpdate handles Discord voice server updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		c.logger.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	server := voiceServer{token: event.Token, endpoint: event.Endpoint}
	if handshake := c.handshake(guildID); handshake != nil {
		forwardState, forwardServer := handshake.offerServer(server)
		c.forwardVoice(guildID, forwardState, forwardServer)
		return
	}

	// Discord moves connected bots to another voice server without a join
	if c.isConnected(guildID) {
		c.forwardVoice(guildID, nil, &server)
	}
}

// OnVoiceStateUpdate handles Discord voice state updates of the bot.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.VoiceState == nil || event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		c.logger.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// An empty channel ID means the bot left voice
	state := voiceState{sessionID: event.SessionID}
	if event.ChannelID != "" {
		channelID, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			c.logger.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		state.channelID = &channelID
	}

	if state.channelID != nil {
		if handshake := c.handshake(guildID); handshake != nil {
			forwardState, forwardServer := handshake.offerState(state)
			c.forwardVoice(guildID, forwardState, forwardServer)
			return
		}
	}

	// A leave, or a move made outside Connect, e.g. by a moderator
	if state.channelID == nil || c.isConnected(guildID) {
		c.forwardVoice(guildID, &state, nil)
	}
}

func (c *LavalinkAdapter) isConnected(guildID snowflake.ID) bool {
	return c.engine(guildID) != nil && c.link.ExistingPlayer(guildID) != nil
}

func (c *LavalinkAdapter) handshake(guildID snowflake.ID) *voiceHandshake {
	c.handshakesMu.Lock()
	defer c.handshakesMu.Unlock()
	return c.handshakes[guildID]
}

// forwardVoice passes voice events to Lavalink, the state before the server
// so the player knows its session when the connection is made.
func (c *LavalinkAdapter) forwardVoice(guildID snowflake.ID, state *voiceState, server *voiceServer) {
	if state != nil {
		c.logger.Debug("forwarding voice state to Lavalink", "guild", guildID, "channel", state.channelID)
		c.link.OnVoiceStateUpdate(context.Background(), guildID, state.channelID, state.sessionID)
	}
	if server != nil {
		c.logger.Debug("forwarding voice server to Lavalink", "guild", guildID, "endpoint", server.endpoint)
		c.link.OnVoiceServerUpdate(context.Background(), guildID, server.token, server.endpoint)
	}
}

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	c.logger.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)

	if engine := c.engine(player.GuildID()); engine != nil {
		engine.publish(domain.TrackEvent{
			Kind:   domain.EventTrackStart,
			Handle: engine.lookupHandle(event.Track.Encoded),
		})
	}
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	c.logger.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)

	if engine := c.engine(player.GuildID()); engine != nil {
		reason := convertEndReason(event.Reason)
		engine.publish(domain.TrackEvent{
			Kind:   domain.EventTrackEnd,
			Handle: engine.takeHandle(event.Track.Encoded, reason == domain.TrackEndReplaced),
			Reason: reason,
		})
	}
}

func (c *LavalinkAdapter) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	c.logger.Warn("track exception", "guild", player.GuildID(), "error", event.Exception.Message)

	if engine := c.engine(player.GuildID()); engine != nil {
		engine.publish(domain.TrackEvent{
			Kind:    domain.EventTrackException,
			Handle:  engine.lookupHandle(event.Track.Encoded),
			Message: event.Exception.Message,
		})
	}
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	c.logger.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)

	if engine := c.engine(player.GuildID()); engine != nil {
		engine.publish(domain.TrackEvent{
			Kind:    domain.EventTrackStuck,
			Handle:  engine.lookupHandle(event.Track.Encoded),
			Message: "stuck for " + (time.Duration(event.Threshold) * time.Millisecond).String(),
		})
	}
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.TrackEndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}

// Ensure LavalinkAdapter implements port interfaces.
var (
	_ ports.VoiceConnector = (*LavalinkAdapter)(nil)
	_ ports.TrackResolver  = (*LavalinkAdapter)(nil)
)
