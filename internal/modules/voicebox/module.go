package voicebox

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/sglre6355/voicebox/internal/bot"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/usecases"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/infrastructure"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/presentation/discord"
)

const (
	connectTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func init() {
	bot.Register(&Module{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*Module)(nil)

// Module provides voice channel playback commands backed by Lavalink.
type Module struct {
	config *Config
	logger *slog.Logger

	lavalinkAdapter *infrastructure.LavalinkAdapter
	repo            *infrastructure.MemoryRepository
	voiceChannel    *usecases.VoiceChannelService

	commandHandlers *discord.CommandHandlers
	autocomplete    *discord.AutocompleteHandler
	eventHandlers   *discord.EventHandlers
}

// Name returns the module name.
func (m *Module) Name() string {
	return "voicebox"
}

// Commands returns the slash commands for this module.
func (m *Module) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *Module) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"join":       m.commandHandlers.HandleJoin,
		"leave":      m.commandHandlers.HandleLeave,
		"play":       m.commandHandlers.HandlePlay,
		"playnext":   m.commandHandlers.HandlePlayNext,
		"enqueue":    m.commandHandlers.HandleEnqueue,
		"stream":     m.commandHandlers.HandleStream,
		"skip":       m.commandHandlers.HandleSkip,
		"stop":       m.commandHandlers.HandleStop,
		"start":      m.commandHandlers.HandleStart,
		"nowplaying": m.commandHandlers.HandleNowPlaying,
		"queue":      m.commandHandlers.HandleQueue,
		"mute":       m.commandHandlers.HandleMute,
		"unmute":     m.commandHandlers.HandleUnmute,
		"bitrate":    m.commandHandlers.HandleBitrate,
		"volume":     m.commandHandlers.HandleVolume,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *Module) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		m.handleVoiceServerUpdate,
		m.handleVoiceStateUpdate,
		m.handleInteractionCreate,
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *Module) LoadConfig() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init connects to Lavalink and wires the module's services.
func (m *Module) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errors.New("voicebox module requires a Discord session")
	}
	if m.config == nil {
		return errors.New("voicebox module config is not loaded")
	}

	m.logger = deps.Logger
	if m.logger == nil {
		m.logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	engineConfig := m.config.Engine()

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(
		ctx,
		deps.Session,
		m.config.Lavalink(),
		engineConfig,
		m.logger.With("component", "lavalink"),
	)
	if err != nil {
		return errors.Wrap(err, "failed to connect to Lavalink")
	}
	m.lavalinkAdapter = lavalinkAdapter

	// Infrastructure
	m.repo = infrastructure.NewMemoryRepository()
	guildState := infrastructure.NewGuildState(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session, guildState, m.logger)

	// Use cases
	notifications := usecases.NewNotificationService(notifier, m.logger)
	m.voiceChannel = usecases.NewVoiceChannelService(
		m.repo,
		lavalinkAdapter,
		guildState,
		notifications,
		engineConfig,
		m.logger,
	)
	playback := usecases.NewPlaybackService(m.repo)
	queue := usecases.NewQueueService(m.repo)
	trackLoader := usecases.NewTrackLoaderService(lavalinkAdapter)

	// Presentation
	m.commandHandlers = discord.NewCommandHandlers(
		m.voiceChannel,
		playback,
		queue,
		trackLoader,
		m.logger,
	)
	m.autocomplete = discord.NewAutocompleteHandler(queue, trackLoader, m.logger)
	m.eventHandlers = discord.NewEventHandlers(lavalinkAdapter.BotID(), m.voiceChannel, m.logger)

	m.logger.Info("initialized voicebox module")

	return nil
}

// Shutdown leaves every voice channel and closes the Lavalink connection.
func (m *Module) Shutdown() error {
	if m.lavalinkAdapter == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs error
	for _, session := range m.repo.All() {
		err := m.voiceChannel.Leave(ctx, usecases.LeaveInput{GuildID: session.GuildID()})
		if err != nil && !errors.Is(err, usecases.ErrNotConnected) {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "failed to leave guild %s", session.GuildID()))
		}
	}

	m.lavalinkAdapter.Close(ctx)

	return errs
}

func (m *Module) handleVoiceServerUpdate(_ *discordgo.Session, event *discordgo.VoiceServerUpdate) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *Module) handleVoiceStateUpdate(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}
}

func (m *Module) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if m.autocomplete != nil {
		m.autocomplete.HandleInteraction(s, i)
	}
}
