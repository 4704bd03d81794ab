package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/bot"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/usecases"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

var errInvalidInteraction = errors.New("invalid interaction")

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	voiceChannel *usecases.VoiceChannelService
	playback     *usecases.PlaybackService
	queue        *usecases.QueueService
	trackLoader  *usecases.TrackLoaderService
	logger       *slog.Logger
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
	trackLoader *usecases.TrackLoaderService,
	logger *slog.Logger,
) *CommandHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandHandlers{
		voiceChannel: voiceChannel,
		playback:     playback,
		queue:        queue,
		trackLoader:  trackLoader,
		logger:       logger,
	}
}

// interactionIDs are the IDs every guild command carries.
type interactionIDs struct {
	guildID   snowflake.ID
	userID    snowflake.ID
	channelID snowflake.ID // text channel the command was used in
}

func parseInteraction(i *discordgo.InteractionCreate) (interactionIDs, error) {
	if i.Member == nil || i.Member.User == nil {
		return interactionIDs{}, errors.Wrap(errInvalidInteraction, "command used outside a server")
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return interactionIDs{}, errors.Wrap(errInvalidInteraction, "invalid guild")
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return interactionIDs{}, errors.Wrap(errInvalidInteraction, "invalid user")
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return interactionIDs{}, errors.Wrap(errInvalidInteraction, "invalid notification channel")
	}

	return interactionIDs{guildID: guildID, userID: userID, channelID: channelID}, nil
}

func optionMap(
	options []*discordgo.ApplicationCommandInteractionDataOption,
) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func (h *CommandHandlers) fail(r bot.Responder, command string, err error) error {
	if errors.Is(err, errInvalidInteraction) {
		return respondError(r, "This command can only be used in a server.")
	}
	return respondError(r, userMessage(h.logger, command, err))
}

// join joins the user's voice channel, or refreshes the notification channel
// when already connected there.
func (h *CommandHandlers) join(ctx context.Context, ids interactionIDs) error {
	_, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               ids.guildID,
		UserID:                ids.userID,
		NotificationChannelID: ids.channelID,
	})
	return err
}

// HandleJoin handles the /join command.
func (h *CommandHandlers) HandleJoin(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteraction(i)
	if err != nil {
		return h.fail(r, "join", err)
	}

	var voiceChannelID snowflake.ID
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["channel"]; ok {
		voiceChannelID, err = snowflake.Parse(opt.ChannelValue(s).ID)
		if err != nil {
			return respondError(r, "Invalid voice channel")
		}
	}

	output, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               ids.guildID,
		UserID:                ids.userID,
		NotificationChannelID: ids.channelID,
		VoiceChannelID:        voiceChannelID,
	})
	if err != nil {
		return h.fail(r, "join", err)
	}

	if output.Moved {
		return respond(r, fmt.Sprintf("Moved to <#%d>.", output.VoiceChannelID))
	}
	return respond(r, fmt.Sprintf("Connected to <#%d>.", output.VoiceChannelID))
}

// HandleLeave handles the /leave command.
func (h *CommandHandlers) HandleLeave(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteraction(i)
	if err != nil {
		return h.fail(r, "leave", err)
	}

	if err := h.voiceChannel.Leave(context.Background(), usecases.LeaveInput{
		GuildID: ids.guildID,
	}); err != nil {
		return h.fail(r, "leave", err)
	}

	return respond(r, "Disconnected.")
}

// HandlePlay handles the /play command.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.handleAdd(i, r, "play", false)
}

// HandlePlayNext handles the /playnext command.
func (h *CommandHandlers) HandlePlayNext(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.handleAdd(i, r, "playnext", true)
}

func (h *CommandHandlers) handleAdd(
	i *discordgo.InteractionCreate,
	r bot.Responder,
	command string,
	next bool,
) error {
	ctx := context.Background()

	ids, err := parseInteraction(i)
	if err != nil {
		return h.fail(r, command, err)
	}

	var query string
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["query"]; ok {
		query = opt.StringValue()
	}

	// 1. Join voice channel (or update notification channel if already connected)
	if err := h.join(ctx, ids); err != nil {
		return h.fail(r, command, err)
	}

	// 2. Load tracks (may be single track or playlist)
	loaded, err := h.trackLoader.LoadTracks(ctx, usecases.LoadTracksInput{
		Query:       query,
		RequesterID: ids.userID,
	})
	if err != nil {
		return h.fail(r, command, err)
	}

	// 3. Queue them; the queue starts playback by itself when idle
	var output *usecases.QueueAddOutput
	if next {
		output, err = h.insertFront(ctx, ids, loaded.Tracks)
	} else {
		items := make([]domain.Playable, len(loaded.Tracks))
		for idx, track := range loaded.Tracks {
			items[idx] = track
		}
		output, err = h.queue.Add(ctx, usecases.QueueAddInput{
			GuildID:               ids.guildID,
			Items:                 items,
			NotificationChannelID: ids.channelID,
		})
	}
	if err != nil {
		return h.fail(r, command, err)
	}

	return respond(r, addedDescription(loaded.Tracks, loaded.PlaylistName, output, next))
}

// insertFront inserts tracks at the head of the backlog, keeping their order.
func (h *CommandHandlers) insertFront(
	ctx context.Context,
	ids interactionIDs,
	tracks []*domain.Track,
) (*usecases.QueueAddOutput, error) {
	var first *usecases.QueueAddOutput
	for idx, track := range tracks {
		output, err := h.queue.Insert(ctx, usecases.QueueInsertInput{
			GuildID:               ids.guildID,
			Item:                  track,
			Position:              idx + 1,
			NotificationChannelID: ids.channelID,
		})
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = output
		}
	}
	if first == nil {
		return nil, usecases.ErrNoResults
	}

	first.Count = len(tracks)
	return first, nil
}

// HandleEnqueue handles the /enqueue command.
// Each query is resolved only when the queue reaches it.
func (h *CommandHandlers) HandleEnqueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteraction(i)
	if err != nil {
		return h.fail(r, "enqueue", err)
	}

	var queries []string
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["queries"]; ok {
		queries = splitQueries(opt.StringValue())
	}

	if err := h.join(ctx, ids); err != nil {
		return h.fail(r, "enqueue", err)
	}

	output, err := h.queue.Add(ctx, usecases.QueueAddInput{
		GuildID:               ids.guildID,
		Items:                 h.trackLoader.DeferredAll(queries, ids.userID),
		NotificationChannelID: ids.channelID,
	})
	if err != nil {
		return h.fail(r, "enqueue", err)
	}

	description := fmt.Sprintf("Queued **%d** searches from position %d.", output.Count, output.Position)
	if output.StartsNow {
		description += " Starting playback."
	}
	return respond(r, description)
}

// HandleStream handles the /stream command.
func (h *CommandHandlers) HandleStream(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	ids, err := parseInteraction(i)
	if err != nil {
		return h.fail(r, "stream", err)
	}

	var url string
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["url"]; ok {
		url = opt.StringValue()
	}
	if domain.NewQuery(url).IsEmpty() {
		return h.fail(r, "stream", usecases.ErrNoResults)
	}

	if err := h.join(ctx, ids); err != nil {
		return h.fail(r, "stream", err)
	}

	source := h.trackLoader.Stream(url, ids.userID)
	output, err := h.queue.Add(ctx, usecases.QueueAddInput{
		GuildID:               ids.guildID,
		Items:                 []domain.Playable{source},
		NotificationChannelID: ids.channelID,
	})
	if err != nil {
		return h.fail(r, "stream", err)
	}

	description := fmt.Sprintf("Queued stream %s.", itemLink(source))
	if output.StartsNow {
		description += " Starting playback."
	}
	return respond(r, description)
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteraction(i)
	if err != nil {
		return h.fail(r, "skip", err)
	}

	output, err := h.playback.Skip(context.Background(), usecases.SkipInput{
		GuildID:               ids.guildID,
		NotificationChannelID: ids.channelID,
	})
	if err != nil {
		return h.fail(r, "skip", err)
	}

	return respond(r, fmt.Sprintf("Skipped %s.", trackLink(output.SkippedTrack)))
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteraction(i)
	if err != nil {
		return h.fail(r, "stop", err)
	}

	var keepPlaying bool
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["keep_playing"]; ok {
		keepPlaying = opt.BoolValue()
	}

	if err := h.playback.Stop(context.Background(), usecases.StopInput{
		GuildID:               ids.guildID,
		KeepPlaying:           keepPlaying,
		NotificationChannelID: ids.channelID,
	}); err != nil {
		return h.fail(r, "stop", err)
	}

	if keepPlaying {
		return respond(r, "The queue will stop after the current track.")
	}
	return respond(r, "Stopped playback. Use /start to continue the queue.")
}

// HandleStart handles the /start command.
func (h *CommandHandlers) HandleStart(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteraction(i)
	if err != nil {
		return h.fail(r, "start", err)
	}

	output, err := h.playback.Start(context.Background(), usecases.StartInput{
		GuildID:               ids.guildID,
		NotificationChannelID: ids.channelID,
	})
	if err != nil {
		return h.fail(r, "start", err)
	}

	if output.WasRunning {
		return respond(r, "The queue is already running.")
	}
	return respond(r, "Started the queue.")
}

// HandleNowPlaying handles the /nowplaying command.
func (h *CommandHandlers) HandleNowPlaying(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteraction(i)
	if err != nil {
		return h.fail(r, "nowplaying", err)
	}

	output, err := h.playback.NowPlaying(context.Background(), usecases.NowPlayingInput{
		GuildID: ids.guildID,
	})
	if err != nil {
		return h.fail(r, "nowplaying", err)
	}

	return respondEmbed(r, nowPlayingEmbed(output, time.Now()))
}

// HandleQueue handles the /queue command and its subcommands.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondError(r, "Missing subcommand")
	}

	ids, err := parseInteraction(i)
	if err != nil {
		return h.fail(r, "queue", err)
	}

	sub := options[0]
	switch sub.Name {
	case "list":
		return h.handleQueueList(ids, r, sub.Options)
	case "remove":
		return h.handleQueueRemove(ids, r, sub.Options)
	case "clear":
		return h.handleQueueClear(ids, r)
	default:
		return respondError(r, "Unknown subcommand")
	}
}

func (h *CommandHandlers) handleQueueList(
	ids interactionIDs,
	r bot.Responder,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) error {
	page := 1
	if opt, ok := optionMap(options)["page"]; ok {
		page = int(opt.IntValue())
	}

	output, err := h.queue.List(context.Background(), usecases.QueueListInput{
		GuildID:               ids.guildID,
		Page:                  page,
		NotificationChannelID: ids.channelID,
	})
	if err != nil {
		return h.fail(r, "queue list", err)
	}

	return respondEmbed(r, queueEmbed(output))
}

func (h *CommandHandlers) handleQueueRemove(
	ids interactionIDs,
	r bot.Responder,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) error {
	var position int
	if opt, ok := optionMap(options)["position"]; ok {
		position = int(opt.IntValue())
	}

	output, err := h.queue.Remove(context.Background(), usecases.QueueRemoveInput{
		GuildID:               ids.guildID,
		Position:              position,
		NotificationChannelID: ids.channelID,
	})
	if err != nil {
		return h.fail(r, "queue remove", err)
	}

	return respond(r, fmt.Sprintf("Removed %s.", itemLink(output.Removed)))
}

func (h *CommandHandlers) handleQueueClear(ids interactionIDs, r bot.Responder) error {
	output, err := h.queue.Clear(context.Background(), usecases.QueueClearInput{
		GuildID:               ids.guildID,
		NotificationChannelID: ids.channelID,
	})
	if err != nil {
		return h.fail(r, "queue clear", err)
	}

	return respond(r, fmt.Sprintf("Cleared %d items from the queue.", output.ClearedCount))
}

// HandleMute handles the /mute command.
func (h *CommandHandlers) HandleMute(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteraction(i)
	if err != nil {
		return h.fail(r, "mute", err)
	}

	if err := h.playback.Mute(context.Background(), usecases.MuteInput{
		GuildID:               ids.guildID,
		NotificationChannelID: ids.channelID,
	}); err != nil {
		return h.fail(r, "mute", err)
	}

	return respond(r, "Muted.")
}

// HandleUnmute handles the /unmute command.
func (h *CommandHandlers) HandleUnmute(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteraction(i)
	if err != nil {
		return h.fail(r, "unmute", err)
	}

	if err := h.playback.Unmute(context.Background(), usecases.MuteInput{
		GuildID:               ids.guildID,
		NotificationChannelID: ids.channelID,
	}); err != nil {
		return h.fail(r, "unmute", err)
	}

	return respond(r, "Unmuted.")
}

// HandleBitrate handles the /bitrate command.
func (h *CommandHandlers) HandleBitrate(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteraction(i)
	if err != nil {
		return h.fail(r, "bitrate", err)
	}

	options := optionMap(i.ApplicationCommandData().Options)

	mode := usecases.BitrateModeAuto
	if opt, ok := options["mode"]; ok {
		mode = usecases.BitrateMode(opt.StringValue())
	}

	var bitrate int
	if opt, ok := options["kbps"]; ok {
		bitrate = int(opt.IntValue()) * 1000
	}
	if mode == usecases.BitrateModeCustom && bitrate == 0 {
		return respondError(r, "Custom bitrate needs a kbps value.")
	}

	if err := h.playback.SetBitrate(context.Background(), usecases.SetBitrateInput{
		GuildID:               ids.guildID,
		Mode:                  mode,
		Bitrate:               bitrate,
		NotificationChannelID: ids.channelID,
	}); err != nil {
		return h.fail(r, "bitrate", err)
	}

	return respond(r, bitrateDescription(mode, bitrate))
}

func bitrateDescription(mode usecases.BitrateMode, bitrate int) string {
	switch mode {
	case usecases.BitrateModeMax:
		return "Bitrate set to the server maximum."
	case usecases.BitrateModeCustom:
		return fmt.Sprintf("Bitrate set to %d kbps.", bitrate/1000)
	default:
		return fmt.Sprintf("Bitrate set to %d kbps.", domain.BitrateAuto/1000)
	}
}

// HandleVolume handles the /volume command.
func (h *CommandHandlers) HandleVolume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteraction(i)
	if err != nil {
		return h.fail(r, "volume", err)
	}

	var volume int
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["level"]; ok {
		volume = int(opt.IntValue())
	}

	output, err := h.playback.SetVolume(context.Background(), usecases.SetVolumeInput{
		GuildID:               ids.guildID,
		Volume:                volume,
		NotificationChannelID: ids.channelID,
	})
	if err != nil {
		return h.fail(r, "volume", err)
	}

	return respond(r, fmt.Sprintf("Volume changed from %d to %d.", output.PreviousVolume, volume))
}
