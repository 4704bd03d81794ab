package usecases

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/playback"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/ports"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
	"github.com/stretchr/testify/require"
)

const (
	testGuildID        = snowflake.ID(1)
	testUserID         = snowflake.ID(2)
	testNotificationID = snowflake.ID(3)
	testVoiceChannelID = snowflake.ID(4)
	waitTimeout        = time.Second
)

var discardLogger = slog.New(slog.DiscardHandler)

func mockTrack(id string) *domain.Track {
	return &domain.Track{
		ID:          domain.TrackID(id),
		Encoded:     "encoded-" + id,
		Title:       "Track " + id,
		Artist:      "Artist",
		Duration:    3 * time.Minute,
		RequesterID: snowflake.ID(123),
	}
}

var errSessionNotFound = errors.New("session not found")

type mockRepository struct {
	mu       sync.Mutex
	sessions map[snowflake.ID]*playback.Session
	deleted  []snowflake.ID
	saveErr  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		sessions: make(map[snowflake.ID]*playback.Session),
	}
}

func (m *mockRepository) Get(_ context.Context, guildID snowflake.ID) (*playback.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[guildID]
	if !ok {
		return nil, errSessionNotFound
	}
	return session, nil
}

func (m *mockRepository) Save(_ context.Context, session *playback.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[session.GuildID()] = session
	return nil
}

func (m *mockRepository) Delete(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, guildID)
	delete(m.sessions, guildID)
	return nil
}

// mockEngine is a test double for ports.PlaybackEngine.
type mockEngine struct {
	mu       sync.Mutex
	handlers map[domain.EventKind][]domain.EventHandler
	played   []*domain.Handle
	stopped  []*domain.Handle
	config   domain.Config
	muted    bool
	bitrate  int
	left     int

	playErr      error
	setConfigErr error

	plays chan *domain.Handle
}

var _ ports.PlaybackEngine = (*mockEngine)(nil)

func newMockEngine() *mockEngine {
	return &mockEngine{
		handlers: make(map[domain.EventKind][]domain.EventHandler),
		config:   domain.DefaultConfig(),
		plays:    make(chan *domain.Handle, 64),
	}
}

func (m *mockEngine) Leave(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.left++
	return nil
}

func (m *mockEngine) Mute(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = true
	return nil
}

func (m *mockEngine) Unmute(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = false
	return nil
}

func (m *mockEngine) IsMuted(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted, nil
}

func (m *mockEngine) Play(_ context.Context, track *domain.Track) (*domain.Handle, error) {
	m.mu.Lock()
	if m.playErr != nil {
		m.mu.Unlock()
		return nil, m.playErr
	}
	handle := domain.NewHandle(testGuildID, track)
	m.played = append(m.played, handle)
	m.mu.Unlock()

	m.plays <- handle
	return handle, nil
}

func (m *mockEngine) PlayOnly(ctx context.Context, track *domain.Track) (*domain.Handle, error) {
	return m.Play(ctx, track)
}

func (m *mockEngine) PlaySource(ctx context.Context, source *domain.Source) (*domain.Handle, error) {
	if err := source.Consume(); err != nil {
		return nil, err
	}
	return m.Play(ctx, &domain.Track{ID: domain.TrackID(source.Identifier), Title: source.Identifier})
}

func (m *mockEngine) PlayOnlySource(ctx context.Context, source *domain.Source) (*domain.Handle, error) {
	return m.PlaySource(ctx, source)
}

func (m *mockEngine) StopTrack(_ context.Context, handle *domain.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = append(m.stopped, handle)
	return nil
}

func (m *mockEngine) Stop(context.Context) error {
	return nil
}

func (m *mockEngine) SetBitrate(_ context.Context, bitrate int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bitrate = bitrate
	return nil
}

func (m *mockEngine) SetBitrateToMax(ctx context.Context) error {
	return m.SetBitrate(ctx, domain.MaxBitrate(0))
}

func (m *mockEngine) SetBitrateToAuto(ctx context.Context) error {
	return m.SetBitrate(ctx, domain.BitrateAuto)
}

func (m *mockEngine) SetConfig(_ context.Context, config domain.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setConfigErr != nil {
		return m.setConfigErr
	}
	m.config = config
	return nil
}

func (m *mockEngine) Config(context.Context) (domain.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config, nil
}

func (m *mockEngine) Subscribe(kind domain.EventKind, handler domain.EventHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[kind] = append(m.handlers[kind], handler)
	return nil
}

func (m *mockEngine) emit(event domain.TrackEvent) {
	m.mu.Lock()
	handlers := append([]domain.EventHandler(nil), m.handlers[event.Kind]...)
	m.mu.Unlock()

	event.GuildID = testGuildID
	for _, handler := range handlers {
		handler(context.Background(), event)
	}
}

func (m *mockEngine) getStopped() []*domain.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Handle(nil), m.stopped...)
}

func (m *mockEngine) getLeft() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.left
}

type mockConnector struct {
	mu         sync.Mutex
	engine     *mockEngine
	connectErr error
	channels   []snowflake.ID
}

func (m *mockConnector) Connect(
	_ context.Context,
	_, channelID snowflake.ID,
) (ports.PlaybackEngine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels = append(m.channels, channelID)
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	return m.engine, nil
}

func (m *mockConnector) getChannels() []snowflake.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]snowflake.ID(nil), m.channels...)
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	_, userID snowflake.ID,
) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

type sentMessage struct {
	channelID snowflake.ID
	messageID snowflake.ID
	track     *domain.Track
}

type mockNotificationSender struct {
	mu       sync.Mutex
	nextID   snowflake.ID
	sent     []sentMessage
	deleted  []snowflake.ID
	errors   []string
	sendErr  error
	messages chan sentMessage
}

func newMockNotificationSender() *mockNotificationSender {
	return &mockNotificationSender{
		nextID:   1000,
		messages: make(chan sentMessage, 64),
	}
}

func (m *mockNotificationSender) SendNowPlaying(
	_, channelID snowflake.ID,
	track *domain.Track,
) (snowflake.ID, error) {
	m.mu.Lock()
	if m.sendErr != nil {
		m.mu.Unlock()
		return 0, m.sendErr
	}
	m.nextID++
	msg := sentMessage{channelID: channelID, messageID: m.nextID, track: track}
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	m.messages <- msg
	return msg.messageID, nil
}

func (m *mockNotificationSender) DeleteMessage(_, messageID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *mockNotificationSender) SendError(_ snowflake.ID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, message)
	return nil
}

func (m *mockNotificationSender) getDeleted() []snowflake.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]snowflake.ID(nil), m.deleted...)
}

func (m *mockNotificationSender) getErrors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errors...)
}

type mockTrackResolver struct {
	mu         sync.Mutex
	loadErr    error
	loadResult *ports.LoadResult
	queries    []string
}

func (m *mockTrackResolver) LoadTracks(_ context.Context, query string) (*ports.LoadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.loadResult, nil
}

func (m *mockTrackResolver) getQueries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// fixture wires a VoiceChannelService to mocks.
type fixture struct {
	repo       *mockRepository
	engine     *mockEngine
	connector  *mockConnector
	voiceState *mockVoiceStateProvider
	sender     *mockNotificationSender
	service    *VoiceChannelService
}

func newFixture() *fixture {
	engine := newMockEngine()
	f := &fixture{
		repo:       newMockRepository(),
		engine:     engine,
		connector:  &mockConnector{engine: engine},
		voiceState: &mockVoiceStateProvider{channels: make(map[snowflake.ID]snowflake.ID)},
		sender:     newMockNotificationSender(),
	}
	f.service = NewVoiceChannelService(
		f.repo,
		f.connector,
		f.voiceState,
		NewNotificationService(f.sender, discardLogger),
		domain.DefaultConfig(),
		discardLogger,
	)
	return f
}

// join connects the fixture to testVoiceChannelID and returns the new session.
func (f *fixture) join(t *testing.T) *playback.Session {
	t.Helper()
	_, err := f.service.Join(t.Context(), JoinInput{
		GuildID:               testGuildID,
		UserID:                testUserID,
		NotificationChannelID: testNotificationID,
		VoiceChannelID:        testVoiceChannelID,
	})
	require.NoError(t, err)

	session, err := f.repo.Get(t.Context(), testGuildID)
	require.NoError(t, err)
	t.Cleanup(session.Queue.Close)
	return session
}

func waitPlay(t *testing.T, engine *mockEngine) *domain.Handle {
	t.Helper()
	select {
	case handle := <-engine.plays:
		return handle
	case <-time.After(waitTimeout):
		require.FailNow(t, "expected a play call")
		return nil
	}
}

func waitMessage(t *testing.T, sender *mockNotificationSender) sentMessage {
	t.Helper()
	select {
	case msg := <-sender.messages:
		return msg
	case <-time.After(waitTimeout):
		require.FailNow(t, "expected a now playing message")
		return sentMessage{}
	}
}
