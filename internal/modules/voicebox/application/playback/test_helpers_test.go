package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/ports"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
	"github.com/stretchr/testify/require"
)

const (
	testGuildID   = snowflake.ID(1)
	testChannelID = snowflake.ID(100)
	waitTimeout   = time.Second
	quietPeriod   = 50 * time.Millisecond
)

func mockTrack(id string) *domain.Track {
	return &domain.Track{
		ID:       domain.TrackID(id),
		Encoded:  "encoded-" + id,
		Title:    "Track " + id,
		Artist:   "Artist",
		Duration: 3 * time.Minute,
	}
}

func resolvingTo(p domain.Playable) *domain.Pending {
	return domain.NewPending(fmt.Sprintf("pending %v", p), domain.ResolveFunc(
		func(context.Context) (domain.Playable, error) {
			return p, nil
		},
	))
}

func failing(label string) *domain.Pending {
	return domain.NewPending(label, domain.ResolveFunc(
		func(context.Context) (domain.Playable, error) {
			return nil, errors.Newf("%s: no results", label)
		},
	))
}

// fakeEngine is a test double for ports.PlaybackEngine.
type fakeEngine struct {
	mu             sync.Mutex
	handlers       map[domain.EventKind][]domain.EventHandler
	subscribeCalls int
	dispatched     []*domain.Handle
	stoppedTracks  []*domain.Handle
	stopCalls      int
	leaveCalls     int
	muted          bool
	bitrate        int
	config         domain.Config

	playErr      error
	stopTrackErr error
	subscribeErr error
	leaveErr     error

	plays chan *domain.Handle
}

var _ ports.PlaybackEngine = (*fakeEngine)(nil)

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		handlers: make(map[domain.EventKind][]domain.EventHandler),
		config:   domain.DefaultConfig(),
		bitrate:  domain.BitrateAuto,
		plays:    make(chan *domain.Handle, 64),
	}
}

func (e *fakeEngine) Leave(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.leaveCalls++
	return e.leaveErr
}

func (e *fakeEngine) Mute(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = true
	return nil
}

func (e *fakeEngine) Unmute(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = false
	return nil
}

func (e *fakeEngine) IsMuted(context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted, nil
}

func (e *fakeEngine) Play(_ context.Context, track *domain.Track) (*domain.Handle, error) {
	e.mu.Lock()
	if e.playErr != nil {
		e.mu.Unlock()
		return nil, e.playErr
	}
	handle := domain.NewHandle(testGuildID, track)
	e.dispatched = append(e.dispatched, handle)
	e.mu.Unlock()

	e.plays <- handle
	return handle, nil
}

func (e *fakeEngine) PlayOnly(ctx context.Context, track *domain.Track) (*domain.Handle, error) {
	if err := e.Stop(ctx); err != nil {
		return nil, err
	}
	return e.Play(ctx, track)
}

func (e *fakeEngine) PlaySource(ctx context.Context, source *domain.Source) (*domain.Handle, error) {
	if err := source.Consume(); err != nil {
		return nil, err
	}
	return e.Play(ctx, &domain.Track{
		ID:      domain.TrackID(source.Identifier),
		Encoded: "encoded-" + source.Identifier,
		Title:   source.Identifier,
	})
}

func (e *fakeEngine) PlayOnlySource(
	ctx context.Context,
	source *domain.Source,
) (*domain.Handle, error) {
	if err := e.Stop(ctx); err != nil {
		return nil, err
	}
	return e.PlaySource(ctx, source)
}

func (e *fakeEngine) StopTrack(_ context.Context, handle *domain.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stoppedTracks = append(e.stoppedTracks, handle)
	return e.stopTrackErr
}

func (e *fakeEngine) Stop(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopCalls++
	return nil
}

func (e *fakeEngine) SetBitrate(_ context.Context, bitrate int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bitrate = bitrate
	return nil
}

func (e *fakeEngine) SetBitrateToMax(ctx context.Context) error {
	return e.SetBitrate(ctx, domain.MaxBitrate(0))
}

func (e *fakeEngine) SetBitrateToAuto(ctx context.Context) error {
	return e.SetBitrate(ctx, domain.BitrateAuto)
}

func (e *fakeEngine) SetConfig(_ context.Context, config domain.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config = config
	return nil
}

func (e *fakeEngine) Config(context.Context) (domain.Config, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config, nil
}

func (e *fakeEngine) Subscribe(kind domain.EventKind, handler domain.EventHandler) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subscribeErr != nil {
		return e.subscribeErr
	}
	e.subscribeCalls++
	e.handlers[kind] = append(e.handlers[kind], handler)
	return nil
}

// endTrack delivers an end-of-track event for handle to every subscriber.
func (e *fakeEngine) endTrack(handle *domain.Handle, reason domain.TrackEndReason) {
	e.mu.Lock()
	handlers := append([]domain.EventHandler(nil), e.handlers[domain.EventTrackEnd]...)
	e.mu.Unlock()

	for _, handler := range handlers {
		handler(context.Background(), domain.TrackEvent{
			Kind:    domain.EventTrackEnd,
			GuildID: testGuildID,
			Handle:  handle,
			Reason:  reason,
		})
	}
}

func (e *fakeEngine) getStoppedTracks() []*domain.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*domain.Handle(nil), e.stoppedTracks...)
}

func (e *fakeEngine) getSubscribeCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.subscribeCalls
}

func (e *fakeEngine) setPlayErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playErr = err
}

// waitPlay returns the next dispatched handle or fails the test.
func waitPlay(t *testing.T, e *fakeEngine) *domain.Handle {
	t.Helper()
	select {
	case handle := <-e.plays:
		return handle
	case <-time.After(waitTimeout):
		require.FailNow(t, "expected a play call")
		return nil
	}
}

// assertNoPlay fails the test if anything is dispatched within quietPeriod.
func assertNoPlay(t *testing.T, e *fakeEngine) {
	t.Helper()
	select {
	case handle := <-e.plays:
		require.FailNowf(t, "unexpected play call", "played %q", handle.Track.Title)
	case <-time.After(quietPeriod):
	}
}

func newTestQueue(t *testing.T, opts ...Option) (*Queue, *fakeEngine) {
	t.Helper()
	engine := newFakeEngine()
	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)

	q, err := NewQueue(t.Context(), NewFacade(engine), opts...)
	require.NoError(t, err)
	t.Cleanup(q.Close)

	return q, engine
}

// fakeConnector is a test double for ports.VoiceConnector.
type fakeConnector struct {
	engine     *fakeEngine
	connectErr error
	calls      int
}

func (c *fakeConnector) Connect(
	_ context.Context,
	_, _ snowflake.ID,
) (ports.PlaybackEngine, error) {
	c.calls++
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	return c.engine, nil
}
