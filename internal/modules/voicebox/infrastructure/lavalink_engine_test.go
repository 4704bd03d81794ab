package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const engineGuildID = snowflake.ID(1)

func newTestEngine(t *testing.T) *LavalinkEngine {
	t.Helper()
	engine := newLavalinkEngine(nil, engineGuildID, snowflake.ID(2), domain.DefaultConfig(), discardLogger())
	t.Cleanup(engine.dispatcher.Close)
	return engine
}

func handleFor(encoded string) *domain.Handle {
	return domain.NewHandle(engineGuildID, &domain.Track{ID: domain.TrackID(encoded), Encoded: encoded, Title: encoded})
}

func TestLavalinkEngine_TakeHandle(t *testing.T) {
	tests := []struct {
		name      string
		encoded   string
		replaced  bool
		want      string // "current", "previous" or "" for none
		remaining string
	}{
		{name: "finished current", encoded: "b", want: "current", remaining: "previous"},
		{name: "replaced previous", encoded: "a", replaced: true, want: "previous", remaining: "current"},
		{name: "unknown track", encoded: "z", want: "", remaining: "both"},
		{name: "replaced falls back to current", encoded: "b", replaced: true, want: "current", remaining: "previous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t)
			previous, current := handleFor("a"), handleFor("b")
			engine.previous, engine.current = previous, current

			got := engine.takeHandle(tt.encoded, tt.replaced)

			switch tt.want {
			case "current":
				assert.Same(t, current, got)
			case "previous":
				assert.Same(t, previous, got)
			default:
				assert.Nil(t, got)
			}

			switch tt.remaining {
			case "current":
				assert.Same(t, current, engine.current)
				assert.Nil(t, engine.previous)
			case "previous":
				assert.Same(t, previous, engine.previous)
				assert.Nil(t, engine.current)
			case "both":
				assert.Same(t, current, engine.current)
				assert.Same(t, previous, engine.previous)
			}
		})
	}
}

func TestLavalinkEngine_LookupHandle(t *testing.T) {
	engine := newTestEngine(t)
	previous, current := handleFor("a"), handleFor("b")
	engine.previous, engine.current = previous, current

	assert.Same(t, current, engine.lookupHandle("b"))
	assert.Same(t, previous, engine.lookupHandle("a"))
	assert.Nil(t, engine.lookupHandle("c"))

	// Lookups never forget a handle
	assert.Same(t, current, engine.current)
	assert.Same(t, previous, engine.previous)
}

func TestLavalinkEngine_StopTrackIgnoresStaleHandle(t *testing.T) {
	engine := newTestEngine(t)
	engine.current = handleFor("b")

	// The adapter is nil, so reaching the player would panic
	assert.NoError(t, engine.StopTrack(context.Background(), handleFor("b")))
	assert.NoError(t, engine.StopTrack(context.Background(), nil))
}

func TestLavalinkEngine_PlayRejectsUnloadedTrack(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Play(context.Background(), &domain.Track{Title: "no data"})
	assert.ErrorIs(t, err, ErrTrackNotLoaded)

	_, err = engine.Play(context.Background(), nil)
	assert.ErrorIs(t, err, ErrTrackNotLoaded)
}

func TestLavalinkEngine_PlaySourceConsumesOnce(t *testing.T) {
	engine := newTestEngine(t)
	source := domain.NewSource("https://radio.example/live", 0)
	require.NoError(t, source.Consume())

	_, err := engine.PlaySource(context.Background(), source)
	assert.ErrorIs(t, err, domain.ErrSourceConsumed)
}

func TestLavalinkEngine_PublishStampsGuild(t *testing.T) {
	engine := newTestEngine(t)

	received := make(chan domain.TrackEvent, 1)
	require.NoError(t, engine.Subscribe(domain.EventTrackEnd, func(_ context.Context, e domain.TrackEvent) {
		received <- e
	}))

	engine.publish(domain.TrackEvent{Kind: domain.EventTrackEnd, Reason: domain.TrackEndFinished})

	select {
	case e := <-received:
		assert.Equal(t, engineGuildID, e.GuildID)
		assert.Equal(t, domain.TrackEndFinished, e.Reason)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestLavalinkEngine_ConfigAndMute(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	config, err := engine.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), config)

	muted, err := engine.IsMuted(ctx)
	require.NoError(t, err)
	assert.False(t, muted)

	// Unchanged config does not reach the player or the gateway
	assert.NoError(t, engine.SetConfig(ctx, config))
}

func TestTrackFromLavalink(t *testing.T) {
	uri := "https://www.youtube.com/watch?v=abc"
	track := lavalink.Track{
		Encoded: "encoded",
		Info: lavalink.TrackInfo{
			Identifier: "abc",
			Author:     "Artist",
			Length:     lavalink.Duration(90_000),
			Title:      "Song",
			URI:        &uri,
			SourceName: "youtube",
		},
	}

	got := trackFromLavalink(track, snowflake.ID(7))

	assert.Equal(t, domain.TrackID("abc"), got.ID)
	assert.Equal(t, "encoded", got.Encoded)
	assert.Equal(t, "Song", got.Title)
	assert.Equal(t, "Artist", got.Artist)
	assert.Equal(t, 90*time.Second, got.Duration)
	assert.Equal(t, uri, got.URI)
	assert.Empty(t, got.ArtworkURL)
	assert.Equal(t, snowflake.ID(7), got.RequesterID)
	assert.False(t, got.EnqueuedAt.IsZero())
}
