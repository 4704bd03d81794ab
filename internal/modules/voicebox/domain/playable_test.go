package domain

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestPending_Resolve(t *testing.T) {
	want := &Track{ID: "track-1", Encoded: "encoded", Title: "Track 1"}
	pending := NewPending("track 1", ResolveFunc(func(context.Context) (Playable, error) {
		return want, nil
	}))

	if pending.Kind() != KindPending {
		t.Errorf("expected kind %v, got %v", KindPending, pending.Kind())
	}

	got, err := pending.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPending_ResolveError(t *testing.T) {
	resolveErr := errors.New("no results")
	pending := NewPending("missing", ResolveFunc(func(context.Context) (Playable, error) {
		return nil, resolveErr
	}))

	_, err := pending.Resolve(context.Background())
	if !errors.Is(err, resolveErr) {
		t.Errorf("expected %v, got %v", resolveErr, err)
	}
}

func TestPending_NilResolver(t *testing.T) {
	pending := NewPending("empty", nil)

	_, err := pending.Resolve(context.Background())
	if !errors.Is(err, ErrResolution) {
		t.Errorf("expected ErrResolution, got %v", err)
	}
}

func TestPlayableKind_String(t *testing.T) {
	tests := []struct {
		kind     PlayableKind
		expected string
	}{
		{KindTrack, "track"},
		{KindSource, "source"},
		{KindPending, "pending"},
		{PlayableKind(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		item Playable
		want string
	}{
		{name: "track", item: &Track{Title: "Song"}, want: "Song"},
		{name: "source", item: NewSource("https://radio.example/live", 0), want: "https://radio.example/live"},
		{name: "pending", item: NewPending("lofi beats", nil), want: "lofi beats"},
		{name: "nil", item: nil, want: "unknown item"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.item); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}
