package domain

import (
	"testing"
)

func TestNewQuery(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantInput  string
		wantDirect bool
		wantLoad   string
	}{
		{
			name:      "search terms",
			input:     "never gonna give you up",
			wantInput: "never gonna give you up",
			wantLoad:  "ytsearch:never gonna give you up",
		},
		{
			name:      "search terms with whitespace",
			input:     "  hello world  ",
			wantInput: "hello world",
			wantLoad:  "ytsearch:hello world",
		},
		{
			name:       "https URL",
			input:      "https://youtube.com/watch?v=dQw4w9WgXcQ",
			wantInput:  "https://youtube.com/watch?v=dQw4w9WgXcQ",
			wantDirect: true,
			wantLoad:   "https://youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:       "http URL",
			input:      "http://example.com/audio.mp3",
			wantInput:  "http://example.com/audio.mp3",
			wantDirect: true,
			wantLoad:   "http://example.com/audio.mp3",
		},
		{
			name:       "www URL",
			input:      "www.youtube.com/watch?v=abc",
			wantInput:  "www.youtube.com/watch?v=abc",
			wantDirect: true,
			wantLoad:   "www.youtube.com/watch?v=abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuery(tt.input)

			if q.Input != tt.wantInput {
				t.Errorf("Input = %q, want %q", q.Input, tt.wantInput)
			}
			if q.IsDirect() != tt.wantDirect {
				t.Errorf("IsDirect() = %v, want %v", q.IsDirect(), tt.wantDirect)
			}
			if got := q.Lavalink(); got != tt.wantLoad {
				t.Errorf("Lavalink() = %q, want %q", got, tt.wantLoad)
			}
		})
	}
}

func TestNewQueryWithPrefix(t *testing.T) {
	q := NewQueryWithPrefix("lofi beats", SearchSoundCloud)
	if got := q.Lavalink(); got != "scsearch:lofi beats" {
		t.Errorf("Lavalink() = %q, want %q", got, "scsearch:lofi beats")
	}

	q = NewQueryWithPrefix("https://soundcloud.com/a/b", SearchSoundCloud)
	if !q.IsDirect() {
		t.Error("expected URL to stay direct")
	}
}

func TestQuery_IsEmpty(t *testing.T) {
	if !NewQuery("   ").IsEmpty() {
		t.Error("expected whitespace query to be empty")
	}
	if NewQuery("a").IsEmpty() {
		t.Error("expected query to be non-empty")
	}
}
