package domain

import (
	"sync/atomic"

	"github.com/disgoorg/snowflake/v2"
)

// Source is an engine-native audio source loaded by the engine at play time.
// A Source can be played at most once.
type Source struct {
	Identifier  string // URL or search identifier handed to the engine
	RequesterID snowflake.ID

	consumed atomic.Bool
}

// NewSource creates an unconsumed Source.
func NewSource(identifier string, requesterID snowflake.ID) *Source {
	return &Source{
		Identifier:  identifier,
		RequesterID: requesterID,
	}
}

func (*Source) playable() {}

// Kind returns KindSource.
func (*Source) Kind() PlayableKind { return KindSource }

// Consume marks the source as used. It returns ErrSourceConsumed if the source
// was already consumed.
func (s *Source) Consume() error {
	if !s.consumed.CompareAndSwap(false, true) {
		return ErrSourceConsumed
	}
	return nil
}

// IsConsumed reports whether the source has been played.
func (s *Source) IsConsumed() bool {
	return s.consumed.Load()
}

// String returns the identifier.
func (s *Source) String() string {
	return s.Identifier
}
