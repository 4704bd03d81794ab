package domain

import (
	"context"
)

// PlayableKind identifies the variant of a Playable.
type PlayableKind int

const (
	KindTrack PlayableKind = iota
	KindSource
	KindPending
)

// String returns a human-readable representation of the kind.
func (k PlayableKind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindSource:
		return "source"
	case KindPending:
		return "pending"
	default:
		return "unknown"
	}
}

// Playable is any item accepted by a queue: a *Track, a *Source or a *Pending.
// The set of implementations is closed.
type Playable interface {
	Kind() PlayableKind
	playable()
}

// Resolvable is an asynchronous resolution step yielding a *Track or *Source.
type Resolvable interface {
	Resolve(ctx context.Context) (Playable, error)
}

// ResolveFunc adapts a function to Resolvable.
type ResolveFunc func(ctx context.Context) (Playable, error)

// Resolve calls f(ctx).
func (f ResolveFunc) Resolve(ctx context.Context) (Playable, error) {
	return f(ctx)
}

// Pending is a playable whose resolution is deferred until the queue reaches it.
// Adding a whole playlist of Pending items performs no network work up front.
type Pending struct {
	Label    string // shown in queue listings and failure notices
	resolver Resolvable
}

// NewPending creates a Pending item resolved by r.
func NewPending(label string, r Resolvable) *Pending {
	return &Pending{
		Label:    label,
		resolver: r,
	}
}

func (*Pending) playable() {}

// Kind returns KindPending.
func (*Pending) Kind() PlayableKind { return KindPending }

// Resolve runs the deferred resolution.
func (p *Pending) Resolve(ctx context.Context) (Playable, error) {
	if p.resolver == nil {
		return nil, ErrResolution
	}
	return p.resolver.Resolve(ctx)
}

// String returns the label.
func (p *Pending) String() string {
	return p.Label
}

// Label returns a short human-readable name for p.
func Label(p Playable) string {
	switch v := p.(type) {
	case *Track:
		return v.Title
	case *Source:
		return v.Identifier
	case *Pending:
		return v.Label
	default:
		return "unknown item"
	}
}
