package playback

import (
	"context"
	"log/slog"

	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// NextFunc is called after the queue starts playing an item.
type NextFunc func(ctx context.Context, f *Facade, handle *domain.Handle)

// FailFunc is called when a pending item fails to resolve.
type FailFunc func(ctx context.Context, f *Facade, item domain.Playable, err error)

// ErrorFunc receives errors the queue cannot recover from locally, such as an
// engine rejecting a dispatched item.
type ErrorFunc func(ctx context.Context, err error)

type queueOptions struct {
	onNext  NextFunc
	onFail  FailFunc
	onError ErrorFunc
	logger  *slog.Logger
	items   []domain.Playable
	stopped bool
}

// Option configures a Queue.
type Option func(*queueOptions)

// WithOnNext registers the callback run when the next item starts playing.
func WithOnNext(f NextFunc) Option {
	return func(o *queueOptions) {
		o.onNext = f
	}
}

// WithOnFail registers the callback run when a pending item fails to resolve.
func WithOnFail(f FailFunc) Option {
	return func(o *queueOptions) {
		o.onFail = f
	}
}

// WithOnError registers the sink for dispatch errors.
func WithOnError(f ErrorFunc) Option {
	return func(o *queueOptions) {
		o.onError = f
	}
}

// WithLogger sets the logger used by the queue.
func WithLogger(logger *slog.Logger) Option {
	return func(o *queueOptions) {
		o.logger = logger
	}
}

// WithItems seeds the backlog.
func WithItems(items ...domain.Playable) Option {
	return func(o *queueOptions) {
		o.items = append(o.items, items...)
	}
}

// WithStopped creates the queue in the stopped state. Start must be called
// before anything plays.
func WithStopped() Option {
	return func(o *queueOptions) {
		o.stopped = true
	}
}
