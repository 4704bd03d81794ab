package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// ErrDispatcherClosed is returned when subscribing to a closed dispatcher.
var ErrDispatcherClosed = errors.New("event dispatcher is closed")

// EventDispatcher delivers track events of one player to subscribed handlers.
// Events are delivered in publish order on a single goroutine, so Publish
// never blocks on a handler.
type EventDispatcher struct {
	events   chan domain.TrackEvent
	handlers map[domain.EventKind][]domain.EventHandler
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewEventDispatcher creates a new EventDispatcher with the given buffer size.
func NewEventDispatcher(bufferSize int, logger *slog.Logger) *EventDispatcher {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &EventDispatcher{
		events:   make(chan domain.TrackEvent, bufferSize),
		handlers: make(map[domain.EventKind][]domain.EventHandler),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	d.wg.Add(1)
	go d.dispatch()

	return d
}

func (d *EventDispatcher) dispatch() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case event, ok := <-d.events:
			if !ok {
				return
			}
			d.mu.RLock()
			handlers := d.handlers[event.Kind]
			d.mu.RUnlock()
			for _, handler := range handlers {
				handler(d.ctx, event)
			}
		}
	}
}

// Publish queues an event for delivery.
// Non-blocking: if the channel buffer is full, the event is dropped with a warning.
func (d *EventDispatcher) Publish(event domain.TrackEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Debug("dropping event for closed dispatcher", "type", event.Kind)
		return
	}

	select {
	case d.events <- event:
		d.logger.Debug("published event", "type", event.Kind, "guild", event.GuildID)
	default:
		d.logger.Warn("event buffer full, dropping event", "type", event.Kind)
	}
}

// Subscribe registers a handler for events of kind.
func (d *EventDispatcher) Subscribe(kind domain.EventKind, handler domain.EventHandler) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	// Handler slices are replaced, never mutated in place.
	handlers := make([]domain.EventHandler, 0, len(d.handlers[kind])+1)
	handlers = append(handlers, d.handlers[kind]...)
	d.handlers[kind] = append(handlers, handler)
	return nil
}

// Close stops delivery. Events still buffered are discarded.
func (d *EventDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	close(d.events)
	d.wg.Wait()

	d.logger.Debug("event dispatcher closed")
}
