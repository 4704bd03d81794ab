package playback

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// State is the observable state of a Queue.
type State int

const (
	StateStopped   State = iota // not advancing by itself
	StateIdle                   // running, nothing to play
	StateAdvancing              // resolving or starting the head item
	StatePlaying                // a handle is active
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAdvancing:
		return "advancing"
	case StatePlaying:
		return "playing"
	default:
		return "stopped"
	}
}

// Queue plays the items of a Backlog one at a time through a Facade,
// advancing when the engine reports that the active track finished.
//
// Callbacks run on their own goroutines. The queue never waits for them and
// does not observe their failures.
type Queue struct {
	ctx     context.Context
	cancel  context.CancelFunc
	facade  *Facade
	backlog *Backlog
	logger  *slog.Logger

	onNext  NextFunc
	onFail  FailFunc
	onError ErrorFunc

	// advanceMu admits one advance at a time.
	advanceMu sync.Mutex

	mu         sync.Mutex
	active     *domain.Handle
	running    bool
	subscribed bool
	advancing  bool
	done       chan struct{} // closed by Stop
}

// NewQueue creates a queue bound to facade and starts it unless WithStopped
// is given. ctx bounds the queue's background work; its cancellation is
// ignored, use Close instead.
func NewQueue(ctx context.Context, facade *Facade, opts ...Option) (*Queue, error) {
	o := queueOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	qctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q := &Queue{
		ctx:     qctx,
		cancel:  cancel,
		facade:  facade,
		backlog: NewBacklog(o.items...),
		logger:  o.logger,
		onNext:  o.onNext,
		onFail:  o.onFail,
		onError: o.onError,
	}

	if !o.stopped {
		if err := q.Start(); err != nil {
			cancel()
			return nil, err
		}
	}

	return q, nil
}

// Start makes the queue advance by itself. It subscribes to end-of-track
// events on first use and immediately tries to play the head item. Calling
// Start on a running queue is a no-op.
func (q *Queue) Start() error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return nil
	}

	if !q.subscribed {
		if err := q.facade.Subscribe(domain.EventTrackEnd, q.handleTrackEnd); err != nil {
			q.mu.Unlock()
			return errors.Wrap(err, "failed to subscribe to track end events")
		}
		q.subscribed = true
	}

	q.running = true
	q.done = make(chan struct{})
	q.mu.Unlock()

	q.logger.Debug("queue started", "backlog", q.backlog.Len())
	q.trigger()
	return nil
}

// Stop halts self-advance. The active track, if any, keeps playing.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}
	q.running = false
	close(q.done)

	q.logger.Debug("queue stopped")
}

// Close stops the queue and cancels any in-flight resolution.
func (q *Queue) Close() {
	q.Stop()
	q.cancel()
}

// Skip stops the active track and plays the next item.
// Returns domain.ErrNoActiveTrack if nothing is playing.
func (q *Queue) Skip(ctx context.Context) error {
	q.mu.Lock()
	handle := q.active
	if handle == nil {
		q.mu.Unlock()
		return domain.ErrNoActiveTrack
	}
	// Clearing the handle first makes the engine's end event for it stale.
	q.active = nil
	q.mu.Unlock()

	err := q.facade.StopTrack(ctx, handle)
	if err != nil {
		q.logger.Warn("failed to stop skipped track", "handle", handle.ID, "error", err)
		err = errors.Wrap(err, "failed to stop skipped track")
	}

	q.trigger()
	return err
}

// Append adds items to the tail of the backlog.
func (q *Queue) Append(items ...domain.Playable) {
	q.backlog.Append(items...)
}

// Extend adds items to the tail of the backlog.
func (q *Queue) Extend(items []domain.Playable) {
	q.backlog.Extend(items)
}

// Insert places item at index in the backlog.
func (q *Queue) Insert(index int, item domain.Playable) {
	q.backlog.Insert(index, item)
}

// Backlog returns the queue's backlog.
func (q *Queue) Backlog() *Backlog {
	return q.backlog
}

// Handle returns the active handle, or nil if nothing is playing.
func (q *Queue) Handle() *domain.Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// Running reports whether the queue advances by itself.
func (q *Queue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// State returns the current state.
func (q *Queue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch {
	case !q.running:
		return StateStopped
	case q.active != nil:
		return StatePlaying
	case q.advancing:
		return StateAdvancing
	default:
		return StateIdle
	}
}

// handleTrackEnd frees the playback slot when the active track ends. A
// replaced track is followed by whatever replaced it, so the slot is kept.
// Only a natural completion advances the queue.
func (q *Queue) handleTrackEnd(_ context.Context, event domain.TrackEvent) {
	q.mu.Lock()
	if !q.active.Is(event.Handle) {
		q.mu.Unlock()
		q.logger.Debug("ignoring end of inactive track", "reason", event.Reason)
		return
	}
	if event.Reason == domain.TrackEndReplaced {
		q.mu.Unlock()
		q.logger.Debug("keeping handle of replaced track")
		return
	}
	q.active = nil
	q.mu.Unlock()

	if !event.Reason.ShouldAdvanceQueue() {
		q.logger.Debug("track ended without advancing", "reason", event.Reason)
		return
	}
	q.trigger()
}

func (q *Queue) trigger() {
	go q.advance(q.ctx)
}

// advance fills the playback slot with the next playable item. It returns
// without doing anything when the queue is stopped or a handle is active.
func (q *Queue) advance(ctx context.Context) {
	q.advanceMu.Lock()
	defer q.advanceMu.Unlock()

	for {
		q.mu.Lock()
		if !q.running || q.active != nil {
			q.mu.Unlock()
			return
		}
		done := q.done
		q.mu.Unlock()

		item, err := q.backlog.next(ctx, done)
		if err != nil {
			return
		}

		q.setAdvancing(true)
		handle, err := q.playItem(ctx, item)
		if err != nil {
			q.setAdvancing(false)
			continue
		}

		q.mu.Lock()
		q.active = handle
		q.advancing = false
		q.mu.Unlock()

		q.logger.Debug("started next item", "item", describe(item), "handle", handle.ID)
		if q.onNext != nil {
			q.spawn("on_next", func() {
				q.onNext(ctx, q.facade, handle)
			})
		}
		return
	}
}

// playItem resolves item if needed and dispatches it. Every error has already
// been reported when it returns.
func (q *Queue) playItem(ctx context.Context, item domain.Playable) (*domain.Handle, error) {
	playable := item
	if pending, ok := item.(*domain.Pending); ok {
		resolved, err := pending.Resolve(ctx)
		if err != nil {
			err = errors.Mark(
				errors.Wrapf(err, "failed to resolve %q", pending.Label),
				domain.ErrResolution,
			)
			q.logger.Warn("failed to play item, skipping to next",
				"item", describe(item),
				"error", err,
			)
			if q.onFail != nil {
				q.spawn("on_fail", func() {
					q.onFail(ctx, q.facade, item, err)
				})
			}
			return nil, err
		}
		playable = resolved
	}

	handle, err := q.dispatch(ctx, playable)
	if err != nil {
		q.logger.Error("failed to dispatch item", "item", describe(item), "error", err)
		if q.onError != nil {
			q.spawn("on_error", func() {
				q.onError(ctx, err)
			})
		}
		return nil, err
	}
	return handle, nil
}

func (q *Queue) dispatch(ctx context.Context, playable domain.Playable) (*domain.Handle, error) {
	switch p := playable.(type) {
	case *domain.Track:
		return q.facade.Play(ctx, p)
	case *domain.Source:
		return q.facade.PlaySource(ctx, p)
	default:
		return nil, errors.Wrapf(domain.ErrInvalidPlayable, "got %T", playable)
	}
}

func (q *Queue) setAdvancing(advancing bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.advancing = advancing
}

func (q *Queue) spawn(name string, f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				q.logger.Warn("queue callback panicked", "callback", name, "panic", r)
			}
		}()
		f()
	}()
}

func describe(item domain.Playable) string {
	if item == nil {
		return "<nil>"
	}
	if s, ok := item.(fmt.Stringer); ok {
		return item.Kind().String() + ": " + s.String()
	}
	return item.Kind().String()
}
