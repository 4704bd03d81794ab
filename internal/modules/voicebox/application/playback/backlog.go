package playback

import (
	"context"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// errQueueStopped is returned by Backlog.next when the queue stopped while waiting.
var errQueueStopped = errors.New("queue stopped")

// Backlog is the ordered list of items waiting to be played.
//
// Every operation that grows the backlog fires the wake condition when the
// backlog goes from empty to non-empty. Taking the head item clears it.
type Backlog struct {
	mu    sync.Mutex
	items []domain.Playable
	wake  chan struct{}
}

// NewBacklog creates a Backlog holding items.
func NewBacklog(items ...domain.Playable) *Backlog {
	b := &Backlog{
		items: make([]domain.Playable, 0, len(items)),
		wake:  make(chan struct{}, 1),
	}
	b.Extend(items)
	return b
}

// Append adds items to the tail.
func (b *Backlog) Append(items ...domain.Playable) {
	b.Extend(items)
}

// Extend adds all items to the tail, in order.
func (b *Backlog) Extend(items []domain.Playable) {
	if len(items) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	wasEmpty := len(b.items) == 0
	b.items = append(b.items, items...)
	if wasEmpty {
		b.signal()
	}
}

// Insert places item before position index. A negative index counts from the
// tail; out-of-range indexes are clamped to the head or tail.
func (b *Backlog) Insert(index int, item domain.Playable) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.items)
	if index < 0 {
		index = max(n+index, 0)
	}
	index = min(index, n)

	b.items = slices.Insert(b.items, index, item)
	if n == 0 {
		b.signal()
	}
}

// Concat appends a snapshot of other's items.
func (b *Backlog) Concat(other *Backlog) {
	b.Extend(other.Items())
}

// Remove removes and returns the item at index.
func (b *Backlog) Remove(index int) (domain.Playable, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if index < 0 || index >= len(b.items) {
		return nil, false
	}

	item := b.items[index]
	b.items = slices.Delete(b.items, index, index+1)
	if len(b.items) == 0 {
		b.clearWake()
	}
	return item, true
}

// Clear removes every item and returns how many were removed.
func (b *Backlog) Clear() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.items)
	b.items = make([]domain.Playable, 0)
	b.clearWake()
	return n
}

// Len returns the number of waiting items.
func (b *Backlog) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns a copy of the waiting items.
func (b *Backlog) Items() []domain.Playable {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.items)
}

// Signaled reports whether the wake condition is set.
func (b *Backlog) Signaled() bool {
	return len(b.wake) > 0
}

// next pops the head item, waiting for the wake condition while the backlog
// is empty. It returns errQueueStopped once done is closed, leaving the
// backlog and a pending wake condition untouched.
func (b *Backlog) next(ctx context.Context, done <-chan struct{}) (domain.Playable, error) {
	for {
		b.mu.Lock()
		if err := stopReason(ctx, done); err != nil {
			// A wake consumed on the way out is handed back.
			if len(b.items) > 0 {
				b.signal()
			}
			b.mu.Unlock()
			return nil, err
		}

		if len(b.items) > 0 {
			item := b.items[0]
			b.items[0] = nil
			b.items = b.items[1:]
			b.clearWake()
			b.mu.Unlock()
			return item, nil
		}
		b.mu.Unlock()

		select {
		case <-b.wake:
		case <-done:
		case <-ctx.Done():
		}
	}
}

func stopReason(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return errQueueStopped
	default:
	}
	return ctx.Err()
}

// signal must be called with mu held.
func (b *Backlog) signal() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// clearWake must be called with mu held.
func (b *Backlog) clearWake() {
	select {
	case <-b.wake:
	default:
	}
}
