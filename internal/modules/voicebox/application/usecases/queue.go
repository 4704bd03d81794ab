package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/playback"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

const DefaultPageSize = 10

// QueueAddInput contains the input for the QueueAdd use case.
type QueueAddInput struct {
	GuildID               snowflake.ID
	Items                 []domain.Playable
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// QueueAddOutput contains the result of the QueueAdd and QueueInsert use cases.
type QueueAddOutput struct {
	Position  int  // 1-indexed backlog position of the first added item
	Count     int  // number of items added
	StartsNow bool // the first item plays without waiting for another track
}

// QueueInsertInput contains the input for the QueueInsert use case.
type QueueInsertInput struct {
	GuildID               snowflake.ID
	Item                  domain.Playable
	Position              int          // 1-indexed; 1 plays next, past the end appends
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// QueueListInput contains the input for the QueueList use case.
type QueueListInput struct {
	GuildID               snowflake.ID
	Page                  int          // 1-indexed page number
	PageSize              int          // Items per page (optional, defaults to 10)
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// QueueEntry is one waiting item as shown in a listing.
type QueueEntry struct {
	Position int // 1-indexed backlog position
	Kind     domain.PlayableKind
	Label    string
	Track    *domain.Track // nil unless the item is a resolved track
}

// QueueListOutput contains the result of the QueueList use case.
type QueueListOutput struct {
	CurrentTrack *domain.Track
	State        playback.State
	Entries      []QueueEntry
	TotalItems   int
	CurrentPage  int
	TotalPages   int
}

// QueueRemoveInput contains the input for the QueueRemove use case.
type QueueRemoveInput struct {
	GuildID               snowflake.ID
	Position              int          // 1-indexed backlog position
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// QueueRemoveOutput contains the result of the QueueRemove use case.
type QueueRemoveOutput struct {
	Removed domain.Playable
}

// QueueClearInput contains the input for the QueueClear use case.
type QueueClearInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// QueueClearOutput contains the result of the QueueClear use case.
type QueueClearOutput struct {
	ClearedCount int
}

// QueueService handles backlog operations. The queue itself decides when
// added items start playing.
type QueueService struct {
	repo SessionRepository
}

// NewQueueService creates a new QueueService.
func NewQueueService(repo SessionRepository) *QueueService {
	return &QueueService{repo: repo}
}

// Add appends items to the backlog.
func (q *QueueService) Add(ctx context.Context, input QueueAddInput) (*QueueAddOutput, error) {
	if len(input.Items) == 0 {
		return nil, ErrNoResults
	}

	session, err := getSession(ctx, q.repo, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	queue := session.Queue
	startsNow := isIdle(queue)
	position := queue.Backlog().Len() + 1
	queue.Extend(input.Items)

	return &QueueAddOutput{
		Position:  position,
		Count:     len(input.Items),
		StartsNow: startsNow,
	}, nil
}

// Insert places an item at a backlog position.
func (q *QueueService) Insert(ctx context.Context, input QueueInsertInput) (*QueueAddOutput, error) {
	if input.Position < 1 {
		return nil, ErrInvalidPosition
	}

	session, err := getSession(ctx, q.repo, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	queue := session.Queue
	startsNow := isIdle(queue)
	position := min(input.Position, queue.Backlog().Len()+1)
	queue.Insert(position-1, input.Item)

	return &QueueAddOutput{
		Position:  position,
		Count:     1,
		StartsNow: startsNow && position == 1,
	}, nil
}

// List returns the current track and a page of the backlog.
func (q *QueueService) List(ctx context.Context, input QueueListInput) (*QueueListOutput, error) {
	session, err := getSession(ctx, q.repo, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}

	items := session.Queue.Backlog().Items()

	totalItems := len(items)
	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, totalItems)

	var entries []QueueEntry
	for i := start; i < end; i++ {
		entry := QueueEntry{
			Position: i + 1,
			Kind:     items[i].Kind(),
			Label:    domain.Label(items[i]),
		}
		if track, ok := items[i].(*domain.Track); ok {
			entry.Track = track
		}
		entries = append(entries, entry)
	}

	var current *domain.Track
	if handle := session.Queue.Handle(); handle != nil {
		current = handle.Track
	}

	return &QueueListOutput{
		CurrentTrack: current,
		State:        session.Queue.State(),
		Entries:      entries,
		TotalItems:   totalItems,
		CurrentPage:  page,
		TotalPages:   totalPages,
	}, nil
}

// Remove removes the item at a backlog position.
// The playing track is not part of the backlog; use Skip for it.
func (q *QueueService) Remove(ctx context.Context, input QueueRemoveInput) (*QueueRemoveOutput, error) {
	session, err := getSession(ctx, q.repo, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	backlog := session.Queue.Backlog()
	if backlog.Len() == 0 {
		return nil, ErrQueueEmpty
	}

	item, ok := backlog.Remove(input.Position - 1)
	if !ok {
		return nil, ErrInvalidPosition
	}

	return &QueueRemoveOutput{Removed: item}, nil
}

// Clear removes every waiting item. The playing track keeps playing.
func (q *QueueService) Clear(ctx context.Context, input QueueClearInput) (*QueueClearOutput, error) {
	session, err := getSession(ctx, q.repo, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	count := session.Queue.Backlog().Clear()
	if count == 0 {
		return nil, ErrQueueEmpty
	}

	return &QueueClearOutput{ClearedCount: count}, nil
}

// isIdle reports whether a newly added head item would start right away.
func isIdle(queue *playback.Queue) bool {
	return queue.State() == playback.StateIdle && queue.Backlog().Len() == 0
}
