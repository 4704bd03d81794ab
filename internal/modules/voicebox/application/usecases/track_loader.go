package usecases

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/application/ports"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
)

// LoadTracksInput contains the input for the LoadTracks use case.
type LoadTracksInput struct {
	Query       string
	RequesterID snowflake.ID
}

// LoadTracksOutput contains the result of the LoadTracks use case.
type LoadTracksOutput struct {
	Tracks       []*domain.Track
	PlaylistName string // set when the query loaded a playlist
}

// TrackLoaderService turns user queries into playables.
type TrackLoaderService struct {
	trackResolver ports.TrackResolver
}

// NewTrackLoaderService creates a new TrackLoaderService.
func NewTrackLoaderService(trackResolver ports.TrackResolver) *TrackLoaderService {
	return &TrackLoaderService{
		trackResolver: trackResolver,
	}
}

// LoadTracks loads the tracks for a query. A search yields its best match,
// a playlist yields all of its tracks.
func (s *TrackLoaderService) LoadTracks(
	ctx context.Context,
	input LoadTracksInput,
) (*LoadTracksOutput, error) {
	query := domain.NewQuery(input.Query)
	if query.IsEmpty() {
		return nil, ErrNoResults
	}

	result, err := s.trackResolver.LoadTracks(ctx, query.Lavalink())
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to load %q", query.Input), ErrLoadFailed)
	}

	switch {
	case result.Type == ports.LoadTypeError:
		return nil, errors.Wrapf(ErrLoadFailed, "%s", result.Message)
	case result.Type == ports.LoadTypeEmpty || len(result.Tracks) == 0:
		return nil, ErrNoResults
	}

	infos := result.Tracks
	if result.Type == ports.LoadTypeSearch {
		infos = infos[:1]
	}

	enqueuedAt := time.Now().UTC()
	tracks := make([]*domain.Track, len(infos))
	for i, info := range infos {
		tracks[i] = newTrack(info, input.RequesterID, enqueuedAt)
	}

	return &LoadTracksOutput{
		Tracks:       tracks,
		PlaylistName: result.PlaylistName,
	}, nil
}

// Search returns up to limit tracks matching query, for suggestions.
// Direct URLs and playlists are returned as loaded.
func (s *TrackLoaderService) Search(
	ctx context.Context,
	query string,
	limit int,
) ([]*domain.Track, error) {
	q := domain.NewQuery(query)
	if q.IsEmpty() {
		return nil, ErrNoResults
	}

	result, err := s.trackResolver.LoadTracks(ctx, q.Lavalink())
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to search %q", q.Input), ErrLoadFailed)
	}
	if result.Type == ports.LoadTypeError || len(result.Tracks) == 0 {
		return nil, ErrNoResults
	}

	infos := result.Tracks
	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}

	tracks := make([]*domain.Track, len(infos))
	for i, info := range infos {
		tracks[i] = newTrack(info, 0, time.Time{})
	}
	return tracks, nil
}

// Deferred returns a pending item that loads query when the queue reaches it.
// It resolves to the first loaded track.
func (s *TrackLoaderService) Deferred(query string, requesterID snowflake.ID) *domain.Pending {
	return domain.NewPending(query, domain.ResolveFunc(
		func(ctx context.Context) (domain.Playable, error) {
			output, err := s.LoadTracks(ctx, LoadTracksInput{
				Query:       query,
				RequesterID: requesterID,
			})
			if err != nil {
				return nil, err
			}
			return output.Tracks[0], nil
		},
	))
}

// DeferredAll returns one pending item per query, skipping blank queries.
func (s *TrackLoaderService) DeferredAll(queries []string, requesterID snowflake.ID) []domain.Playable {
	items := make([]domain.Playable, 0, len(queries))
	for _, query := range queries {
		if domain.NewQuery(query).IsEmpty() {
			continue
		}
		items = append(items, s.Deferred(query, requesterID))
	}
	return items
}

// Stream returns a source the engine loads at play time. It can be played once.
func (s *TrackLoaderService) Stream(identifier string, requesterID snowflake.ID) *domain.Source {
	return domain.NewSource(domain.NewQuery(identifier).Lavalink(), requesterID)
}

func newTrack(info *ports.TrackInfo, requesterID snowflake.ID, enqueuedAt time.Time) *domain.Track {
	return &domain.Track{
		ID:          domain.TrackID(info.Identifier),
		Encoded:     info.Encoded,
		Title:       info.Title,
		Artist:      info.Artist,
		Duration:    info.Duration,
		URI:         info.URI,
		ArtworkURL:  info.ArtworkURL,
		SourceName:  info.SourceName,
		IsStream:    info.IsStream,
		RequesterID: requesterID,
		EnqueuedAt:  enqueuedAt,
	}
}
