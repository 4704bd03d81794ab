package ports

import "context"

// TrackResolver turns a query into tracks.
// A query is either a URL or a search prefixed with its source, e.g. "ytsearch:".
type TrackResolver interface {
	LoadTracks(ctx context.Context, query string) (*LoadResult, error)
}
