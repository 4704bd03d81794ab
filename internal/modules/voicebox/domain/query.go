package domain

import (
	"strings"
)

// SearchPrefix selects the Lavalink search provider for a free-text query.
type SearchPrefix string

const (
	SearchYouTube      SearchPrefix = "ytsearch"
	SearchYouTubeMusic SearchPrefix = "ytmsearch"
	SearchSoundCloud   SearchPrefix = "scsearch"
)

// Query is user input that the track resolver can load: either a direct
// identifier (URL) or search terms for a provider.
type Query struct {
	Input  string
	Prefix SearchPrefix // empty for direct identifiers
}

// NewQuery parses user input, searching YouTube unless it is a URL.
func NewQuery(input string) Query {
	return NewQueryWithPrefix(input, SearchYouTube)
}

// NewQueryWithPrefix parses user input, searching with prefix unless it is a URL.
func NewQueryWithPrefix(input string, prefix SearchPrefix) Query {
	input = strings.TrimSpace(input)
	if isDirect(input) {
		return Query{Input: input}
	}
	return Query{Input: input, Prefix: prefix}
}

// IsDirect reports whether the query is a direct identifier.
func (q Query) IsDirect() bool {
	return q.Prefix == ""
}

// IsEmpty reports whether there is nothing to search for.
func (q Query) IsEmpty() bool {
	return q.Input == ""
}

// Lavalink returns the identifier to pass to Lavalink's loadtracks endpoint.
func (q Query) Lavalink() string {
	if q.IsDirect() {
		return q.Input
	}
	return string(q.Prefix) + ":" + q.Input
}

func isDirect(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}
