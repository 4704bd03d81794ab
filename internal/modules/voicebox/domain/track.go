package domain

import (
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// TrackID is a unique identifier for a track.
type TrackID string

// Track is an engine-native track descriptor that can be played immediately.
type Track struct {
	ID          TrackID
	Encoded     string // Lavalink encoded track data
	Title       string
	Artist      string
	Duration    time.Duration
	URI         string
	ArtworkURL  string
	SourceName  string // e.g., "youtube", "spotify", "soundcloud"
	IsStream    bool
	RequesterID snowflake.ID // Discord user who added the track
	EnqueuedAt  time.Time
}

func (*Track) playable() {}

// Kind returns KindTrack.
func (*Track) Kind() PlayableKind { return KindTrack }

// Platform returns the parsed Platform for this track.
func (t *Track) Platform() Platform {
	return ParsePlatform(t.SourceName)
}

// IsValid returns true if the track has the minimum required fields.
func (t *Track) IsValid() bool {
	return t.Encoded != "" && t.Title != ""
}

// String returns the track title, used when logging queue items.
func (t *Track) String() string {
	return t.Title
}

// FormattedDuration returns the duration as a human-readable string (mm:ss or hh:mm:ss).
func (t *Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}

	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// Platform represents the origin platform of a track.
type Platform string

const (
	PlatformYouTube    Platform = "youtube"
	PlatformSpotify    Platform = "spotify"
	PlatformSoundCloud Platform = "soundcloud"
	PlatformTwitch     Platform = "twitch"
	PlatformOther      Platform = "other"
)

// ParsePlatform converts a Lavalink source name to a Platform.
func ParsePlatform(name string) Platform {
	switch name {
	case "youtube":
		return PlatformYouTube
	case "spotify":
		return PlatformSpotify
	case "soundcloud":
		return PlatformSoundCloud
	case "twitch":
		return PlatformTwitch
	default:
		return PlatformOther
	}
}

// Color returns the embed color used for the platform.
func (p Platform) Color() int {
	switch p {
	case PlatformYouTube:
		return 0xFF0000
	case PlatformSpotify:
		return 0x1DB954
	case PlatformSoundCloud:
		return 0xFF5500
	case PlatformTwitch:
		return 0x9146FF
	default:
		return 0x08C404
	}
}
