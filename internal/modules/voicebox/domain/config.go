package domain

import "time"

// Discord voice channel bitrates, in bits per second.
const (
	BitrateAuto = 64000
	BitrateMin  = 8000
)

// Config is the per-connection engine configuration.
type Config struct {
	Volume         int           // Lavalink player volume, 0-1000
	SelfDeaf       bool          // join voice channels deafened
	ConnectTimeout time.Duration // maximum wait for the voice handshake
}

// DefaultConfig returns the configuration used for new connections.
func DefaultConfig() Config {
	return Config{
		Volume:         100,
		SelfDeaf:       true,
		ConnectTimeout: 10 * time.Second,
	}
}

// MaxBitrate returns the highest voice bitrate allowed for a guild premium tier.
func MaxBitrate(premiumTier int) int {
	switch premiumTier {
	case 1:
		return 128000
	case 2:
		return 256000
	case 3:
		return 384000
	default:
		return 96000
	}
}
