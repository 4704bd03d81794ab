package voicebox

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/domain"
	"github.com/sglre6355/voicebox/internal/modules/voicebox/infrastructure"
)

// Config holds the voicebox module configuration.
type Config struct {
	LavalinkNodeName string `env:"LAVALINK_NODE_NAME" envDefault:"main"`
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"  validate:"hostname_port"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE"`

	DefaultVolume       int           `env:"DEFAULT_VOLUME"        envDefault:"100" validate:"min=0,max=1000"`
	SelfDeaf            bool          `env:"SELF_DEAF"             envDefault:"true"`
	VoiceConnectTimeout time.Duration `env:"VOICE_CONNECT_TIMEOUT" envDefault:"10s" validate:"min=1s"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig parses and validates the module configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse voicebox config")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid voicebox config")
	}
	return cfg, nil
}

// Lavalink returns the Lavalink node configuration.
func (c *Config) Lavalink() infrastructure.LavalinkConfig {
	return infrastructure.LavalinkConfig{
		NodeName: c.LavalinkNodeName,
		Address:  c.LavalinkAddress,
		Password: c.LavalinkPassword,
		Secure:   c.LavalinkSecure,
	}
}

// Engine returns the configuration applied to new connections.
func (c *Config) Engine() domain.Config {
	return domain.Config{
		Volume:         c.DefaultVolume,
		SelfDeaf:       c.SelfDeaf,
		ConnectTimeout: c.VoiceConnectTimeout,
	}
}
