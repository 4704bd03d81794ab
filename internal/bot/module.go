package bot

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// InteractionHandler answers an application command interaction.
// A returned error is logged and reported to the user as a generic failure.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error

// EventHandler is any function accepted by discordgo.Session.AddHandler,
// e.g. func(*discordgo.Session, *discordgo.VoiceStateUpdate).
type EventHandler any

// ModuleDependencies is what the bot hands each module in Init.
type ModuleDependencies struct {
	// Session is open, so Session.State.User is the bot user.
	Session *discordgo.Session
	// Logger is scoped to the module.
	Logger *slog.Logger
}

// Module is a unit of bot functionality registered through Register.
//
// The bot calls LoadConfig (for a ConfigurableModule), then Init once the
// session is open, then collects the module's commands and handlers. Shutdown
// is called once when the bot stops.
type Module interface {
	// Name identifies the module in logs and must be unique.
	Name() string

	// Commands are the slash commands the module registers.
	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers maps command names to their handlers.
	CommandHandlers() map[string]InteractionHandler

	// EventHandlers are added to the session after Init.
	EventHandlers() []EventHandler

	Init(deps ModuleDependencies) error

	Shutdown() error
}

// ConfigurableModule is a Module with its own configuration.
type ConfigurableModule interface {
	// LoadConfig reads and validates the module configuration. It runs before
	// the Discord connection is opened so a bad configuration fails fast.
	LoadConfig() error
}
