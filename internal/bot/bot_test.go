package bot

import (
	"io"
	"log/slog"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBot() *Bot {
	return NewBot(&Config{DiscordToken: "test-token"}, discardLogger())
}

func TestNewBot(t *testing.T) {
	cfg := &Config{DiscordToken: "test-token"}

	b := NewBot(cfg, nil)

	require.NotNil(t, b)
	assert.Same(t, cfg, b.config)
	assert.NotNil(t, b.logger)
}

func TestBot_InitModules_PassesDependencies(t *testing.T) {
	b := newTestBot()
	b.session = &discordgo.Session{}

	mod := &trackingStubModule{stubModule: stubModule{name: "tracking"}}
	b.modules = []Module{mod}

	require.NoError(t, b.initModules())

	assert.True(t, mod.initCalled)
	assert.Same(t, b.session, mod.deps.Session)
	assert.NotNil(t, mod.deps.Logger)
}

func TestBot_InitModules_ReturnsInitError(t *testing.T) {
	b := newTestBot()

	expectedErr := errors.New("init failed")
	b.modules = []Module{&stubModule{name: "failing", initErr: expectedErr}}

	err := b.initModules()

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), "failing")
}

func TestBot_LoadModuleConfigs(t *testing.T) {
	b := newTestBot()

	configurable := &configurableStubModule{stubModule: stubModule{name: "configurable"}}
	b.modules = []Module{&stubModule{name: "plain"}, configurable}

	require.NoError(t, b.loadModuleConfigs())
	assert.True(t, configurable.loaded)
}

func TestBot_LoadModuleConfigs_ReturnsError(t *testing.T) {
	b := newTestBot()

	expectedErr := errors.New("missing address")
	b.modules = []Module{&configurableStubModule{
		stubModule: stubModule{name: "configurable"},
		loadErr:    expectedErr,
	}}

	err := b.loadModuleConfigs()

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
}

func TestBot_BuildHandlerMap(t *testing.T) {
	b := newTestBot()

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}
	b.modules = []Module{&stubModule{
		name:     "test",
		handlers: map[string]InteractionHandler{"play": handler},
	}}

	b.buildHandlerMap()

	assert.Contains(t, b.handlers, "play")
}

func TestBot_BuildHandlerMap_MultipleModules(t *testing.T) {
	b := newTestBot()

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}
	b.modules = []Module{
		&stubModule{name: "mod1", handlers: map[string]InteractionHandler{"cmd1": handler}},
		&stubModule{name: "mod2", handlers: map[string]InteractionHandler{"cmd2": handler}},
	}

	b.buildHandlerMap()

	assert.Len(t, b.handlers, 2)
}

func TestBot_CollectCommands(t *testing.T) {
	b := newTestBot()
	b.modules = []Module{
		&stubModule{
			name:     "mod1",
			commands: []*discordgo.ApplicationCommand{{Name: "play", Description: "Play"}},
		},
		&stubModule{
			name:     "mod2",
			commands: []*discordgo.ApplicationCommand{{Name: "skip", Description: "Skip"}},
		},
	}

	commands := b.collectCommands()

	require.Len(t, commands, 2)
	assert.Equal(t, "play", commands[0].Name)
	assert.Equal(t, "skip", commands[1].Name)
}

func TestBot_StopShutsDownModules(t *testing.T) {
	b := newTestBot()

	mod := &trackingStubModule{stubModule: stubModule{
		name:    "tracking",
		shutErr: errors.New("shutdown failed"),
	}}
	b.modules = []Module{mod}

	// Shutdown errors are logged and do not abort Stop
	require.NoError(t, b.Stop())
	assert.True(t, mod.shutdownCalled)
}

// trackingStubModule records the calls made on it.
type trackingStubModule struct {
	stubModule
	initCalled     bool
	shutdownCalled bool
	deps           ModuleDependencies
}

func (m *trackingStubModule) Init(deps ModuleDependencies) error {
	m.initCalled = true
	m.deps = deps
	return m.stubModule.Init(deps)
}

func (m *trackingStubModule) Shutdown() error {
	m.shutdownCalled = true
	return m.stubModule.Shutdown()
}

// configurableStubModule is a stubModule implementing ConfigurableModule.
type configurableStubModule struct {
	stubModule
	loaded  bool
	loadErr error
}

func (m *configurableStubModule) LoadConfig() error {
	m.loaded = true
	return m.loadErr
}
