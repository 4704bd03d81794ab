package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"github.com/sglre6355/voicebox/internal/bot"
	_ "github.com/sglre6355/voicebox/internal/modules/voicebox"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/voicebox
var version = "dev"

var (
	app     = kingpin.New("voicebox", "Discord voice channel player backed by Lavalink")
	envFile = app.Flag("env-file", "Path to a .env file loaded before reading the environment").
		Default(".env").String()
	verbose = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
)

func main() {
	app.Version(version)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// A missing env file is fine, the environment may already be populated
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		slog.Error("failed to load env file", "path", *envFile, "error", err)
		os.Exit(1)
	}

	cfg, err := bot.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level := cfg.SlogLevel()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("starting voicebox", "version", version)

	b := bot.NewBot(cfg, logger)
	if err := b.LoadModules(); err != nil {
		logger.Error("failed to load modules", "error", err)
		os.Exit(1)
	}

	if err := b.Start(); err != nil {
		logger.Error("failed to start bot", "error", err)
		_ = b.Stop()
		os.Exit(1)
	}

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("received termination signal, shutting down")
	if err := b.Stop(); err != nil {
		logger.Error("failed to shutdown", "error", err)
	}

	logger.Info("completed bot shutdown")
}
