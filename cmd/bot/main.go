package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"guard-tg-bot/internal/banlist"
	"guard-tg-bot/internal/config"
	"guard-tg-bot/internal/eventlog"
	"guard-tg-bot/internal/moderation"
	"guard-tg-bot/internal/policy"
	"guard-tg-bot/internal/registry"
	"guard-tg-bot/internal/session"
	"guard-tg-bot/internal/telegram"
	"guard-tg-bot/internal/welcome"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	var logLevel slog.Level
	switch cfg.Logging.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if cfg.Logging.JSONFormat {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Create root context with cancellation
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// WaitGroup for tracking active goroutines
	var wg sync.WaitGroup

	// Initialize stores
	policies, err := policy.NewSQLiteStore(cfg.Storage.PolicyPath)
	if err != nil {
		logger.Error("failed to open policy store", "error", err)
		os.Exit(1)
	}
	defer policies.Close()

	groups, err := registry.NewSQLiteStore(cfg.Storage.RegistryPath)
	if err != nil {
		logger.Error("failed to open group registry", "error", err)
		os.Exit(1)
	}
	defer groups.Close()

	events, err := eventlog.NewSQLiteStore(cfg.Storage.EventLogPath)
	if err != nil {
		logger.Error("failed to open event log", "error", err)
		os.Exit(1)
	}
	defer events.Close()

	// Load banned-term lists
	lists := banlist.New(banlist.Paths{
		Words:       cfg.Lists.WordsPath,
		AudioTitles: cfg.Lists.AudioTitlesPath,
		FileStems:   cfg.Lists.FileNamesPath,
	}, logger)

	// Load welcome config
	welcomeStore, err := welcome.Load(cfg.Welcome.ConfigPath)
	if err != nil {
		logger.Error("failed to load welcome config", "error", err)
		os.Exit(1)
	}

	// Initialize Telegram API and moderation core
	api, err := telegram.NewAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error("failed to create telegram api", "error", err)
		os.Exit(1)
	}

	transport := telegram.NewAPITransport(api)
	joins := moderation.NewJoinTracker()
	pipeline := moderation.NewPipeline(
		transport, policies, lists, events, joins, cfg.Telegram.AdminIDs, logger)
	greeter := moderation.NewGreeter(transport, groups, policies, welcomeStore, joins, logger)
	sessions := session.NewStore()

	updateHandler := telegram.NewHandler(
		api, pipeline, greeter, policies, groups, events, lists, welcomeStore, sessions, logger)
	bot := telegram.NewBot(api, updateHandler, cfg.Telegram, logger)

	// Start bot in goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := bot.Run(rootCtx); err != nil && err != context.Canceled {
			logger.Error("bot error", "error", err)
		}
	}()

	logger.Info("bot started",
		"admin_ids", cfg.Telegram.AdminIDs,
	)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutdown signal received", "signal", sig)

	// Cancel root context to signal all goroutines
	rootCancel()

	// Wait for graceful shutdown with timeout
	shutdownTimeout := 30 * time.Second
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("graceful shutdown complete")
	case <-time.After(shutdownTimeout):
		logger.Warn("shutdown timeout exceeded, forcing exit")
	}
}
