package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/futures-flipper/internal/auth"
	"github.com/rickgao/futures-flipper/internal/config"
	"github.com/rickgao/futures-flipper/internal/database"
	"github.com/rickgao/futures-flipper/internal/exchange"
	"github.com/rickgao/futures-flipper/internal/gate"
	"github.com/rickgao/futures-flipper/internal/poller"
	"github.com/rickgao/futures-flipper/internal/server"
	"github.com/rickgao/futures-flipper/internal/store"
	"github.com/rickgao/futures-flipper/internal/transition"
	"github.com/rickgao/futures-flipper/internal/version"
)

// stateStore is what both store backends provide.
type stateStore interface {
	gate.Store
	transition.Journal
	server.Pinger
	UnfinishedTransitions(ctx context.Context) ([]store.TransitionRecord, error)
}

func main() {
	configPath := flag.String("config", "configs/flipper.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting flipper",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		logger.Warn("invalid log level, using info", "level", cfg.Logging.Level)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"base_url", cfg.Exchange.BaseURL,
		"symbol", cfg.Trading.Symbol,
		"leverage", cfg.Trading.Leverage,
		"state_backend", cfg.State.Backend,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Open state store
	var st stateStore
	switch cfg.State.Backend {
	case "postgres":
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)

		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := store.NewPostgres(pool, cfg.State.RecordID, logger)
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		st = pg
		logger.Info("database connected")
	default:
		logger.Warn("using in-memory state; the accepted signal is lost on restart")
		st = store.NewMemory()
	}

	unfinished, err := st.UnfinishedTransitions(ctx)
	if err != nil {
		logger.Error("failed to read transition journal", "error", err)
		os.Exit(1)
	}
	for _, r := range unfinished {
		logger.Warn("unfinished transition found; exchange position may be partial",
			"transition_id", r.ID,
			"direction", r.Direction,
			"state", r.State,
			"started_at", r.StartedAt,
		)
	}

	// Create exchange client
	creds, err := auth.NewCredentials(cfg.Exchange.APIKey, cfg.Exchange.APISecret, cfg.Exchange.RecvWindow)
	if err != nil {
		logger.Error("invalid exchange credentials", "error", err)
		os.Exit(1)
	}
	client := exchange.NewClient(
		cfg.Exchange.BaseURL,
		creds,
		exchange.WithLogger(logger),
		exchange.WithTimeout(cfg.Exchange.Timeout),
		exchange.WithRetries(cfg.Exchange.Retries(), cfg.Exchange.RetryBackoff),
	)

	// Check the symbol is tradable
	logger.Info("checking symbol", "symbol", cfg.Trading.Symbol)
	info, err := client.GetSymbolInfo(ctx, cfg.Trading.Symbol)
	if err != nil {
		logger.Error("failed to get symbol info", "error", err)
		os.Exit(1)
	}
	logger.Info("symbol info",
		"symbol", info.Symbol,
		"status", info.Status,
		"quote_asset", info.QuoteAsset,
	)

	engine := transition.New(client, transition.ParamsFromConfig(cfg.Trading),
		transition.WithJournal(st),
		transition.WithLogger(logger),
	)

	g, err := gate.New(ctx, st, engine, gate.MessagesFromConfig(cfg.Signals), gate.WithLogger(logger))
	if err != nil {
		logger.Error("failed to start signal gate", "error", err)
		os.Exit(1)
	}

	serverOpts := []server.Option{
		server.WithLogger(logger),
		server.WithIdentity(cfg.Instance.ID, cfg.Trading.Symbol),
		server.WithMetricsPath(cfg.Metrics.Path),
	}

	// Start position poller
	if cfg.Poller.IsEnabled() {
		pollerCfg := poller.Config{
			Symbol:   cfg.Trading.Symbol,
			Interval: cfg.Poller.Interval,
			Timeout:  cfg.Poller.Timeout,
		}
		positions := poller.New(pollerCfg, client, g, logger)
		if err := positions.Start(ctx); err != nil {
			logger.Error("failed to start position poller", "error", err)
			os.Exit(1)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			positions.Stop(stopCtx)
		}()
		serverOpts = append(serverOpts, server.WithPositions(positions))
	}

	srv := server.New(g, st, serverOpts...)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting http server", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	logger.Info("flipper running",
		"instance_id", cfg.Instance.ID,
		"last_signal", g.LastSignal(),
		"webhook_url", fmt.Sprintf("http://localhost:%d/webhook", cfg.Server.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	// Shutdown waits for an in-flight transition to finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown incomplete", "error", err)
	}

	logger.Info("flipper stopped")
}
