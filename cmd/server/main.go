package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/youruser/hvdeck/internal/api"
	"github.com/youruser/hvdeck/internal/bridge"
	"github.com/youruser/hvdeck/internal/cards"
	"github.com/youruser/hvdeck/internal/config"
	"github.com/youruser/hvdeck/internal/deck"
	imagepkg "github.com/youruser/hvdeck/internal/image"
	"github.com/youruser/hvdeck/internal/search"
	"github.com/youruser/hvdeck/internal/storage"
	"github.com/youruser/hvdeck/internal/ws"
)

func main() {
	configPath := flag.String("config", os.Getenv("HVDECK_CONFIG"), "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load cards at startup (best-effort)
	list, err := cards.LoadCatalog(cfg.Catalog.DataDir)
	if err != nil {
		logger.Warn("failed to load card catalog", "dir", cfg.Catalog.DataDir, "error", err)
	}
	catalog, dups := cards.NewCatalog(list)
	if len(dups) > 0 {
		logger.Warn("duplicate card ids in catalog, keeping the first", "ids", dups)
	}
	logger.Info("card catalog loaded", "cards", catalog.Len())

	kv, closeKV, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeKV()

	var store *deck.Store
	hub := ws.NewHub(cfg.Server.Origin, func() []deck.Entry { return store.Entries() }, logger)
	store = deck.Open(ctx, kv,
		deck.WithCatalog(catalog),
		deck.WithLogger(logger),
		deck.WithObserver(hub.PublishDeck),
	)
	go hub.Run()
	defer hub.Stop()

	picks, closeTransport, err := openTransport(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeTransport()
	if _, err := bridge.Listen(ctx, picks, store, logger); err != nil {
		return fmt.Errorf("listen on %s transport: %w", cfg.Bridge.Transport, err)
	}

	window := bridge.NewWindow(cfg.Server.Origin, logger)
	if _, err := bridge.Listen(ctx, window, store, logger); err != nil {
		return fmt.Errorf("listen on window: %w", err)
	}

	interval, _ := cfg.FetchInterval()
	imageDir := filepath.Join(cfg.Catalog.DataDir, cards.ImageDir)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	api.RegisterRoutes(r, &api.Server{
		Catalog:  catalog,
		Pipeline: search.NewPipeline(catalog),
		Store:    store,
		KV:       kv,
		Window:   window,
		Hub:      hub,
		Picks:    picks,
		Images:   imagepkg.NewFetcher(imageDir, interval),
		ImageDir: imageDir,
		BaseURL:  cfg.Server.BaseURL,
		Logger:   logger,
		Context:  ctx,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr, "origin", cfg.Server.Origin,
			"storage", cfg.Storage.Driver, "transport", cfg.Bridge.Transport)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	// Requests and websocket sessions end before ctx is cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", "error", err)
	}
	hub.Stop()
	cancel()
	logger.Info("shutdown complete")
	return nil
}

func openStorage(cfg *config.Config) (storage.KV, func(), error) {
	if cfg.Storage.Driver == "memory" {
		return storage.NewMemoryKV(), func() {}, nil
	}
	db, err := storage.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return db, func() { _ = db.Close() }, nil
}

func openTransport(ctx context.Context, cfg *config.Config, logger *slog.Logger) (bridge.Transport, func(), error) {
	if cfg.Bridge.Transport != config.TransportRedis {
		return bridge.NewBus().Channel(cfg.Bridge.Channel), func() {}, nil
	}

	opts := &redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	if strings.Contains(cfg.Redis.Addr, "://") {
		parsed, err := redis.ParseURL(cfg.Redis.Addr)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		if cfg.Redis.Password != "" {
			parsed.Password = cfg.Redis.Password
		}
		opts = parsed
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to redis", "addr", opts.Addr, "channel", cfg.Bridge.Channel)
	return bridge.NewRedisChannel(client, cfg.Bridge.Channel, logger), func() { _ = client.Close() }, nil
}
