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
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/grocer/internal/cart"
	"github.com/dukerupert/grocer/internal/catalog"
	"github.com/dukerupert/grocer/internal/config"
	"github.com/dukerupert/grocer/internal/database"
	"github.com/dukerupert/grocer/internal/logging"
	"github.com/dukerupert/grocer/internal/metrics"
	"github.com/dukerupert/grocer/internal/server"
	"github.com/dukerupert/grocer/internal/store"
	ws "github.com/dukerupert/grocer/internal/websocket"
)

func main() {
	configFile := flag.String("config", os.Getenv("GROCER_CONFIG_FILE"), "optional .env style config file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		slog.Error("grocer exited", "error", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logger := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", "categories", len(cat.ListCategories()), "items", cat.Len())

	cartStore, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	hub := ws.NewHub(logger.With("component", "hub"))
	m := metrics.New()

	opts := []cart.Option{
		cart.WithNotifier(server.CartNotifier(hub)),
		cart.WithRecorder(m),
		cart.WithLogger(logger.With("component", "cart")),
	}
	if cartStore != nil {
		opts = append(opts, cart.WithStore(cartStore))
	}
	svc, err := cart.New(cat, opts...)
	if err != nil {
		return fmt.Errorf("create cart: %w", err)
	}

	srv := server.New(server.Deps{
		Catalog:   cat,
		Cart:      svc,
		Hub:       hub,
		Metrics:   m,
		Logger:    logger,
		RateLimit: cfg.RateLimit,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("grocer running", "addr", "http://localhost:"+cfg.Port, "backend", cfg.CartBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return srv.RateLimiter().Run(gctx, 5*time.Minute)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		hub.CloseAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func loadCatalog(path string) (*catalog.Store, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

// openStore returns the configured cart store and a close func. The memory
// backend returns a nil store.
func openStore(cfg *config.Config, logger *slog.Logger) (cart.Store, func(), error) {
	switch cfg.CartBackend {
	case config.BackendSQLite:
		db, err := database.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		logger.Info("cart store ready", "backend", cfg.CartBackend, "path", cfg.DBPath)
		return store.NewCartStore(db), func() { db.Close() }, nil

	case config.BackendRedis:
		client := store.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		rs := store.NewRedisCartStore(client, cfg.RedisPrefix)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("cart store ready", "backend", cfg.CartBackend, "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix)
		return rs, func() { client.Close() }, nil

	default:
		logger.Info("cart store ready", "backend", config.BackendMemory)
		return nil, func() {}, nil
	}
}
