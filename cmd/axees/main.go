package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"axees/internal/api"
	"axees/internal/bot"
	"axees/internal/cart"
	"axees/internal/config"
	"axees/internal/identity"
	"axees/internal/notify"
	"axees/internal/scheduler"
	"axees/internal/sponsor"
	"axees/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	backend, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error("open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer func() { _ = backend.Close() }()
	store := storage.WithNamespace(backend, cfg.StorageNamespace)

	rules, err := sponsor.LoadRules(cfg.RulesPath)
	if err != nil {
		log.Error("load sponsorship rules", "path", cfg.RulesPath, "error", err)
		os.Exit(1)
	}
	catalog, err := sponsor.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Error("load catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}

	notes := notify.NewStore(store, notify.Options{Retention: cfg.NotificationRetention}, log)
	notes.Load(ctx)
	shop := cart.NewStore(store, cart.Options{TaxRate: &cfg.TaxRate, MaxQuantity: cfg.CartMaxQuantity}, log)
	shop.Load(ctx)

	eval := sponsor.NewEvaluator(rules, catalog, sponsor.Options{
		Listener: func(ev sponsor.Event) {
			log.Info("sponsored product", "event", ev.Kind, "rule_id", ev.Rule.ID, "product_id", ev.Product.ID)
		},
	}, log)

	deps := api.Deps{
		Notes:    notes,
		Cart:     shop,
		Eval:     eval,
		Catalog:  catalog,
		Ghosts:   identity.NewGhosts(store, cfg.GhostTTL, nil, log),
		Sessions: identity.NewSessions(store, nil),
	}
	var sched *scheduler.Scheduler
	if cfg.ContentFeedURL != "" {
		sched = scheduler.New(eval, cfg.ContentFeedURL, log)
		deps.Feed = sched
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.New(deps, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup

	if cfg.TelegramBotToken != "" {
		b, err := bot.New(cfg.TelegramBotToken, notes, shop, store, cfg, log)
		if err != nil {
			log.Error("create bot", "error", err)
			os.Exit(1)
		}
		b.LoadLinks(ctx)
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Run(ctx)
		}()
	}

	if sched != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched.Run(ctx)
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown http server", "error", err)
		}
	}()

	log.Info("starting axees",
		"addr", cfg.HTTPAddr,
		"storage", cfg.StorageBackend,
		"rules", len(rules),
		"products", len(catalog),
		"notifications", len(notes.List()),
		"cart_lines", len(shop.Items()),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server", "error", err)
		cancel()
	}

	wg.Wait()
	log.Info("axees stopped")
}

func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		log.Info("using redis storage", "addr", cfg.RedisAddr)
		return storage.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create data directory %s: %w", dir, err)
			}
		}
		log.Info("using sqlite storage", "path", cfg.DatabasePath)
		return storage.NewSQLite(cfg.DatabasePath)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
