package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thenoetrevino/leadboard/internal/cache"
	"github.com/thenoetrevino/leadboard/internal/config"
	"github.com/thenoetrevino/leadboard/internal/events"
	"github.com/thenoetrevino/leadboard/internal/models"
	"github.com/thenoetrevino/leadboard/internal/ordering"
	leadservice "github.com/thenoetrevino/leadboard/internal/services/lead"
	statusservice "github.com/thenoetrevino/leadboard/internal/services/status"
	"github.com/thenoetrevino/leadboard/internal/store"
	"github.com/thenoetrevino/leadboard/internal/store/badgerstore"
	"github.com/thenoetrevino/leadboard/internal/store/sqlstore"
)

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	store  store.Store
	engine *ordering.Engine

	// Change notification for caches and live views
	eventClient events.EventPublisher
	listings    *cache.Listings

	logger *slog.Logger

	// Service layer (business logic)
	StatusService statusservice.Service
	LeadService   leadservice.Service
}

// New creates a new App with all services initialized.
// This is the single entry point for creating the application container.
func New(s store.Store, opts ...Option) *App {
	cfg := &appConfig{
		logger:        slog.Default(),
		retryAttempts: 3,
		versionChecks: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var notifiers ordering.Notifiers
	if cfg.eventClient != nil {
		notifiers = append(notifiers, events.Notifier{Publisher: cfg.eventClient})
	}
	if cfg.listings != nil {
		notifiers = append(notifiers, cfg.listings)
	}

	engineOpts := []ordering.Option{ordering.WithLogger(cfg.logger)}
	if len(notifiers) > 0 {
		engineOpts = append(engineOpts, ordering.WithNotifier(notifiers))
	}
	if !cfg.versionChecks {
		engineOpts = append(engineOpts, ordering.WithoutVersionChecks())
	}
	engine := ordering.New(s, engineOpts...)

	// keep a nil cache interface nil
	var listingCache leadservice.ListingCache
	if cfg.listings != nil {
		listingCache = cfg.listings
	}

	return &App{
		store:         s,
		engine:        engine,
		eventClient:   cfg.eventClient,
		listings:      cfg.listings,
		logger:        cfg.logger,
		StatusService: statusservice.NewService(engine, cfg.retryAttempts),
		LeadService:   leadservice.NewService(engine, listingCache, cfg.retryAttempts),
	}
}

// Open builds the configured store backend and optional Redis cache and
// daemon connection, then wires them into a new App. Redis and the daemon
// are optional: when they cannot be reached the app runs without them.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	s, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithLogger(slog.Default()),
		WithRetryAttempts(cfg.Ordering.RetryAttempts),
	}
	if !cfg.Ordering.VersionChecksEnabled() {
		opts = append(opts, WithoutVersionChecks())
	}

	if cfg.Redis.URL != "" {
		listings, err := cache.NewListings(cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			slog.Warn("listing cache disabled", "error", err)
		} else {
			opts = append(opts, WithListingCache(listings))
		}
	}

	if cfg.Daemon.IsEnabled() {
		if client := connectDaemon(ctx, cfg.Daemon.Socket); client != nil {
			opts = append(opts, WithEventPublisher(client))
		}
	}

	return New(s, opts...), nil
}

// OpenStore opens the persistence backend named by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		s, err := sqlstore.Open(ctx, sqlstore.Config{Dialect: sqlstore.Postgres, DSN: cfg.DSN})
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return s, nil
	case config.DriverBadger:
		bcfg := badgerstore.DefaultConfig(cfg.Path)
		if cfg.InMemory {
			bcfg = badgerstore.InMemoryConfig()
		}
		bcfg.Logger = slog.Default()
		s, err := badgerstore.Open(bcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		return s, nil
	default:
		path := cfg.Path
		if cfg.InMemory {
			path = ":memory:"
		}
		s, err := sqlstore.Open(ctx, sqlstore.Config{Dialect: sqlstore.SQLite, Path: path})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, nil
	}
}

// connectDaemon returns a connected client, or nil when the daemon is not running.
func connectDaemon(ctx context.Context, socketPath string) *events.Client {
	client, err := events.NewClient(socketPath)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		// daemon isn't running (graceful degradation)
		slog.Debug("event daemon unavailable", "socket", socketPath, "error", events.ClassifyDaemonError(err))
		_ = client.Close()
		return nil
	}
	return client
}

// Engine returns the ordering engine, for operations services do not wrap.
func (a *App) Engine() *ordering.Engine {
	return a.engine
}

// Store returns the underlying store.
func (a *App) Store() store.Store {
	return a.store
}

// Listings returns the Redis listing cache, or nil when it is disabled.
func (a *App) Listings() *cache.Listings {
	return a.listings
}

// RelayInvalidations forwards listing invalidations announced by other
// processes on Redis to the local event daemon, so subscribers on this host
// see writes made elsewhere. It subscribes before returning and relays in the
// background until ctx is done. Without Redis or a daemon it does nothing.
func (a *App) RelayInvalidations(ctx context.Context) error {
	if a.listings == nil || a.eventClient == nil {
		return nil
	}
	changes, err := a.listings.Subscribe(ctx)
	if err != nil {
		return err
	}

	notifier := events.Notifier{Publisher: a.eventClient}
	go func() {
		for collections := range changes {
			a.logger.Debug("relaying remote invalidation", "collections", collections)
			notifier.CollectionsChanged(ctx, collections...)
		}
	}()
	return nil
}

// Ping checks the store and, when configured, Redis.
func (a *App) Ping(ctx context.Context) error {
	if _, err := a.store.ListSorted(ctx, models.BoardsCollection); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if a.listings != nil {
		if err := a.listings.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close releases the daemon connection, the cache and the store.
func (a *App) Close() error {
	var errs []error
	if a.eventClient != nil {
		errs = append(errs, a.eventClient.Close())
	}
	if a.listings != nil {
		errs = append(errs, a.listings.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}
