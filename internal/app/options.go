package app

import (
	"log/slog"

	"github.com/thenoetrevino/leadboard/internal/cache"
	"github.com/thenoetrevino/leadboard/internal/events"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	eventClient   events.EventPublisher
	listings      *cache.Listings
	logger        *slog.Logger
	retryAttempts int
	versionChecks bool
}

// WithEventPublisher publishes collection changes to the event daemon
func WithEventPublisher(ec events.EventPublisher) Option {
	return func(cfg *appConfig) {
		cfg.eventClient = ec
	}
}

// WithListingCache serves lead listings through Redis and invalidates them on writes
func WithListingCache(l *cache.Listings) Option {
	return func(cfg *appConfig) {
		cfg.listings = l
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// WithRetryAttempts bounds how often an aborted ordering operation is retried
func WithRetryAttempts(n int) Option {
	return func(cfg *appConfig) {
		cfg.retryAttempts = n
	}
}

// WithoutVersionChecks makes concurrent writes last-write-wins
func WithoutVersionChecks() Option {
	return func(cfg *appConfig) {
		cfg.versionChecks = false
	}
}
