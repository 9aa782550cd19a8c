// Package cli holds what every leadboard command shares: the application
// context, output formatting and exit codes.
package cli

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/leadboard/internal/app"
	"github.com/thenoetrevino/leadboard/internal/config"
)

// CLI represents the CLI application context
type CLI struct {
	App    *app.App // Application container with services
	Config *config.Config
	owned  bool
}

// NewCLI loads the configuration and opens the configured store, with the
// Redis cache and daemon connection when they are available.
func NewCLI(ctx context.Context) (*CLI, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	application, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}

	return &CLI{App: application, Config: cfg, owned: true}, nil
}

// Close cleans up CLI resources. An injected app is left open for its owner.
func (c *CLI) Close() error {
	if !c.owned {
		return nil
	}
	return c.App.Close()
}
