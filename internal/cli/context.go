package cli

import (
	"context"

	"github.com/thenoetrevino/leadboard/internal/app"
	"github.com/thenoetrevino/leadboard/internal/config"
)

type contextKey string

const appKey contextKey = "app"

// WithApp makes commands run against a ready App instead of opening one from
// the configuration. Tests use it to inject an in-memory store.
func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, appKey, a)
}

// GetCLIFromContext returns the CLI for a command, reusing an App injected with
// WithApp when there is one.
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	if ctx != nil {
		if a, ok := ctx.Value(appKey).(*app.App); ok && a != nil {
			return &CLI{App: a, Config: config.Default()}, nil
		}
	} else {
		ctx = context.Background()
	}
	return NewCLI(ctx)
}
