package serve

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/leadboard/internal/api"
	"github.com/thenoetrevino/leadboard/internal/cli"
	"github.com/thenoetrevino/leadboard/internal/cli/handler"
)

// ServeCmd returns the serve command, which exposes the board over HTTP
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve boards, statuses and leads over HTTP",
		Long: `Start the HTTP API. Stops gracefully on SIGINT or SIGTERM.

Examples:
  leadboard serve
  leadboard serve --addr=:9090
`,
		RunE: handler.Command(runServe),
	}
	cmd.Flags().String("addr", "", "Listen address (default from config http.addr)")
	return cmd
}

func runServe(ctx context.Context, c *cli.CLI, p *handler.FlagParser) (any, error) {
	addr, err := p.ParseStringOptional("addr")
	if err != nil {
		return nil, err
	}
	if addr == "" && c.Config != nil {
		addr = c.Config.HTTP.Addr
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.App.RelayInvalidations(ctx); err != nil {
		slog.Warn("remote invalidations not relayed", "error", err)
	}

	if err := api.NewServer(c.App).Run(ctx, addr); err != nil {
		return nil, err
	}
	return cli.Result{Message: "server stopped"}, nil
}
