package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thenoetrevino/leadboard/internal/config"
	"github.com/thenoetrevino/leadboard/internal/daemon"
	"github.com/thenoetrevino/leadboard/internal/logging"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	closer, err := logging.Init(cfg.Log)
	if err != nil {
		slog.Error("failed to initialize logging", "error", err)
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	socketPath := cfg.Daemon.Socket

	// Ensure the socket directory exists with secure permissions
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o700); err != nil {
		slog.Error("failed to create socket directory", "error", err)
		os.Exit(1)
	}

	// Create and start the daemon server
	server, err := daemon.NewServer(socketPath)
	if err != nil {
		slog.Error("failed to create daemon", "error", err)
		os.Exit(1)
	}
	prometheus.MustRegister(server.Metrics())

	if addr := cfg.Daemon.MetricsAddr; addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			slog.Info("daemon metrics listening", "addr", addr)
			srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	slog.Info("leadboard daemon starting", "socket_path", socketPath, "pid", os.Getpid())

	// Start the daemon (blocks until shutdown)
	if err := server.Start(ctx); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}

	slog.Info("leadboard daemon shutting down gracefully")
}
