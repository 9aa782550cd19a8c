// Package api serves boards, statuses and leads over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/thenoetrevino/leadboard/internal/app"
)

// ServiceName identifies the HTTP server in traces
const ServiceName = "leadboard-api"

// Server is the HTTP front of an App.
type Server struct {
	app    *app.App
	router *gin.Engine
}

// NewServer builds the router with every route registered.
func NewServer(a *app.App) *Server {
	s := &Server{app: a}
	s.initRouter()
	return s
}

func (s *Server) initRouter() {
	s.router = gin.New()
	s.router.Use(gin.Recovery(), requestLogger(), otelgin.Middleware(ServiceName))
	s.setupRoutes()
}

func (s *Server) setupRoutes() {
	r := s.router
	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	boards := r.Group("/boards")
	{
		boards.GET("", s.listBoards)
		boards.POST("", s.createBoard)
		boards.GET("/:board", s.showBoard)

		boards.POST("/:board/leads/:lead/move", s.moveLead)

		statuses := boards.Group("/:board/statuses")
		{
			statuses.GET("", s.listStatuses)
			statuses.POST("", s.createStatus)
			statuses.PATCH("/:status", s.updateStatus)
			statuses.DELETE("/:status", s.deleteStatus)
			statuses.POST("/:status/reorder", s.reorderStatus)
			statuses.POST("/:status/rebalance", s.rebalanceLeads)

			leads := statuses.Group("/:status/leads")
			{
				leads.GET("", s.listLeads)
				leads.POST("", s.createLead)
				leads.DELETE("", s.deleteAllLeads)
				leads.GET("/:lead", s.getLead)
				leads.PATCH("/:lead", s.updateLead)
				leads.DELETE("/:lead", s.deleteLead)
				leads.POST("/:lead/reorder", s.reorderLead)
				leads.POST("/:lead/interactions", s.addInteraction)
			}
		}
	}
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.app.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger logs one line per request through slog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
