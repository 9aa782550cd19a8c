package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thenoetrevino/leadboard/internal/events"
)

// client represents a connected client to the daemon
type client struct {
	conn     net.Conn
	send     chan events.Message
	prefixes []string
	lastPong time.Time
	closed   bool
	mu       sync.Mutex // protects prefixes, lastPong, closed and sends on send
}

func (c *client) subscribed(collections []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return events.Matches(c.prefixes, collections)
}

// Server fans collection change events out to subscribed clients
// over a unix domain socket.
type Server struct {
	socketPath       string
	listener         net.Listener
	clients          map[*client]bool
	mu               sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	broadcast        chan events.Event
	metrics          *Metrics
	sequenceCounter  atomic.Int64
	clientBufferSize int
	pingInterval     time.Duration
	staleAfter       time.Duration
	shutdownOnce     sync.Once
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithPingInterval sets how often clients are pinged. Clients that have not
// answered for three intervals are dropped.
func WithPingInterval(d time.Duration) ServerOption {
	return func(s *Server) {
		s.pingInterval = d
		s.staleAfter = 3 * d
	}
}

// getEnvInt reads an integer from an environment variable, returning defaultVal if not set or invalid
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

// NewServer creates the socket and returns a server ready to Start.
func NewServer(socketPath string, opts ...ServerOption) (*Server, error) {
	if dir := filepath.Dir(socketPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create socket directory: %w", err)
		}
	}

	// stale socket from a crashed daemon
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket listener: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		socketPath:       socketPath,
		listener:         listener,
		clients:          make(map[*client]bool),
		ctx:              ctx,
		cancel:           cancel,
		broadcast:        make(chan events.Event, getEnvInt("LEADBOARD_DAEMON_BROADCAST_BUFFER", 100)),
		metrics:          NewMetrics(),
		clientBufferSize: getEnvInt("LEADBOARD_DAEMON_CLIENT_BUFFER", 10),
		pingInterval:     30 * time.Second,
		staleAfter:       90 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Metrics returns the live daemon counters.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start runs the accept, broadcast and health loops until ctx is cancelled
// or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	slog.Info("daemon starting", "socket", s.socketPath)

	combinedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-s.ctx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	acceptErr := make(chan error, 1)
	go func() {
		acceptErr <- s.acceptLoop(combinedCtx)
	}()

	go s.broadcastLoop(combinedCtx)
	go s.monitorHealth(combinedCtx)

	select {
	case <-combinedCtx.Done():
		slog.Info("daemon context cancelled, shutting down")
	case err := <-acceptErr:
		if err != nil {
			slog.Error("accept loop error", "error", err)
		}
	}

	return s.Shutdown()
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// deadline lets the loop notice cancellation
		if ul, ok := s.listener.(*net.UnixListener); ok {
			if err := ul.SetDeadline(time.Now().Add(1 * time.Second)); err != nil {
				slog.Warn("error setting listener deadline", "error", err)
			}
		}

		conn, err := s.listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept error: %w", err)
		}

		c := &client{
			conn:     conn,
			send:     make(chan events.Message, s.clientBufferSize),
			lastPong: time.Now(),
		}

		s.mu.Lock()
		s.clients[c] = true
		s.mu.Unlock()
		s.updateClientCount()

		slog.Debug("client connected", "clients", s.getClientCount())

		go s.handleClient(c)
		go s.clientWriter(c)
	}
}

// broadcastLoop sequences events and delivers them to matching clients.
func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event := <-s.broadcast:
			event.SequenceID = s.sequenceCounter.Add(1)
			if event.Timestamp.IsZero() {
				event.Timestamp = time.Now()
			}
			s.metrics.IncBroadcasts()

			s.mu.RLock()
			targets := make([]*client, 0, len(s.clients))
			for c := range s.clients {
				targets = append(targets, c)
			}
			s.mu.RUnlock()

			for _, c := range targets {
				if !c.subscribed(event.Collections) {
					s.metrics.IncEventsFiltered()
					continue
				}
				evt := event
				evt.Collections = slices.Clone(event.Collections)
				msg := events.Message{
					Version: events.ProtocolVersion,
					Type:    "event",
					Event:   &evt,
				}
				if !s.sendToClient(c, msg) {
					s.metrics.IncEventsDropped()
					slog.Warn("client send queue full, event dropped", "sequence", event.SequenceID)
				}
			}
		}
	}
}

// handleClient reads messages from a connected client
func (s *Server) handleClient(c *client) {
	defer func() {
		s.removeClient(c)
		slog.Debug("client disconnected", "clients", s.getClientCount())
	}()

	decoder := json.NewDecoder(c.conn)

	for {
		var msg events.Message
		if err := decoder.Decode(&msg); err != nil {
			return
		}

		if msg.Version != 0 && msg.Version != events.ProtocolVersion {
			slog.Warn("protocol version mismatch", "got", msg.Version, "want", events.ProtocolVersion)
		}

		switch msg.Type {
		case "event":
			if msg.Event != nil {
				s.metrics.IncEventsReceived()
				if err := s.Broadcast(*msg.Event); err != nil {
					slog.Warn("dropping event", "error", err)
				}
			}

		case "subscribe":
			if msg.Subscribe != nil {
				c.mu.Lock()
				c.prefixes = slices.Clone(msg.Subscribe.Prefixes)
				c.mu.Unlock()
				slog.Debug("client subscribed", "prefixes", msg.Subscribe.Prefixes)
			}

		case "pong":
			c.mu.Lock()
			c.lastPong = time.Now()
			c.mu.Unlock()
		}
	}
}

func (s *Server) clientWriter(c *client) {
	encoder := json.NewEncoder(c.conn)

	for msg := range c.send {
		if err := encoder.Encode(msg); err != nil {
			return
		}
	}
}

// monitorHealth pings clients and removes the ones that stopped answering.
func (s *Server) monitorHealth(ctx context.Context) {
	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pingTicker.C:
			s.mu.RLock()
			clients := make([]*client, 0, len(s.clients))
			for c := range s.clients {
				clients = append(clients, c)
			}
			s.mu.RUnlock()

			now := time.Now()
			pingMsg := events.Message{
				Version: events.ProtocolVersion,
				Type:    "ping",
				Event:   &events.Event{Type: events.EventPing, Timestamp: now},
			}

			for _, c := range clients {
				c.mu.Lock()
				silence := now.Sub(c.lastPong)
				c.mu.Unlock()

				if silence > s.staleAfter {
					slog.Info("removing stale client", "last_pong_ago", silence)
					s.removeClient(c)
					continue
				}
				if !s.sendToClient(c, pingMsg) {
					slog.Warn("failed to send ping to client (queue full)")
				}
			}
		}
	}
}

// Broadcast queues an event for delivery without blocking.
func (s *Server) Broadcast(event events.Event) error {
	if s.ctx.Err() != nil {
		return errors.New("daemon shut down")
	}
	select {
	case s.broadcast <- event:
		return nil
	default:
		return errors.New("broadcast channel full")
	}
}

// CollectionsChanged lets an in-process server act as an ordering notifier.
func (s *Server) CollectionsChanged(_ context.Context, collections ...string) {
	if err := s.Broadcast(events.Event{
		Type:        events.EventCollectionsChanged,
		Collections: collections,
		Timestamp:   time.Now(),
	}); err != nil {
		slog.Warn("dropping change notification", "collections", collections, "error", err)
	}
}

// Shutdown closes the listener and every client, and removes the socket file.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		slog.Info("shutting down daemon")

		s.cancel()

		if s.listener != nil {
			if closeErr := s.listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
				err = closeErr
			}
		}

		s.mu.Lock()
		clients := make([]*client, 0, len(s.clients))
		for c := range s.clients {
			clients = append(clients, c)
		}
		s.mu.Unlock()
		for _, c := range clients {
			s.removeClient(c)
		}

		if removeErr := os.Remove(s.socketPath); removeErr != nil && !os.IsNotExist(removeErr) {
			slog.Warn("failed to remove socket file", "error", removeErr)
		}
	})

	return err
}

func (s *Server) getClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) updateClientCount() {
	s.metrics.SetConnectedClients(int32(s.getClientCount()))
}

// removeClient is safe to call more than once for the same client.
func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()

	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
		if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			slog.Debug("error closing client connection", "error", err)
		}
	}
	c.mu.Unlock()

	s.updateClientCount()
}

// sendToClient queues msg without blocking. It reports false when the
// client's queue is full or the client is gone.
func (s *Server) sendToClient(c *client, msg events.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		s.metrics.IncEventsSent()
		return true
	default:
		return false
	}
}
