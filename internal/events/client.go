package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client is a connection to the leadboard daemon. It batches outgoing
// change events, receives broadcasts, reconnects and tracks subscriptions.
type Client struct {
	socketPath string
	conn       net.Conn
	encoder    *json.Encoder
	decoder    *json.Decoder
	mu         sync.Mutex

	// Batching configuration
	eventQueue  chan Event
	debounce    time.Duration
	closed      bool
	batcherOnce sync.Once
	batcherDone chan struct{}

	// Reconnection configuration
	maxRetries int
	baseDelay  time.Duration

	// Subscription state, replayed on reconnect
	prefixes []string

	// Event tracking
	lastSequence int64

	// Context for graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewClient creates a new event client but does not connect.
// The debounce window defaults to 100ms and can be set with LEADBOARD_EVENT_DEBOUNCE_MS.
func NewClient(socketPath string) (*Client, error) {
	if socketPath == "" {
		return nil, errors.New("socket path is empty")
	}

	debounceMs := 100
	if envVal := os.Getenv("LEADBOARD_EVENT_DEBOUNCE_MS"); envVal != "" {
		if parsed, err := strconv.Atoi(envVal); err == nil && parsed > 0 {
			debounceMs = parsed
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		socketPath:  socketPath,
		eventQueue:  make(chan Event, 100),
		debounce:    time.Duration(debounceMs) * time.Millisecond,
		maxRetries:  5,
		baseDelay:   1 * time.Second,
		ctx:         ctx,
		cancel:      cancel,
		batcherDone: make(chan struct{}),
	}, nil
}

// Connect dials the daemon and sends the current subscription.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("client closed")
	}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to dial daemon socket: %w", err)
	}

	c.conn = conn
	c.encoder = json.NewEncoder(conn)
	c.decoder = json.NewDecoder(conn)

	msg := Message{
		Version:   ProtocolVersion,
		Type:      "subscribe",
		Subscribe: &SubscribeMessage{Prefixes: slices.Clone(c.prefixes)},
	}
	if err := c.encoder.Encode(msg); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Error("error closing connection", "error", closeErr)
		}
		c.conn = nil
		return fmt.Errorf("failed to send subscription: %w", err)
	}

	c.batcherOnce.Do(func() { go c.startBatcher() })

	return nil
}

// SendEvent queues an event to be sent to the daemon.
// It never blocks; a full queue is reported as an error.
func (c *Client) SendEvent(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("client closed")
	}

	select {
	case c.eventQueue <- event:
		return nil
	default:
		return fmt.Errorf("event queue full")
	}
}

// CollectionsChanged queues a change event for collections. It lets the client
// act as an ordering notifier.
func (c *Client) CollectionsChanged(_ context.Context, collections ...string) {
	if err := c.SendEvent(Event{Type: EventCollectionsChanged, Collections: collections}); err != nil {
		slog.Debug("failed to queue change event", "collections", collections, "error", err)
	}
}

// startBatcher collects queued events and sends one event per debounce window
// listing every collection touched in that window.
func (c *Client) startBatcher() {
	defer close(c.batcherDone)

	ticker := time.NewTicker(c.debounce)
	defer ticker.Stop()

	pending := make(map[string]struct{})

	add := func(e Event) {
		for _, col := range e.Collections {
			pending[col] = struct{}{}
		}
	}

	flushPending := func() {
		if len(pending) == 0 {
			return
		}
		collections := make([]string, 0, len(pending))
		for col := range pending {
			collections = append(collections, col)
		}
		slices.Sort(collections)
		clear(pending)

		if err := c.sendToSocket(Event{
			Type:        EventCollectionsChanged,
			Collections: collections,
			Timestamp:   time.Now(),
		}); err != nil && !isConnectionError(err) {
			slog.Error("failed to send batched event", "error", err)
		}
	}

	for {
		select {
		case <-c.ctx.Done():
			flushPending()
			return

		case event, ok := <-c.eventQueue:
			if !ok {
				flushPending()
				return
			}
			add(event)

		drainLoop:
			for {
				select {
				case evt, ok := <-c.eventQueue:
					if !ok {
						break drainLoop
					}
					add(evt)
				default:
					break drainLoop
				}
			}

		case <-ticker.C:
			flushPending()
		}
	}
}

// sendToSocket sends an event to the daemon socket.
func (c *Client) sendToSocket(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected to daemon")
	}

	// short write deadline to detect dead connections
	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}

	return c.encoder.Encode(Message{
		Version: ProtocolVersion,
		Type:    "event",
		Event:   &event,
	})
}

// Listen returns a channel of broadcast events. It reconnects on its own and
// closes the channel when ctx is done or reconnection gives up.
func (c *Client) Listen(ctx context.Context) (<-chan Event, error) {
	eventChan := make(chan Event, 10)
	go c.listenLoop(ctx, eventChan)
	return eventChan, nil
}

func (c *Client) listenLoop(ctx context.Context, eventChan chan Event) {
	defer close(eventChan)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.ctx.Done():
			return
		default:
			err := c.readEvents(ctx, eventChan)
			if err == nil || ctx.Err() != nil || c.ctx.Err() != nil {
				return
			}
			slog.Warn("connection lost, reconnecting", "error", err)

			if c.reconnect(ctx) {
				slog.Info("reconnected to daemon")
				continue
			}

			slog.Error("failed to reconnect, giving up", "attempts", c.maxRetries)
			return
		}
	}
}

// readEvents reads messages from the socket and forwards events.
func (c *Client) readEvents(ctx context.Context, eventChan chan Event) error {
	for {
		var msg Message

		c.mu.Lock()
		if c.conn == nil {
			c.mu.Unlock()
			return fmt.Errorf("connection closed")
		}
		// detect hung connections; the daemon pings every 30s
		if err := c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to set read deadline: %w", err)
		}
		decoder := c.decoder
		c.mu.Unlock()

		if err := decoder.Decode(&msg); err != nil {
			return fmt.Errorf("failed to decode message: %w", err)
		}

		switch msg.Type {
		case "event":
			if msg.Event == nil || msg.Event.SequenceID <= c.lastSequence {
				continue
			}
			c.lastSequence = msg.Event.SequenceID
			select {
			case eventChan <- *msg.Event:
			case <-ctx.Done():
				return ctx.Err()
			}

		case "ping":
			c.mu.Lock()
			var err error
			if c.conn != nil {
				err = c.encoder.Encode(Message{Version: ProtocolVersion, Type: "pong"})
			}
			c.mu.Unlock()
			if err != nil && !isConnectionError(err) {
				slog.Error("failed to send pong", "error", err)
			}
		}
	}
}

// isConnectionError checks if an error is a network connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset")
}

// reconnect retries Connect with exponential backoff.
func (c *Client) reconnect(ctx context.Context) bool {
	delay := c.baseDelay

	for i := 0; i < c.maxRetries; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-c.ctx.Done():
			return false
		case <-time.After(delay):
			c.mu.Lock()
			if c.conn != nil {
				if err := c.conn.Close(); err != nil && !isConnectionError(err) {
					slog.Error("error closing connection during reconnect", "error", err)
				}
				c.conn = nil
			}
			c.mu.Unlock()

			if err := c.Connect(ctx); err == nil {
				slog.Info("reconnected to daemon", "attempt", i+1, "max_retries", c.maxRetries)
				return true
			}

			slog.Warn("reconnection attempt failed", "attempt", i+1, "max_retries", c.maxRetries, "retry_in", delay)
			delay *= 2
		}
	}

	return false
}

// Subscribe narrows the events this client receives to collections under
// prefixes. No prefixes means everything.
func (c *Client) Subscribe(prefixes ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prefixes = slices.Clone(prefixes)

	if c.conn == nil {
		return fmt.Errorf("not connected to daemon")
	}

	return c.encoder.Encode(Message{
		Version:   ProtocolVersion,
		Type:      "subscribe",
		Subscribe: &SubscribeMessage{Prefixes: slices.Clone(prefixes)},
	})
}

// Close flushes pending events, closes the connection and stops all goroutines.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	// lets the batcher flush before exiting
	close(c.eventQueue)
	c.mu.Unlock()

	// never connected: no batcher to wait for
	c.batcherOnce.Do(func() { close(c.batcherDone) })
	<-c.batcherDone
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
