// Package cache keeps sorted collection listings in Redis.
//
// Listings are read-through: a miss loads from the store and writes the result
// back with a TTL. Every committed ordering operation invalidates the touched
// collections (DEL) and announces them on a pub/sub channel. Subscribers only
// see announcements made by other Listings instances.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/thenoetrevino/leadboard/internal/store"
)

// Channel is the pub/sub channel carrying invalidated collection paths.
const Channel = "leadboard:collections"

// fillTimeout bounds a shared fill, which outlives the caller that started it.
const fillTimeout = 10 * time.Second

// invalidation is the payload published on Channel.
type invalidation struct {
	Origin      string   `json:"origin"`
	Collections []string `json:"collections"`
}

var requests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "leadboard",
	Subsystem: "cache",
	Name:      "requests_total",
	Help:      "Listing cache lookups by result.",
}, []string{"result"})

// Listings caches ListSorted results per collection.
type Listings struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	origin string
	group  singleflight.Group
}

// NewListings connects to the Redis at redisURL.
func NewListings(redisURL string, ttl time.Duration) (*Listings, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewListingsWithClient(client, ttl), nil
}

// NewListingsWithClient creates a cache from an existing Redis client
func NewListingsWithClient(client *redis.Client, ttl time.Duration) *Listings {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Listings{
		client: client,
		prefix: "listing:",
		ttl:    ttl,
		origin: uuid.NewString(),
	}
}

func (l *Listings) key(collection string) string    { return l.prefix + collection }
func (l *Listings) genKey(collection string) string { return l.prefix + "gen:" + collection }

// Load returns the cached listing of collection, or calls fill and caches its
// result. Concurrent misses for one collection share a single fill, which runs
// detached from the caller's cancellation. Redis failures fall back to fill.
func (l *Listings) Load(ctx context.Context, collection string, fill func(ctx context.Context) ([]store.Item, error)) ([]store.Item, error) {
	items, err := l.get(ctx, collection)
	switch {
	case err == nil:
		requests.WithLabelValues("hit").Inc()
		return items, nil
	case errors.Is(err, redis.Nil):
		requests.WithLabelValues("miss").Inc()
	default:
		requests.WithLabelValues("error").Inc()
		slog.Warn("listing cache unavailable", "collection", collection, "error", err)
		return fill(ctx)
	}

	v, err, _ := l.group.Do(collection, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()

		gen, err := l.client.Get(ctx, l.genKey(collection)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fill(ctx)
		}

		items, err := fill(ctx)
		if err != nil {
			return nil, err
		}
		if err := l.put(ctx, collection, gen, items); err != nil {
			slog.Debug("listing not cached", "collection", collection, "error", err)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]store.Item), nil
}

func (l *Listings) get(ctx context.Context, collection string) ([]store.Item, error) {
	data, err := l.client.Get(ctx, l.key(collection)).Bytes()
	if err != nil {
		return nil, err
	}
	var items []store.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal listing: %w", err)
	}
	return items, nil
}

// errStale is returned when an invalidation raced the fill.
var errStale = errors.New("listing invalidated during fill")

// put writes items unless the collection was invalidated since gen was read.
func (l *Listings) put(ctx context.Context, collection string, gen int64, items []store.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}

	genKey := l.genKey(collection)
	err = l.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, l.key(collection), data, l.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return errStale
	}
	return err
}

// Invalidate drops the cached listings of collections and publishes them on Channel.
func (l *Listings) Invalidate(ctx context.Context, collections ...string) error {
	if len(collections) == 0 {
		return nil
	}

	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, c := range collections {
			pipe.Incr(ctx, l.genKey(c))
			pipe.Del(ctx, l.key(c))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate listings: %w", err)
	}

	payload, err := json.Marshal(invalidation{Origin: l.origin, Collections: collections})
	if err != nil {
		return err
	}
	if err := l.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish invalidation: %w", err)
	}
	return nil
}

// CollectionsChanged implements ordering.Notifier.
func (l *Listings) CollectionsChanged(ctx context.Context, collections ...string) {
	if err := l.Invalidate(ctx, collections...); err != nil {
		slog.Warn("listing invalidation failed", "collections", collections, "error", err)
	}
}

// Subscribe delivers the collections other instances announce on Channel until
// ctx is done. The returned channel is closed when the subscription ends.
func (l *Listings) Subscribe(ctx context.Context) (<-chan []string, error) {
	sub := l.client.Subscribe(ctx, Channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", Channel, err)
	}

	out := make(chan []string, 16)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var inv invalidation
				if err := json.Unmarshal([]byte(msg.Payload), &inv); err != nil {
					slog.Warn("bad invalidation payload", "payload", msg.Payload, "error", err)
					continue
				}
				if inv.Origin == l.origin || len(inv.Collections) == 0 {
					continue
				}
				select {
				case out <- inv.Collections:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Ping checks if Redis is reachable
func (l *Listings) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (l *Listings) Close() error {
	return l.client.Close()
}
