package events

import (
	"context"
	"log/slog"
	"time"
)

// PublishWithRetry attempts to publish an event with retry logic.
// It makes up to maxRetries attempts with exponential backoff.
// Returns the error from the final attempt if all retries fail.
func PublishWithRetry(client EventPublisher, event Event, maxRetries int) error {
	if client == nil {
		return nil // no daemon (tests, standalone CLI)
	}

	var lastErr error
	baseDelay := 50 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := client.SendEvent(event)
		if err == nil {
			if attempt > 0 {
				slog.Debug("event published after retry",
					"attempt", attempt+1,
					"event_type", event.Type,
					"collections", event.Collections)
			}
			return nil
		}

		lastErr = err

		if attempt < maxRetries-1 {
			// 50ms, 100ms, 200ms
			delay := baseDelay * (1 << attempt)
			slog.Debug("event publish failed, retrying",
				"attempt", attempt+1,
				"max_retries", maxRetries,
				"retry_delay", delay,
				"error", err)
			time.Sleep(delay)
		}
	}

	slog.Warn("event publish failed after all retries",
		"attempts", maxRetries,
		"event_type", event.Type,
		"collections", event.Collections,
		"error", lastErr)

	return lastErr
}

// Notifier publishes collection changes through any EventPublisher.
type Notifier struct {
	Publisher  EventPublisher
	MaxRetries int
}

// CollectionsChanged implements ordering.Notifier.
func (n Notifier) CollectionsChanged(_ context.Context, collections ...string) {
	retries := n.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	_ = PublishWithRetry(n.Publisher, Event{
		Type:        EventCollectionsChanged,
		Collections: collections,
		Timestamp:   time.Now(),
	}, retries)
}
