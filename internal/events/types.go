package events

import (
	"strings"
	"time"
)

// ProtocolVersion is carried on every wire message
const ProtocolVersion = 1

// EventType indicates what kind of change occurred
type EventType string

const (
	EventCollectionsChanged EventType = "collections_changed"
	EventPing               EventType = "ping"
	EventPong               EventType = "pong"
)

// Event reports that one or more ordered collections changed
type Event struct {
	Type        EventType
	Collections []string  // Collection paths touched by the change
	Timestamp   time.Time // When the event occurred
	SequenceID  int64     // Monotonically increasing sequence number for ordering
}

// SubscribeMessage is sent by clients to choose which collections they hear about
type SubscribeMessage struct {
	Prefixes []string // empty = everything, otherwise collection path prefixes
}

// Message wraps events and control messages for wire protocol
type Message struct {
	Version   int               `json:",omitempty"`
	Type      string            // "event", "subscribe", "ping", "pong"
	Event     *Event            `json:",omitempty"`
	Subscribe *SubscribeMessage `json:",omitempty"`
}

// Matches reports whether an event touching collections passes a prefix filter.
// An empty filter matches everything.
func Matches(prefixes, collections []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, c := range collections {
		for _, p := range prefixes {
			if strings.HasPrefix(c, p) {
				return true
			}
		}
	}
	return false
}
