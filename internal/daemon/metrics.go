package daemon

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks daemon statistics using atomic operations for thread-safety.
// It also implements prometheus.Collector so the counters can be scraped.
type Metrics struct {
	EventsSent       atomic.Int64
	EventsReceived   atomic.Int64
	EventsFiltered   atomic.Int64
	EventsDropped    atomic.Int64
	BroadcastsTotal  atomic.Int64
	ConnectedClients atomic.Int32
	StartTime        time.Time
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

func (m *Metrics) IncEventsSent()     { m.EventsSent.Add(1) }
func (m *Metrics) IncEventsReceived() { m.EventsReceived.Add(1) }
func (m *Metrics) IncEventsFiltered() { m.EventsFiltered.Add(1) }
func (m *Metrics) IncEventsDropped()  { m.EventsDropped.Add(1) }
func (m *Metrics) IncBroadcasts()     { m.BroadcastsTotal.Add(1) }

// SetConnectedClients sets the current connected clients count
func (m *Metrics) SetConnectedClients(count int32) {
	m.ConnectedClients.Store(count)
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	EventsSent       int64     `json:"events_sent"`
	EventsReceived   int64     `json:"events_received"`
	EventsFiltered   int64     `json:"events_filtered"`
	EventsDropped    int64     `json:"events_dropped"`
	BroadcastsTotal  int64     `json:"broadcasts_total"`
	ConnectedClients int32     `json:"connected_clients"`
	StartTime        time.Time `json:"start_time"`
	Uptime           string    `json:"uptime"`
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsSent:       m.EventsSent.Load(),
		EventsReceived:   m.EventsReceived.Load(),
		EventsFiltered:   m.EventsFiltered.Load(),
		EventsDropped:    m.EventsDropped.Load(),
		BroadcastsTotal:  m.BroadcastsTotal.Load(),
		ConnectedClients: m.ConnectedClients.Load(),
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime).String(),
	}
}

var (
	descEventsSent = prometheus.NewDesc("leadboard_daemon_events_sent_total",
		"Messages queued to subscribed clients.", nil, nil)
	descEventsReceived = prometheus.NewDesc("leadboard_daemon_events_received_total",
		"Change events received from publishers.", nil, nil)
	descEventsFiltered = prometheus.NewDesc("leadboard_daemon_events_filtered_total",
		"Deliveries skipped because the client subscription did not match.", nil, nil)
	descEventsDropped = prometheus.NewDesc("leadboard_daemon_events_dropped_total",
		"Deliveries dropped because a client queue was full.", nil, nil)
	descBroadcasts = prometheus.NewDesc("leadboard_daemon_broadcasts_total",
		"Events sequenced and fanned out.", nil, nil)
	descClients = prometheus.NewDesc("leadboard_daemon_connected_clients",
		"Currently connected clients.", nil, nil)
	descUptime = prometheus.NewDesc("leadboard_daemon_uptime_seconds",
		"Seconds since the daemon started.", nil, nil)
)

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- descEventsSent
	ch <- descEventsReceived
	ch <- descEventsFiltered
	ch <- descEventsDropped
	ch <- descBroadcasts
	ch <- descClients
	ch <- descUptime
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	snap := m.GetSnapshot()
	ch <- prometheus.MustNewConstMetric(descEventsSent, prometheus.CounterValue, float64(snap.EventsSent))
	ch <- prometheus.MustNewConstMetric(descEventsReceived, prometheus.CounterValue, float64(snap.EventsReceived))
	ch <- prometheus.MustNewConstMetric(descEventsFiltered, prometheus.CounterValue, float64(snap.EventsFiltered))
	ch <- prometheus.MustNewConstMetric(descEventsDropped, prometheus.CounterValue, float64(snap.EventsDropped))
	ch <- prometheus.MustNewConstMetric(descBroadcasts, prometheus.CounterValue, float64(snap.BroadcastsTotal))
	ch <- prometheus.MustNewConstMetric(descClients, prometheus.GaugeValue, float64(snap.ConnectedClients))
	ch <- prometheus.MustNewConstMetric(descUptime, prometheus.GaugeValue, time.Since(m.StartTime).Seconds())
}
