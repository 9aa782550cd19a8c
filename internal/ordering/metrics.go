package ordering

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("leadboard.ordering")

var (
	// operationsTotal counts engine operations by result
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leadboard",
		Subsystem: "ordering",
		Name:      "operations_total",
		Help:      "Total ordering operations by operation and result",
	}, []string{"operation", "result"})

	// operationDuration tracks engine latency including store round-trips
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "leadboard",
		Subsystem: "ordering",
		Name:      "operation_duration_seconds",
		Help:      "Ordering operation duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	}, []string{"operation"})

	// rebalancesTotal counts full re-spacings by what triggered them
	rebalancesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "leadboard",
		Subsystem: "ordering",
		Name:      "rebalances_total",
		Help:      "Total collection rebalances by trigger",
	}, []string{"trigger"})

	// rebalanceItems tracks how many documents a rebalance rewrites
	rebalanceItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "leadboard",
		Subsystem: "ordering",
		Name:      "rebalance_items",
		Help:      "Number of items rewritten per rebalance",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 1000},
	})
)

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrCollectionNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidPosition):
		return "invalid"
	case errors.Is(err, ErrTransactionAborted):
		return "aborted"
	case errors.Is(err, ErrAlreadyExists):
		return "exists"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "ordering."+name, trace.WithAttributes(attrs...))
}

// finish records metrics for op and closes span.
func finish(span trace.Span, op string, start time.Time, err error) {
	result := resultLabel(err)
	operationsTotal.WithLabelValues(op, result).Inc()
	operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	span.SetAttributes(attribute.String("ordering.result", result))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func recordRebalance(trigger string, items int) {
	rebalancesTotal.WithLabelValues(trigger).Inc()
	rebalanceItems.Observe(float64(items))
}
