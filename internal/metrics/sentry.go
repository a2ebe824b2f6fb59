package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

// successStatusCodeThreshold is the first status code counted as a failure
const successStatusCodeThreshold = http.StatusBadRequest

// SentryMetrics records request and generation spans in Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a Sentry metrics recorder. Spans are no-ops when
// Sentry was never initialized.
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{enabled: true}
}

// RecordAPIRequest records an API request span
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))
	span.SetData("duration_ms", duration.Milliseconds())

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordGeneration records the outcome of a generation run on the request
// transaction and as a child span
func (m *SentryMetrics) RecordGeneration(ctx context.Context, stats GenerationStats) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetData("generation.blocks", stats.Blocks)
		transaction.SetData("generation.rest_blocks", stats.RestBlocks)
		transaction.SetData("generation.events", stats.Events)
	}

	span := sentry.StartSpan(ctx, "generation.request")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", stats.Success))
	span.SetData("duration_ms", stats.Duration.Milliseconds())
	span.SetData("blocks", stats.Blocks)
	span.SetData("rest_blocks", stats.RestBlocks)
	span.SetData("events", stats.Events)

	if stats.Success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("Generation: %d blocks", stats.Blocks)
}

// RecordPerformanceMetric records a timed operation such as SMF export
func (m *SentryMetrics) RecordPerformanceMetric(ctx context.Context, operation string, duration time.Duration, metadata map[string]interface{}) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, operation)
	span.Description = operation
	span.SetData("duration_ms", duration.Milliseconds())
	for key, value := range metadata {
		span.SetData(key, value)
	}
	span.Finish()
}
