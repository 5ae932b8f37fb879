package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	initMetricsOnce      sync.Once
	setupCounter         metric.Int64Counter
	setupDuration        metric.Float64Histogram
	panesCounter         metric.Int64Counter
	messagesCounter      metric.Int64Counter
	sessionStartCounter  metric.Int64Counter
	sessionStartDuration metric.Float64Histogram
)

// InitMetrics creates the meter instruments. Safe to call multiple times; only runs once.
// Recording before InitMetrics is a no-op.
func InitMetrics(ctx context.Context) error {
	var err error
	initMetricsOnce.Do(func() {
		m := Meter()
		setupCounter, err = m.Int64Counter("squad_setups_total", metric.WithDescription("Squad setups by outcome and resume flag"))
		if err != nil {
			return
		}
		setupDuration, err = m.Float64Histogram("squad_setup_duration_seconds", metric.WithDescription("Squad setup duration in seconds"))
		if err != nil {
			return
		}
		panesCounter, err = m.Int64Counter("squad_panes_created_total", metric.WithDescription("Panes created for squads"))
		if err != nil {
			return
		}
		messagesCounter, err = m.Int64Counter("squad_messages_total", metric.WithDescription("Inter-agent messages by outcome"))
		if err != nil {
			return
		}
		sessionStartCounter, err = m.Int64Counter("squad_session_starts_total", metric.WithDescription("Conversational sessions started or resumed"))
		if err != nil {
			return
		}
		sessionStartDuration, err = m.Float64Histogram("squad_session_start_duration_seconds", metric.WithDescription("Time to obtain a session token in seconds"))
	})
	return err
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

// RecordSetup records one squad setup attempt.
func RecordSetup(ctx context.Context, session string, ok, resumed bool, duration time.Duration) {
	attrs := metric.WithAttributes(
		AttrSession.String(session),
		AttrOutcome.String(outcome(ok)),
		attribute.Bool("resumed", resumed),
	)
	if setupCounter != nil {
		setupCounter.Add(ctx, 1, attrs)
	}
	if setupDuration != nil {
		setupDuration.Record(ctx, duration.Seconds(), attrs)
	}
}

// RecordPanesCreated records panes spawned for a new layout.
func RecordPanesCreated(ctx context.Context, session string, n int) {
	if panesCounter == nil || n <= 0 {
		return
	}
	panesCounter.Add(ctx, int64(n), metric.WithAttributes(AttrSession.String(session)))
}

// RecordMessage records one send_message call.
func RecordMessage(ctx context.Context, agent string, ok bool) {
	if messagesCounter == nil {
		return
	}
	messagesCounter.Add(ctx, 1, metric.WithAttributes(AttrAgent.String(agent), AttrOutcome.String(outcome(ok))))
}

// RecordSessionStart records a session start (isNew) or resume and how long it took.
func RecordSessionStart(ctx context.Context, isNew bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("new", isNew))
	if sessionStartCounter != nil {
		sessionStartCounter.Add(ctx, 1, attrs)
	}
	if sessionStartDuration != nil {
		sessionStartDuration.Record(ctx, duration.Seconds(), attrs)
	}
}
