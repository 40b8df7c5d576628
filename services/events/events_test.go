package eventsvc

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/tests"
)

func TestConsoleService_Publish(t *testing.T) {
	svc := NewConsoleServiceMock(testutil.NewLogger())
	err := svc.Publish(context.Background(),
		core.Event{Name: core.EventLevelCompleted, PlayerID: "p1"},
		core.Event{Name: core.EventGameFinished, PlayerID: "p1"},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{core.EventLevelCompleted, core.EventGameFinished}, svc.Sent())
	assert.Equal(t, "p1", svc.Events()[0].PlayerID)
	assert.NoError(t, svc.Close())

	plain := NewConsoleService(testutil.NewLogger())
	require.NoError(t, plain.Publish(context.Background(), core.Event{Name: core.EventGameOver}))
	assert.Empty(t, plain.Sent())
}

func TestHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{Subject: "stemquest.circuit.level.completed"}
	carrier := (*headerCarrier)(msg)
	assert.Equal(t, "", carrier.Get("traceparent"))
	assert.Empty(t, carrier.Keys())

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	propagation.TraceContext{}.Inject(ctx, carrier)
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", msg.Header.Get("traceparent"))
	assert.Contains(t, carrier.Keys(), "traceparent")

	extracted := propagation.TraceContext{}.Extract(context.Background(), carrier)
	assert.Equal(t, traceID, trace.SpanContextFromContext(extracted).TraceID())
}
