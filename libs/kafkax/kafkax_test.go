package kafkax

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, SplitBrokers(""))
}

func TestEventMetaHeadersSkipEmpty(t *testing.T) {
	headers := EventMeta{EventID: "e1", EventType: "booking.confirmed.v1"}.Headers()
	require.Len(t, headers, 2)
	assert.Equal(t, "e1", HeaderValue(headers, HeaderEventID))
	assert.Equal(t, "booking.confirmed.v1", HeaderValue(headers, HeaderEventType))
	assert.Empty(t, HeaderValue(headers, HeaderAggregateID))
}

func TestReadyCheck(t *testing.T) {
	assert.ErrorIs(t, ReadyCheck(nil, time.Second)(context.Background()), ErrNoBrokers)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	err = ReadyCheck([]string{addr}, time.Second)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), addr)
}

func TestInjectTraceHeadersAppends(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0xaa, 1},
		SpanID:     trace.SpanID{0xbb, 1},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := InjectTraceHeaders(ctx, []kafka.Header{{Key: HeaderEventID, Value: []byte("e1")}})
	require.NotEmpty(t, HeaderValue(headers, "traceparent"))
	assert.Equal(t, "e1", HeaderValue(headers, HeaderEventID))

	carrier := &kafkaHeaderCarrier{headers: headers}
	restored := trace.SpanContextFromContext(otel.GetTextMapPropagator().Extract(context.Background(), carrier))
	assert.Equal(t, sc.TraceID(), restored.TraceID())

	again := InjectTraceHeaders(ctx, headers)
	assert.Len(t, again, len(headers), "existing trace headers are overwritten, not duplicated")
}
