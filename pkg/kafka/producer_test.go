package kafka

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/logger"
)

type captureWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(w messageWriter) *Producer {
	return &Producer{
		writer: w,
		logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})),
	}
}

func header(msg kafka.Message, key string) string {
	return (&HeaderCarrier{headers: &msg.Headers}).Get(key)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "bengalboats.cart.updated", Topic("cart", "updated"))
}

func TestNewEvent(t *testing.T) {
	e, err := NewEvent("order.placed", "ord-1", "order", "storefront-service", map[string]string{"total": "1360"})
	require.NoError(t, err)

	assert.NotEmpty(t, e.EventID)
	assert.Equal(t, 1, e.Version)
	assert.WithinDuration(t, time.Now().UTC(), e.Timestamp, 2*time.Second)

	var data map[string]string
	require.NoError(t, e.UnmarshalData(&data))
	assert.Equal(t, "1360", data["total"])
}

func TestNewEvent_UnserializablePayload(t *testing.T) {
	_, err := NewEvent("cart.updated", "s-1", "cart", "svc", make(chan int))
	require.Error(t, err)
}

func TestPublish_KeysByAggregateAndCarriesCorrelation(t *testing.T) {
	w := &captureWriter{}
	p := newTestProducer(w)

	e, err := NewEvent("cart.updated", "sess-1", "cart", "storefront-service", nil)
	require.NoError(t, err)

	ctx := logger.WithCorrelationID(context.Background(), "corr-7")
	require.NoError(t, p.Publish(ctx, Topic("cart", "updated"), e))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "bengalboats.cart.updated", msg.Topic)
	assert.Equal(t, "sess-1", string(msg.Key))
	assert.Equal(t, "cart.updated", header(msg, "event_type"))
	assert.Equal(t, "corr-7", header(msg, "correlation_id"))

	decoded, err := UnmarshalEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, "corr-7", decoded.CorrelationID)
}

func TestPublish_WriterError(t *testing.T) {
	p := newTestProducer(&captureWriter{err: errors.New("leader not available")})

	e, err := NewEvent("cart.cleared", "sess-1", "cart", "svc", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), Topic("cart", "cleared"), e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}

func TestHeaderCarrier_SetOverwrites(t *testing.T) {
	headers := []kafka.Header{{Key: "a", Value: []byte("1")}}
	c := NewHeaderCarrier(&headers)

	c.Set("a", "2")
	c.Set("traceparent", "00-abc")

	assert.Equal(t, "2", c.Get("a"))
	assert.Equal(t, "00-abc", c.Get("traceparent"))
	assert.ElementsMatch(t, []string{"a", "traceparent"}, c.Keys())
}

func TestProducer_Close(t *testing.T) {
	w := &captureWriter{}
	require.NoError(t, newTestProducer(w).Close())
	assert.True(t, w.closed)
}
