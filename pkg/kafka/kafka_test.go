package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishEvent_EncodesJSON(t *testing.T) {
	t.Parallel()

	w := &recordingWriter{}
	p := NewProducerWithWriter(w)

	err := p.PublishEvent(context.Background(), "order_events", "order-1", map[string]any{"type": "order.confirmed"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	assert.Equal(t, "order_events", w.msgs[0].Topic)
	assert.Equal(t, []byte("order-1"), w.msgs[0].Key)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "order.confirmed", got["type"])
}

func TestPublishEvent_WrapsWriteError(t *testing.T) {
	t.Parallel()

	boom := errors.New("broker down")
	p := NewProducerWithWriter(&recordingWriter{err: boom})

	err := p.PublishEvent(context.Background(), "order_events", "k", struct{}{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(nil)
	require.Error(t, err)
}
