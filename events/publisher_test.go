package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSNS struct {
	topic, eventType string
	message          []byte
}

func (r *recordingSNS) Publish(_ context.Context, topicArn, eventType string, message []byte) error {
	r.topic, r.eventType, r.message = topicArn, eventType, message
	return nil
}

func TestSNSPublisher(t *testing.T) {
	client := &recordingSNS{}
	p := NewSNSPublisher(client, "arn:aws:sns:us-east-1:000000000000:payments")

	require.NoError(t, p.Publish(context.Background(), "order_created", "o1", map[string]int{"items": 2}))
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:payments", client.topic)
	assert.Equal(t, "order_created", client.eventType)
	assert.JSONEq(t, `{"items":2}`, string(client.message))
	assert.NoError(t, p.Close())
}

func TestSNSPublisher_EncodeError(t *testing.T) {
	p := NewSNSPublisher(&recordingSNS{}, "arn")
	assert.Error(t, p.Publish(context.Background(), "x", "k", make(chan int)))
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), "x", "k", nil))
	assert.NoError(t, p.Close())
}
