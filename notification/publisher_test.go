package notification

import (
	"context"
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/grantflow/model"
)

// fakeWriter is a test writer that records messages written.
type fakeWriter struct {
	msgs []skafka.Message
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...skafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaPublisherKeysByRecipient(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(fw)
	n := &model.Notification{ID: "n1", RecipientEmail: "user@example.com", Type: model.NotificationAccessRevoked}

	require.NoError(t, p.Publish(context.Background(), n))
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, "user@example.com", string(fw.msgs[0].Key))
	require.Len(t, fw.msgs[0].Headers, 1)
	assert.Equal(t, "access-revoked", string(fw.msgs[0].Headers[0].Value))

	var decoded model.Notification
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &decoded))
	assert.Equal(t, "n1", decoded.ID)
}

type fakeChannel struct {
	keys []string
	msgs []amqp.Publishing
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.keys = append(f.keys, key)
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func TestRabbitMQPublisherRoutesToQueue(t *testing.T) {
	ch := &fakeChannel{}
	p := NewRabbitMQPublisherWithChannel(ch, "access-notifications")
	n := &model.Notification{ID: "n1", RecipientEmail: "user@example.com", Type: model.NotificationNewRequest}

	require.NoError(t, p.Publish(context.Background(), n))
	require.Len(t, ch.msgs, 1)
	assert.Equal(t, "access-notifications", ch.keys[0])
	assert.Equal(t, "application/json", ch.msgs[0].ContentType)
	assert.Equal(t, amqp.Persistent, ch.msgs[0].DeliveryMode)
	assert.Equal(t, "n1", ch.msgs[0].MessageId)
	assert.NoError(t, p.Close())
}
