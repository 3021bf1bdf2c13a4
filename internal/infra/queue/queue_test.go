package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (p *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.exchange, p.key, p.msg = exchange, key, msg
	return p.err
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (a *fakeAck) Ack(uint64, bool) error { a.acked = true; return nil }
func (a *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}
func (a *fakeAck) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendText(ctx context.Context, phoneDigits, text string) error {
	return m.Called(ctx, phoneDigits, text).Error(0)
}

func TestProducerPublishesPersistentMessage(t *testing.T) {
	pub := &fakePublisher{}
	p := &OutboundProducer{ch: pub}

	require.NoError(t, p.Open(context.Background(), "5511988887777", "Olá Maria"))

	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, RoutingKey, pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)

	var msg OutboundMessage
	require.NoError(t, json.Unmarshal(pub.msg.Body, &msg))
	assert.Equal(t, "5511988887777", msg.Phone)
	assert.Equal(t, "Olá Maria", msg.Text)
}

func TestProducerPublishFailure(t *testing.T) {
	p := &OutboundProducer{ch: &fakePublisher{err: errors.New("channel closed")}}

	assert.Error(t, p.Open(context.Background(), "5511988887777", "x"))
}

func TestWorkerAcksDeliveredMessage(t *testing.T) {
	sender := new(mockSender)
	sender.On("SendText", mock.Anything, "5511988887777", "Olá").Return(nil)
	ack := &fakeAck{}
	w := &Worker{Sender: sender}

	w.handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte(`{"phone":"5511988887777","text":"Olá"}`)})

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
}

// TestWorkerDeadLettersFailures - Falhas vão para a DLQ sem requeue
func TestWorkerDeadLettersFailures(t *testing.T) {
	sender := new(mockSender)
	sender.On("SendText", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("api 500"))
	w := &Worker{Sender: sender}

	failed := &fakeAck{}
	w.handle(context.Background(), amqp.Delivery{Acknowledger: failed, Body: []byte(`{"phone":"55119","text":"x"}`)})
	assert.True(t, failed.nacked)
	assert.False(t, failed.requeued)

	malformed := &fakeAck{}
	w.handle(context.Background(), amqp.Delivery{Acknowledger: malformed, Body: []byte(`{`)})
	assert.True(t, malformed.nacked)
	sender.AssertNumberOfCalls(t, "SendText", 1)
}
