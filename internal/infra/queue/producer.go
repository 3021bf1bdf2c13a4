package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OutboundMessage é uma mensagem de WhatsApp esperando o worker.
type OutboundMessage struct {
	Phone    string    `json:"phone"`
	Text     string    `json:"text"`
	QueuedAt time.Time `json:"queued_at"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// OutboundProducer é o canal de mensagens do funil quando há RabbitMQ:
// enfileira e devolve, o envio real fica com o Worker.
type OutboundProducer struct {
	ch publisher
}

func NewProducer(ch *amqp.Channel) *OutboundProducer {
	return &OutboundProducer{ch: ch}
}

func (p *OutboundProducer) Open(ctx context.Context, phoneDigits, text string) error {
	body, err := json.Marshal(OutboundMessage{Phone: phoneDigits, Text: text, QueuedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}
	return nil
}
