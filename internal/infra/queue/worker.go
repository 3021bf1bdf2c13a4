package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// TextSender é quem efetivamente entrega a mensagem (Cloud API do WhatsApp).
type TextSender interface {
	SendText(ctx context.Context, phoneDigits, text string) error
}

type Worker struct {
	Channel *amqp.Channel
	Sender  TextSender
}

func NewWorker(ch *amqp.Channel, sender TextSender) *Worker {
	return &Worker{Channel: ch, Sender: sender}
}

// Start consome a fila até o contexto ser cancelado.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",
		false, // ack manual
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	log.Printf(" [*] Worker rodando e aguardando na fila '%s'", queueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				log.Println("⚠️ [WORKER] Canal do RabbitMQ fechado")
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var msg OutboundMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.Phone == "" {
		log.Printf("❌ [WORKER] Mensagem inválida descartada para a DLQ: %v", err)
		d.Nack(false, false)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := w.Sender.SendText(sendCtx, msg.Phone, msg.Text); err != nil {
		// Reenviar pode duplicar a mensagem no celular do cliente; vai para a DLQ.
		log.Printf("❌ [WORKER] Falha ao entregar WhatsApp para %s: %v", msg.Phone, err)
		d.Nack(false, false)
		return
	}

	log.Printf("✅ [WORKER] WhatsApp entregue para %s", msg.Phone)
	d.Ack(false)
}
