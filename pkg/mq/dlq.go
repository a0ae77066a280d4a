package mq

import (
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// ErrDeadLetter marks a handler error that must not be requeued. The consumer
// rejects the message and the broker routes it to the dead letter queue.
var ErrDeadLetter = errors.New("dead letter")

// DLQExchangeName is the dead letter exchange paired with exchange.
func DLQExchangeName(exchange string) string {
	return exchangeOrDefault(exchange) + ".dlq"
}

// DeclareDLQ declares the dead letter exchange and a durable queue
// "<queue>.dlq" that keeps every message rejected from queueName.
func DeclareDLQ(ch *amqp091.Channel, exchange, queueName string) (amqp091.Queue, error) {
	dlx := DLQExchangeName(exchange)
	if err := DeclareExchange(ch, dlx); err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		queueName+".dlq",
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "#", dlx, false, nil); err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to bind DLQ queue: %w", err)
	}
	return q, nil
}

// deadLetterArgs routes messages rejected without requeue to the DLQ exchange.
func deadLetterArgs(exchange string) amqp091.Table {
	return amqp091.Table{"x-dead-letter-exchange": DLQExchangeName(exchange)}
}
