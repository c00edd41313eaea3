package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// handlerTimeout bounds one delivery; a stuck handler must not stall the queue.
const handlerTimeout = 30 * time.Second

// DeliveryHandler processes one message. Returning an error drops the message
// (nack without requeue) so a poison payload cannot loop forever.
type DeliveryHandler func(context.Context, amqp.Delivery) error

// Consume reads a queue with manual acks until the context is cancelled or
// the channel dies. Callers are expected to wrap this in their own retry loop
// since a broker restart tears the channel down.
func (client *Client) Consume(ctx context.Context, queue, tag string, prefetch int, handle DeliveryHandler) error {
	ch, err := client.consumerChannel(prefetch)
	if err != nil {
		return err
	}
	defer ch.Close()

	deliveries, err := ch.Consume(
		queue,
		tag,
		false, // autoAck: we ack per message after the handler returns
		false, // exclusive
		false, // noLocal (RabbitMQ ignores this)
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("rabbitmq: consume(%s): %w", queue, err)
	}

	closed := ch.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			if tag != "" {
				_ = ch.Cancel(tag, false)
			}
			return nil

		case cerr := <-closed:
			if cerr != nil {
				return fmt.Errorf("rabbitmq: channel closed while consuming %s: %w", queue, cerr)
			}
			return nil

		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			client.dispatch(ctx, d, handle)
		}
	}
}

// dispatch runs the handler under its timeout and settles the delivery.
func (client *Client) dispatch(ctx context.Context, d amqp.Delivery, handle DeliveryHandler) {
	hCtx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	if err := handle(hCtx, d); err != nil {
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

// consumerChannel opens a dedicated channel with QoS applied. Each consumer
// gets its own channel so a publisher error can never poison a consumer.
func (client *Client) consumerChannel(prefetch int) (*amqp.Channel, error) {
	client.mu.RLock()
	conn := client.conn
	client.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return nil, errors.New("rabbitmq: connection is not ready")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	if prefetch < 0 {
		prefetch = 1
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("rabbitmq: set QoS (prefetch=%d): %w", prefetch, err)
		}
	}

	return ch, nil
}
