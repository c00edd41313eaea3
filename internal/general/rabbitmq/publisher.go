package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"courier-dispatch/internal/general/contracts"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MQPublisher is a simple RabbitMQ publisher using the Client.
type MQPublisher struct {
	Client   *Client
	Producer string // service name stamped into the Envelope
}

// NewMQPublisher constructs an MQPublisher using the provided RabbitMQ client.
func NewMQPublisher(client *Client, producer string) *MQPublisher {
	return &MQPublisher{Client: client, Producer: producer}
}

// Publish sends a message to the specified RabbitMQ exchange and routing key.
func (publisher *MQPublisher) Publish(exchange, routingKey string, body []byte) error {
	return publisher.Client.PublishMessage(exchange, routingKey, body)
}

// PublishShipmentStatus emits a shipment status-change event on the shipment
// topic exchange. The routing key embeds the lowercased status.
func (publisher *MQPublisher) PublishShipmentStatus(msg contracts.ShipmentStatusMessage) error {
	msg.Producer = publisher.Producer
	msg.SentAt = time.Now().UTC()

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal shipment status message: %w", err)
	}

	key := contracts.RouteShipmentStatusPrefix + strings.ToLower(msg.Status)
	return publisher.Publish(contracts.ExchangeShipmentTopic, key, body)
}

// PublishDriverStatus emits a driver availability/location event on the
// driver topic exchange.
func (publisher *MQPublisher) PublishDriverStatus(msg contracts.DriverStatusMessage) error {
	msg.Producer = publisher.Producer
	msg.SentAt = time.Now().UTC()

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal driver status message: %w", err)
	}

	key := contracts.RouteDriverStatusPrefix + msg.DriverID
	return publisher.Publish(contracts.ExchangeDriverTopic, key, body)
}

// PublishMessage publishes JSON messages with persistence and AMQP.
func (client *Client) PublishMessage(exchange, routingKey string, body []byte) error {
	client.mu.RLock()
	ch := client.pubChan
	conn := client.conn
	client.mu.RUnlock()

	// quick fail if no channel
	if conn == nil || conn.IsClosed() {
		return errors.New("rabbitmq: connection is not open")
	}
	if ch == nil || ch.IsClosed() {
		return errors.New("rabbitmq: publish channel is not open")
	}

	client.pubMu.Lock()
	defer client.pubMu.Unlock()
	confirms := client.pubConfirms

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ch.PublishWithContext(ctx, exchange, routingKey, true /* mandatory */, false, /* immediate */
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	); err != nil {
		return err
	}

	select {
	case c := <-confirms:
		if !c.Ack {
			return fmt.Errorf("rabbitmq: publish not acknowledged")
		}
	case <-ctx.Done():
		// keep the confirm stream aligned: try to consume exactly one confirm even if we return a timeout to the caller
		select {
		case c := <-confirms:
			// if we got a confirm now, return an error if it was a nack
			if !c.Ack {
				return fmt.Errorf("rabbitmq: publish not acknowledged after timeout")
			}
		case <-time.After(2 * time.Second):
			// give up trying to read from the confirms channel
		}

		// return the original context error
		return ctx.Err()
	}

	return nil
}
