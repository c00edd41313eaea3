package consumer

import (
	"context"
	"encoding/json"
	"time"

	"courier-dispatch/internal/general/contracts"
	"courier-dispatch/internal/general/logger"
	"courier-dispatch/internal/general/rabbitmq"
	"courier-dispatch/internal/general/websocket"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ShipmentFeed consumes shipment status events off the queue and fans them
// out to connected admin dashboards.
type ShipmentFeed struct {
	logger   *logger.Logger
	client   *rabbitmq.Client
	hub      *websocket.Hub
	prefetch int
}

// NewShipmentFeed wires the queue-to-WebSocket bridge.
func NewShipmentFeed(logger *logger.Logger, client *rabbitmq.Client, hub *websocket.Hub, prefetch int) *ShipmentFeed {
	if prefetch <= 0 {
		prefetch = 32
	}
	return &ShipmentFeed{logger: logger, client: client, hub: hub, prefetch: prefetch}
}

// Run consumes until the context is cancelled. Channel-level failures are
// retried with a short pause so a broker restart does not kill the feed.
func (feed *ShipmentFeed) Run(ctx context.Context) {
	for {
		err := feed.client.Consume(ctx, contracts.QueueShipmentStatus, "admin-feed", feed.prefetch, feed.handle)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			feed.logger.Error(ctx, "feed_consume_failed", "Shipment feed consumer stopped, retrying", err, nil)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(3 * time.Second):
		}
	}
}

// handle turns one queue delivery into a dashboard broadcast. A payload that
// does not parse is an error so the consumer drops it instead of re-queueing.
func (feed *ShipmentFeed) handle(ctx context.Context, d amqp.Delivery) error {
	var msg contracts.ShipmentStatusMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		feed.logger.Error(ctx, "feed_decode_failed", "Dropping malformed shipment status message", err, map[string]any{
			"routing_key": d.RoutingKey,
		})
		return err
	}

	feed.hub.Broadcast(contracts.WSAdminShipmentEvent{
		Type:       "shipment_status_update",
		ShipmentID: msg.ShipmentID,
		Status:     msg.Status,
		DriverID:   msg.DriverID,
		Timestamp:  msg.Timestamp,
		Envelope:   msg.Envelope,
	})

	feed.logger.Debug(ctx, "feed_event_broadcast", "Broadcast shipment status to admins", map[string]any{
		"shipment_id": msg.ShipmentID,
		"status":      msg.Status,
		"admins":      feed.hub.ConnectedAdmins(),
	})
	return nil
}
