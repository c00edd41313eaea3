package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"courier-dispatch/internal/general/contracts"
	"courier-dispatch/internal/ports"
)

// generateCorrelationID creates a simple correlation ID for tracing requests.
func generateCorrelationID() string {
	var b [3]byte // 6 hex chars
	_, _ = rand.Read(b[:])
	ts := time.Now().UTC().Format("20060102T150405")
	return "req_" + ts + "_" + hex.EncodeToString(b[:])
}

// publishShipmentStatus emits the post-commit status event. Publish failures
// are logged and swallowed; the database already holds the truth.
func (service *dispatchService) publishShipmentStatus(ctx context.Context, view ports.ShipmentView, corrID string) {
	msg := contracts.ShipmentStatusMessage{
		ShipmentID: view.ShipmentID,
		Status:     view.Status,
		Timestamp:  time.Now().UTC(),
		DriverID:   view.DriverID,
		CustomerID: view.CustomerID,
		PriceCents: view.PriceCents,
		Envelope:   contracts.Envelope{CorrelationID: corrID},
	}

	if err := service.pub.PublishShipmentStatus(msg); err != nil {
		service.logger.Error(ctx, "shipment_status_publish_failed", "Failed to publish shipment status to RabbitMQ", err, map[string]any{
			"shipment_id": view.ShipmentID,
			"status":      view.Status,
			"request_id":  corrID,
		})
		return
	}

	service.logger.Info(ctx, "shipment_status_published", "Published shipment status to RabbitMQ", map[string]any{
		"shipment_id": view.ShipmentID,
		"status":      view.Status,
		"request_id":  corrID,
	})
}
