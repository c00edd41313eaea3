package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"courier-dispatch/internal/general/contracts"
	"courier-dispatch/internal/general/evidence"
	"courier-dispatch/internal/ports"
)

// generateCorrelationID creates a simple correlation ID for tracing requests.
func generateCorrelationID() string {
	var b [3]byte // 6 hex chars
	_, _ = rand.Read(b[:])
	ts := time.Now().UTC().Format("20060102T150405")
	return "req_" + ts + "_" + hex.EncodeToString(b[:])
}

// putDataURL decodes a base64 data URL and stores it as an evidence blob.
func (service *courierService) putDataURL(ctx context.Context, shipmentID, kind, dataURL string) (string, error) {
	data, contentType, err := evidence.DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	return service.evidence.Put(ctx, shipmentID, kind, data, contentType)
}

// publishShipmentStatus emits the post-commit status event. A publish failure
// is logged and swallowed: the database is the source of truth and the HTTP
// caller already holds a committed result.
func (service *courierService) publishShipmentStatus(ctx context.Context, view ports.ShipmentView, corrID string) {
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
