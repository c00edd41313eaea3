package contracts

import "time"

// ShipmentStatusMessage is published whenever a shipment changes status.
// Routing key: "shipment.status.{status}" on ExchangeShipmentTopic.
type ShipmentStatusMessage struct {
	ShipmentID string    `json:"shipment_id"`
	Status     string    `json:"status"` // PENDING|ASSIGNED|PICKED_UP|DELIVERED|CANCELLED
	Timestamp  time.Time `json:"timestamp"`
	DriverID   string    `json:"driver_id,omitempty"`
	CustomerID string    `json:"customer_id,omitempty"`
	PriceCents int       `json:"price_cents,omitempty"`
	Envelope
}
