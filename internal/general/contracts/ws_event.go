package contracts

import "time"

// WSAdminShipmentEvent mirrors status changes pushed over the admin WebSocket feed.
type WSAdminShipmentEvent struct {
	Type       string    `json:"type"` // "shipment_status_update"
	ShipmentID string    `json:"shipment_id"`
	Status     string    `json:"status"`
	DriverID   string    `json:"driver_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Envelope
}
