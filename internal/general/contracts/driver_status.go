package contracts

import "time"

// DriverStatusMessage is published when a driver goes online/offline or
// reports a location update.
// Routing key: "driver.status.{driver_id}" on ExchangeDriverTopic.
type DriverStatusMessage struct {
	DriverID  string    `json:"driver_id"`
	Status    string    `json:"status"` // ONLINE|OFFLINE
	Location  *GeoPoint `json:"location,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Envelope
}
