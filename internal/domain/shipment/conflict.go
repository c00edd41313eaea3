package shipment

import "fmt"

// ConflictError reports that a claim or advance lost the race on the
// conditional write. It carries the authoritative current state of the row so
// the caller can resync; it is built from the diagnostic re-read, never from
// the read that preceded the write.
type ConflictError struct {
	ShipmentID string
	Status     Status
	ClaimedBy  string // driver currently holding the shipment, if any
}

func (e *ConflictError) Error() string {
	if e.ClaimedBy != "" {
		return fmt.Sprintf("shipment %s already claimed by driver %s", e.ShipmentID, e.ClaimedBy)
	}
	return fmt.Sprintf("shipment %s is %s, not claimable", e.ShipmentID, e.Status)
}
