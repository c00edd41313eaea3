package shipment

import (
	"errors"
	"strings"
)

// Status is a shipment status as stored in the `shipment_status` enum.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAssigned  Status = "ASSIGNED"
	StatusPickedUp  Status = "PICKED_UP"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var ErrInvalidStatus = errors.New("invalid shipment status")

// ParseStatus normalizes (uppercases+trims) and validates a status string.
func ParseStatus(in string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Valid reports whether status is one of the allowed shipment status constants.
func (status Status) Valid() bool {
	switch status {
	case StatusPending, StatusAssigned, StatusPickedUp, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Status.
func (status Status) String() string {
	return string(status)
}

// Next returns the single valid successor along the delivery path, or ok=false
// for terminal states. The path is strictly linear: PENDING -> ASSIGNED ->
// PICKED_UP -> DELIVERED. CANCELLED is reachable only from PENDING and only
// through Cancel, never through Next.
func (status Status) Next() (Status, bool) {
	switch status {
	case StatusPending:
		return StatusAssigned, true
	case StatusAssigned:
		return StatusPickedUp, true
	case StatusPickedUp:
		return StatusDelivered, true
	default:
		return "", false
	}
}

// CanTransitionTo specifies if the status can transition to the next status.
func (status Status) CanTransitionTo(next Status) bool {
	if status == StatusPending && next == StatusCancelled {
		return true
	}
	succ, ok := status.Next()
	return ok && succ == next
}

// Terminal indicates if the status is in a terminal state.
func (status Status) Terminal() bool {
	return status == StatusDelivered || status == StatusCancelled
}
