package shipment

import (
	"errors"
	"strings"
	"time"
)

// Shipment is the domain entity corresponding to the `shipments` table.
type Shipment struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Parties
	CustomerID string
	DriverID   *string // nil until claimed; fixed for the rest of the lifetime once set

	// Core state
	Status Status

	// Route
	OriginAirport      *string // 3-letter code, or "OTH" for a custom address
	DestinationAirport *string
	PickupAddress      *string
	PickupLatitude     *float64
	PickupLongitude    *float64
	PickupAt           time.Time
	PickupContactName  *string
	PickupContactPhone *string

	DropoffAddress      *string
	DropoffLatitude     *float64
	DropoffLongitude    *float64
	DropoffBy           time.Time
	DropoffContactName  *string
	DropoffContactPhone *string

	DistanceMiles *float64

	// Commercial
	PriceCents int
	Currency   string

	// Notes (dispatcher instructions, package details)
	Notes *string

	// Evidence references (opaque keys into the evidence store)
	PickupPhotoRef   *string
	DeliveryPhotoRef *string
	SignatureRef     *string

	// Lifecycle timestamps
	ClaimedAt   *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
}

var (
	ErrNotFound            = errors.New("shipment not found")
	ErrCustomerRequired    = errors.New("customer id is required")
	ErrPickupRequired      = errors.New("pickup address or origin airport is required")
	ErrDropoffRequired     = errors.New("dropoff address or destination airport is required")
	ErrWindowInverted      = errors.New("dropoff deadline must be after pickup time")
	ErrNegativePrice       = errors.New("price must not be negative")
	ErrInvalidTransition   = errors.New("invalid shipment status transition")
	ErrAlreadyClaimed      = errors.New("shipment already claimed by a driver")
	ErrNoDriverAssigned    = errors.New("no driver assigned to shipment")
	ErrNotAssignedToDriver = errors.New("shipment is not assigned to this driver")
)

// NewShipment creates a new shipment in PENDING state. The caller provides a
// resolved customer id; route endpoints may be an airport code, a free-text
// address, or both.
func NewShipment(customerID string, pickupAt, dropoffBy time.Time, priceCents int, currency string) (*Shipment, error) {
	if customerID = strings.TrimSpace(customerID); customerID == "" {
		return nil, ErrCustomerRequired
	}
	if !dropoffBy.After(pickupAt) {
		return nil, ErrWindowInverted
	}
	if priceCents < 0 {
		return nil, ErrNegativePrice
	}
	if currency = strings.ToUpper(strings.TrimSpace(currency)); currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC()
	return &Shipment{
		CreatedAt:  now,
		UpdatedAt:  now,
		CustomerID: customerID,
		Status:     StatusPending,
		PickupAt:   pickupAt.UTC(),
		DropoffBy:  dropoffBy.UTC(),
		PriceCents: priceCents,
		Currency:   currency,
	}, nil
}

// ValidateRoute checks that at least one pickup and one dropoff descriptor is set.
func (shipment *Shipment) ValidateRoute() error {
	if !hasText(shipment.OriginAirport) && !hasText(shipment.PickupAddress) {
		return ErrPickupRequired
	}
	if !hasText(shipment.DestinationAirport) && !hasText(shipment.DropoffAddress) {
		return ErrDropoffRequired
	}
	return nil
}

// Claim sets the driver and moves PENDING -> ASSIGNED. This is the in-memory
// mirror of the conditional write the repository performs; the repository's
// affected-row count, not this method, decides a race.
func (shipment *Shipment) Claim(driverID string) error {
	if strings.TrimSpace(driverID) == "" {
		return ErrNoDriverAssigned
	}
	if shipment.DriverID != nil && *shipment.DriverID != "" {
		return ErrAlreadyClaimed
	}
	if shipment.Status != StatusPending {
		return ErrInvalidTransition
	}

	shipment.DriverID = &driverID
	now := time.Now().UTC()
	shipment.ClaimedAt = &now
	shipment.setStatus(StatusAssigned)
	return nil
}

// MarkPickedUp transitions ASSIGNED -> PICKED_UP for the owning driver.
func (shipment *Shipment) MarkPickedUp(driverID string, ev Evidence) error {
	if err := shipment.requireOwner(driverID); err != nil {
		return err
	}
	if shipment.Status != StatusAssigned {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	shipment.PickedUpAt = &now
	shipment.attachEvidence(ev)
	shipment.setStatus(StatusPickedUp)
	return nil
}

// MarkDelivered transitions PICKED_UP -> DELIVERED for the owning driver.
func (shipment *Shipment) MarkDelivered(driverID string, ev Evidence) error {
	if err := shipment.requireOwner(driverID); err != nil {
		return err
	}
	if shipment.Status != StatusPickedUp {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	shipment.DeliveredAt = &now
	shipment.attachEvidence(ev)
	shipment.setStatus(StatusDelivered)
	return nil
}

// Cancel transitions PENDING -> CANCELLED. Once a driver holds the job the
// shipment can no longer be cancelled through this path.
func (shipment *Shipment) Cancel() error {
	if shipment.Status != StatusPending {
		return ErrInvalidTransition
	}
	shipment.setStatus(StatusCancelled)
	return nil
}

// requireOwner checks the caller is the assigned driver. A mismatch is an
// authorization failure, distinct from a state-machine failure.
func (shipment *Shipment) requireOwner(driverID string) error {
	if shipment.DriverID == nil || *shipment.DriverID == "" {
		return ErrNoDriverAssigned
	}
	if *shipment.DriverID != driverID {
		return ErrNotAssignedToDriver
	}
	return nil
}

// attachEvidence routes the photo reference to the slot matching the
// transition in flight: the shipment is still ASSIGNED while picking up and
// still PICKED_UP while delivering.
func (shipment *Shipment) attachEvidence(ev Evidence) {
	if ref := strings.TrimSpace(ev.PhotoRef); ref != "" {
		switch shipment.Status {
		case StatusAssigned:
			shipment.PickupPhotoRef = &ref
		case StatusPickedUp:
			shipment.DeliveryPhotoRef = &ref
		}
	}
	if ref := strings.TrimSpace(ev.SignatureRef); ref != "" {
		shipment.SignatureRef = &ref
	}
}

// ----- internal helpers -----

func (shipment *Shipment) setStatus(status Status) {
	shipment.Status = status
	shipment.touch()
}

func (shipment *Shipment) touch() {
	shipment.UpdatedAt = time.Now().UTC()
}

func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
