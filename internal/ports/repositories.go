package ports

import (
	"context"
	"time"

	"courier-dispatch/internal/domain/driver"
	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/domain/user"
)

// UnitOfWork interface is used to manage transactions across multiple repository operations.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the methods for managing user data.
type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// ShipmentRepository defines the methods for managing shipment data. Claim,
// Advance and CancelPending are conditional writes: they report whether the
// row was actually changed, and the caller must branch on that report alone.
type ShipmentRepository interface {
	CreateShipment(ctx context.Context, s *shipment.Shipment) error
	GetByID(ctx context.Context, id string) (*shipment.Shipment, error)

	// ListAvailable returns claimable (PENDING) shipments ordered by pickup
	// urgency, ties broken by creation time for deterministic polling.
	ListAvailable(ctx context.Context, limit int) ([]*shipment.Shipment, error)
	ListByCustomer(ctx context.Context, customerID string, status *shipment.Status, limit int) ([]*shipment.Shipment, error)
	ListByDriver(ctx context.Context, driverID string, limit int) ([]*shipment.Shipment, error)
	ListByStatus(ctx context.Context, status *shipment.Status, limit int) ([]*shipment.Shipment, error)

	Claim(ctx context.Context, shipmentID, driverID string, claimedAt time.Time) (bool, error)
	Advance(ctx context.Context, shipmentID, driverID string, from, to shipment.Status, ev shipment.Evidence, at time.Time) (bool, error)
	CancelPending(ctx context.Context, shipmentID, customerID string, at time.Time) (bool, error)

	CountByStatus(ctx context.Context, status shipment.Status) (int, error)
	SumDeliveredCents(ctx context.Context) (int64, error)
}

// DriverProfileRepository defines the methods for managing driver profile data.
type DriverProfileRepository interface {
	CreateProfile(ctx context.Context, p *driver.Profile) error
	GetByUserID(ctx context.Context, userID string) (*driver.Profile, error)
	SetOnline(ctx context.Context, userID string, online bool, lat, lng *float64) error
	UpdateLocation(ctx context.Context, userID string, lat, lng float64) error
	IncrementDeliveries(ctx context.Context, userID string) error
	ListAll(ctx context.Context, limit int) ([]*driver.Profile, error)
	CountOnline(ctx context.Context) (int, error)
	CountAll(ctx context.Context) (int, error)
}

// EvidenceStore is the opaque blob store for pickup/delivery photos and
// signatures. The core persists only the returned reference string.
type EvidenceStore interface {
	Put(ctx context.Context, shipmentID, kind string, data []byte, contentType string) (ref string, err error)
	Get(ctx context.Context, ref string) (data []byte, contentType string, err error)
}
