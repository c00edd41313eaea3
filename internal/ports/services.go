package ports

import (
	"context"
	"time"

	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/domain/user"
)

// ----- Shared view DTOs -----

// ShipmentView is the JSON representation of a shipment returned by every
// service surface.
type ShipmentView struct {
	ShipmentID string `json:"shipment_id"`
	CustomerID string `json:"customer_id"`
	DriverID   string `json:"driver_id,omitempty"`
	Status     string `json:"status"`

	OriginAirport      string   `json:"origin_airport,omitempty"`
	DestinationAirport string   `json:"destination_airport,omitempty"`
	PickupAddress      string   `json:"pickup_address,omitempty"`
	PickupLatitude     *float64 `json:"pickup_latitude,omitempty"`
	PickupLongitude    *float64 `json:"pickup_longitude,omitempty"`
	DropoffAddress     string   `json:"dropoff_address,omitempty"`
	DropoffLatitude    *float64 `json:"dropoff_latitude,omitempty"`
	DropoffLongitude   *float64 `json:"dropoff_longitude,omitempty"`

	PickupAt  time.Time `json:"pickup_at"`
	DropoffBy time.Time `json:"dropoff_by"`

	PriceCents int    `json:"price_cents"`
	Currency   string `json:"currency"`
	Notes      string `json:"notes,omitempty"`

	PickupPhotoRef   string `json:"pickup_photo_ref,omitempty"`
	DeliveryPhotoRef string `json:"delivery_photo_ref,omitempty"`
	SignatureRef     string `json:"signature_ref,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	PickedUpAt  *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// NewShipmentView maps the domain entity to its wire representation.
func NewShipmentView(s *shipment.Shipment) ShipmentView {
	view := ShipmentView{
		ShipmentID:  s.ID,
		CustomerID:  s.CustomerID,
		Status:      s.Status.String(),
		PickupAt:    s.PickupAt,
		DropoffBy:   s.DropoffBy,
		PriceCents:  s.PriceCents,
		Currency:    s.Currency,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		ClaimedAt:   s.ClaimedAt,
		PickedUpAt:  s.PickedUpAt,
		DeliveredAt: s.DeliveredAt,

		PickupLatitude:   s.PickupLatitude,
		PickupLongitude:  s.PickupLongitude,
		DropoffLatitude:  s.DropoffLatitude,
		DropoffLongitude: s.DropoffLongitude,
	}
	view.DriverID = deref(s.DriverID)
	view.OriginAirport = deref(s.OriginAirport)
	view.DestinationAirport = deref(s.DestinationAirport)
	view.PickupAddress = deref(s.PickupAddress)
	view.DropoffAddress = deref(s.DropoffAddress)
	view.Notes = deref(s.Notes)
	view.PickupPhotoRef = deref(s.PickupPhotoRef)
	view.DeliveryPhotoRef = deref(s.DeliveryPhotoRef)
	view.SignatureRef = deref(s.SignatureRef)
	return view
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// DriverView is the admin-facing representation of a driver.
type DriverView struct {
	DriverID         string   `json:"driver_id"`
	Email            string   `json:"email"`
	Name             string   `json:"name"`
	IsOnline         bool     `json:"is_online"`
	CurrentLatitude  *float64 `json:"current_latitude,omitempty"`
	CurrentLongitude *float64 `json:"current_longitude,omitempty"`
	VehicleType      string   `json:"vehicle_type,omitempty"`
	VehiclePlate     string   `json:"vehicle_plate,omitempty"`
	Rating           float64  `json:"rating"`
	TotalDeliveries  int      `json:"total_deliveries"`
}

// ----- DTOs for Dispatch Service -----

// SignupInput is the validated input for POST /auth/signup.
type SignupInput struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Phone        string
	Role         user.Role
	VehicleType  string // drivers only
	VehiclePlate string // drivers only
}

// SignupResult is returned after a successful registration.
type SignupResult struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// LoginInput is the validated input for POST /auth/login.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the issued token and a user summary.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	UserID    string      `json:"user_id"`
	Name      string      `json:"name"`
	Role      string      `json:"role"`
	Driver    *DriverView `json:"driver_profile,omitempty"`
}

// CreateShipmentInput is the validated input required to create a shipment.
// Self-service bookings carry the caller's CustomerID; dispatcher bookings
// resolve (or create) the customer by email instead.
type CreateShipmentInput struct {
	CustomerID        string // takes precedence over CustomerEmail when set
	CustomerEmail     string
	CustomerFirstName string // used only when the customer does not exist yet
	CustomerLastName  string
	CustomerPhone     string

	OriginAirport      string
	DestinationAirport string
	PickupAddress      string
	PickupLatitude     *float64
	PickupLongitude    *float64
	PickupAt           time.Time
	PickupContactName  string
	PickupContactPhone string

	DropoffAddress      string
	DropoffLatitude     *float64
	DropoffLongitude    *float64
	DropoffBy           time.Time
	DropoffContactName  string
	DropoffContactPhone string

	PriceCents int
	Currency   string
	Notes      string
}

// DispatchService exposes the customer/dispatcher boundary.
type DispatchService interface {
	Signup(ctx context.Context, in SignupInput) (SignupResult, error)
	Login(ctx context.Context, in LoginInput) (LoginResult, error)
	CreateShipment(ctx context.Context, in CreateShipmentInput) (ShipmentView, error)
	GetShipment(ctx context.Context, shipmentID string) (ShipmentView, error)
	ListCustomerShipments(ctx context.Context, customerID string, status string, limit int) ([]ShipmentView, error)
	CancelShipment(ctx context.Context, shipmentID, customerID string) (ShipmentView, error)
}

// ----- DTOs for Courier Service -----

// EvidenceInput carries optional base64-encoded capture data supplied on a
// lifecycle transition. Data URL prefixes ("data:image/png;base64,...") are
// accepted.
type EvidenceInput struct {
	Photo     string
	Signature string
}

// AdvanceInput is the validated input for the pickup/deliver transitions.
type AdvanceInput struct {
	ShipmentID string
	DriverID   string
	Target     shipment.Status
	Evidence   EvidenceInput
}

// LocationInput is the validated input for POST /drivers/{driver_id}/location.
type LocationInput struct {
	DriverID  string
	Latitude  float64
	Longitude float64
}

// OnlineResult matches the API response for going online/offline.
type OnlineResult struct {
	DriverID string `json:"driver_id"`
	IsOnline bool   `json:"is_online"`
	Message  string `json:"message"`
}

// CourierService exposes the driver boundary: the job board, the claim
// operation, and the delivery lifecycle.
type CourierService interface {
	ListAvailable(ctx context.Context, limit int) ([]ShipmentView, error)
	Claim(ctx context.Context, shipmentID, driverID string) (ShipmentView, error)
	Advance(ctx context.Context, in AdvanceInput) (ShipmentView, error)
	ListDriverShipments(ctx context.Context, driverID string, limit int) ([]ShipmentView, error)

	GoOnline(ctx context.Context, driverID string, lat, lng *float64) (OnlineResult, error)
	GoOffline(ctx context.Context, driverID string) (OnlineResult, error)
	UpdateLocation(ctx context.Context, in LocationInput) error

	GetEvidence(ctx context.Context, ref string) (data []byte, contentType string, err error)
}

// ----- DTOs for Admin Service -----

// StatsShipments groups per-status shipment counts.
type StatsShipments struct {
	Pending   int `json:"pending"`
	Assigned  int `json:"assigned"`
	PickedUp  int `json:"picked_up"`
	Delivered int `json:"delivered"`
	Cancelled int `json:"cancelled"`
}

// StatsDrivers groups driver availability counts.
type StatsDrivers struct {
	Online int `json:"online"`
	Total  int `json:"total"`
}

// StatsResult is the top-level response DTO for GET /admin/stats.
type StatsResult struct {
	Timestamp    time.Time      `json:"timestamp"`
	Shipments    StatsShipments `json:"shipments"`
	RevenueCents int64          `json:"revenue_cents"`
	Drivers      StatsDrivers   `json:"drivers"`
}

// AdminService exposes monitoring operations for administrators.
type AdminService interface {
	GetStats(ctx context.Context) (StatsResult, error)
	ListShipments(ctx context.Context, status string, limit int) ([]ShipmentView, error)
	ListDrivers(ctx context.Context, limit int) ([]DriverView, error)
}
