package driver

import (
	"errors"
	"strings"
	"time"
)

// Profile is the domain entity corresponding to the `driver_profiles` table.
// It is keyed by the owning user's id (one profile per driver-type user).
type Profile struct {
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Operational state
	IsOnline         bool
	CurrentLatitude  *float64
	CurrentLongitude *float64

	// Vehicle
	VehicleType  string
	VehiclePlate string

	// KPIs
	Rating          float64
	TotalDeliveries int // monotonic; incremented once per completed delivery
}

var (
	ErrUserIDRequired = errors.New("user id is required")
	ErrInvalidRating  = errors.New("rating must be between 1.0 and 5.0")
	ErrBadCoordinates = errors.New("latitude/longitude out of range")
	ErrNotFound       = errors.New("driver profile not found")
)

// NewProfile creates a driver profile with sane defaults.
func NewProfile(userID, vehicleType, vehiclePlate string) (*Profile, error) {
	if userID = strings.TrimSpace(userID); userID == "" {
		return nil, ErrUserIDRequired
	}

	now := time.Now().UTC()
	return &Profile{
		UserID:       userID,
		CreatedAt:    now,
		UpdatedAt:    now,
		IsOnline:     false,
		VehicleType:  strings.TrimSpace(vehicleType),
		VehiclePlate: strings.TrimSpace(vehiclePlate),
		Rating:       5.0,
	}, nil
}

// GoOnline marks the driver available for work, optionally seeding a location.
func (profile *Profile) GoOnline(lat, lng *float64) error {
	if err := validateCoords(lat, lng); err != nil {
		return err
	}
	profile.IsOnline = true
	if lat != nil && lng != nil {
		profile.CurrentLatitude = lat
		profile.CurrentLongitude = lng
	}
	profile.touch()
	return nil
}

// GoOffline marks the driver unavailable.
func (profile *Profile) GoOffline() {
	profile.IsOnline = false
	profile.touch()
}

// UpdateLocation records the driver's last known coordinates.
func (profile *Profile) UpdateLocation(lat, lng float64) error {
	if err := validateCoords(&lat, &lng); err != nil {
		return err
	}
	profile.CurrentLatitude = &lat
	profile.CurrentLongitude = &lng
	profile.touch()
	return nil
}

// RecordDelivery increments the completed-delivery counter by exactly one.
func (profile *Profile) RecordDelivery() {
	profile.TotalDeliveries++
	profile.touch()
}

// SetRating replaces the driver rating.
func (profile *Profile) SetRating(rating float64) error {
	if rating < 1.0 || rating > 5.0 {
		return ErrInvalidRating
	}
	profile.Rating = rating
	profile.touch()
	return nil
}

// ValidateCoordinates checks an optional coordinate pair: both present and in
// range, or both absent.
func ValidateCoordinates(lat, lng *float64) error {
	return validateCoords(lat, lng)
}

// ---- internal helpers ----

func validateCoords(lat, lng *float64) error {
	if lat == nil && lng == nil {
		return nil
	}
	if lat == nil || lng == nil {
		return ErrBadCoordinates
	}
	if *lat < -90 || *lat > 90 || *lng < -180 || *lng > 180 {
		return ErrBadCoordinates
	}
	return nil
}

func (profile *Profile) touch() {
	profile.UpdatedAt = time.Now().UTC()
}
