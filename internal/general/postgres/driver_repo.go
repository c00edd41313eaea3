package postgres

import (
	"context"
	"fmt"

	"courier-dispatch/internal/domain/driver"
	"courier-dispatch/internal/ports"

	"github.com/jackc/pgx/v5"
)

// DriverRepo persists driver profiles using pgx and plain SQL.
type DriverRepo struct{}

// NewDriverRepo constructs a new DriverRepo.
func NewDriverRepo() ports.DriverProfileRepository {
	return &DriverRepo{}
}

// CreateProfile inserts a new driver profile row keyed by user id.
func (repo *DriverRepo) CreateProfile(ctx context.Context, p *driver.Profile) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO driver_profiles (user_id, is_online, vehicle_type, vehicle_plate, rating, total_deliveries)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`,
		p.UserID,
		p.IsOnline,
		p.VehicleType,
		p.VehiclePlate,
		p.Rating,
		p.TotalDeliveries,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert driver profile: %w", err)
	}

	return nil
}

// GetByUserID returns one driver profile by the owning user's id.
func (repo *DriverRepo) GetByUserID(ctx context.Context, userID string) (*driver.Profile, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		SELECT user_id, created_at, updated_at, is_online,
		       current_latitude, current_longitude,
		       vehicle_type, vehicle_plate, rating, total_deliveries
		FROM driver_profiles
		WHERE user_id = $1
	`, userID)

	out, err := scanProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, driver.ErrNotFound
		}
		return nil, err
	}

	return out, nil
}

// SetOnline flips a driver's availability, optionally seeding coordinates.
func (repo *DriverRepo) SetOnline(ctx context.Context, userID string, online bool, lat, lng *float64) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE driver_profiles
		SET is_online = $1,
		    current_latitude = COALESCE($2, current_latitude),
		    current_longitude = COALESCE($3, current_longitude),
		    updated_at = now()
		WHERE user_id = $4
	`, online, lat, lng, userID)
	if err != nil {
		return fmt.Errorf("set driver online: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return driver.ErrNotFound
	}

	return nil
}

// UpdateLocation records the driver's last known coordinates.
func (repo *DriverRepo) UpdateLocation(ctx context.Context, userID string, lat, lng float64) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE driver_profiles
		SET current_latitude = $1,
		    current_longitude = $2,
		    updated_at = now()
		WHERE user_id = $3
	`, lat, lng, userID)
	if err != nil {
		return fmt.Errorf("update driver location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return driver.ErrNotFound
	}

	return nil
}

// IncrementDeliveries bumps the completed-delivery counter by exactly one.
// Called in the same transaction as the DELIVERED status write so the
// counter can never drift from the shipments table.
func (repo *DriverRepo) IncrementDeliveries(ctx context.Context, userID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE driver_profiles
		SET total_deliveries = total_deliveries + 1,
		    updated_at = now()
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("increment deliveries: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return driver.ErrNotFound
	}

	return nil
}

// ListAll returns driver profiles, online drivers first.
func (repo *DriverRepo) ListAll(ctx context.Context, limit int) ([]*driver.Profile, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT user_id, created_at, updated_at, is_online,
		       current_latitude, current_longitude,
		       vehicle_type, vehicle_plate, rating, total_deliveries
		FROM driver_profiles
		ORDER BY is_online DESC, total_deliveries DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query driver profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*driver.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return profiles, nil
}

// CountOnline returns the number of drivers currently marked online.
func (repo *DriverRepo) CountOnline(ctx context.Context) (int, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM driver_profiles
		WHERE is_online = true
	`).Scan(&n)
	if err != nil {
		return 0, err
	}

	return n, nil
}

// CountAll returns the total number of registered drivers.
func (repo *DriverRepo) CountAll(ctx context.Context) (int, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM driver_profiles
	`).Scan(&n)
	if err != nil {
		return 0, err
	}

	return n, nil
}

func scanProfile(row rowScanner) (*driver.Profile, error) {
	var out driver.Profile
	err := row.Scan(
		&out.UserID, &out.CreatedAt, &out.UpdatedAt, &out.IsOnline,
		&out.CurrentLatitude, &out.CurrentLongitude,
		&out.VehicleType, &out.VehiclePlate, &out.Rating, &out.TotalDeliveries,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
