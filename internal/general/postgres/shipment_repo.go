package postgres

import (
	"context"
	"fmt"
	"time"

	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ShipmentRepo persists shipments using pgx and plain SQL.
type ShipmentRepo struct{}

// NewShipmentRepo constructs a new ShipmentRepo.
func NewShipmentRepo() ports.ShipmentRepository {
	return &ShipmentRepo{}
}

// shipmentColumns is the canonical column list, kept in scan order.
const shipmentColumns = `
	id, created_at, updated_at, customer_id, driver_id, status,
	origin_airport, destination_airport,
	pickup_address, pickup_latitude, pickup_longitude, pickup_at,
	pickup_contact_name, pickup_contact_phone,
	dropoff_address, dropoff_latitude, dropoff_longitude, dropoff_by,
	dropoff_contact_name, dropoff_contact_phone,
	distance_miles, price_cents, currency, notes,
	pickup_photo_ref, delivery_photo_ref, signature_ref,
	claimed_at, picked_up_at, delivered_at`

// CreateShipment inserts a new shipment row in PENDING state.
func (repo *ShipmentRepo) CreateShipment(ctx context.Context, s *shipment.Shipment) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	// insert only the columns we actually have values for at creation time
	err = tx.QueryRow(ctx, `
		INSERT INTO shipments (
			customer_id, status,
			origin_airport, destination_airport,
			pickup_address, pickup_latitude, pickup_longitude, pickup_at,
			pickup_contact_name, pickup_contact_phone,
			dropoff_address, dropoff_latitude, dropoff_longitude, dropoff_by,
			dropoff_contact_name, dropoff_contact_phone,
			distance_miles, price_cents, currency, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at, updated_at
	`,
		s.CustomerID,
		s.Status.String(), // "PENDING"
		s.OriginAirport,
		s.DestinationAirport,
		s.PickupAddress,
		s.PickupLatitude,
		s.PickupLongitude,
		s.PickupAt,
		s.PickupContactName,
		s.PickupContactPhone,
		s.DropoffAddress,
		s.DropoffLatitude,
		s.DropoffLongitude,
		s.DropoffBy,
		s.DropoffContactName,
		s.DropoffContactPhone,
		s.DistanceMiles,
		s.PriceCents,
		s.Currency,
		s.Notes,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}

	return nil
}

// GetByID fetches a shipment by primary key (uuid).
func (repo *ShipmentRepo) GetByID(ctx context.Context, id string) (*shipment.Shipment, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id)
	out, err := scanShipment(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shipment.ErrNotFound
		}
		return nil, err
	}

	return out, nil
}

// ListAvailable returns PENDING shipments ordered by pickup urgency.
// Ties are broken by created_at so repeated polls see a stable order.
func (repo *ShipmentRepo) ListAvailable(ctx context.Context, limit int) ([]*shipment.Shipment, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+shipmentColumns+`
		FROM shipments
		WHERE status = 'PENDING' AND driver_id IS NULL
		ORDER BY pickup_at ASC, created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query available shipments: %w", err)
	}
	defer rows.Close()

	return collectShipments(rows)
}

// ListByCustomer returns a customer's shipments, optionally filtered by status.
func (repo *ShipmentRepo) ListByCustomer(ctx context.Context, customerID string, status *shipment.Status, limit int) ([]*shipment.Shipment, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows pgx.Rows
	if status != nil {
		rows, err = tx.Query(ctx, `
			SELECT `+shipmentColumns+`
			FROM shipments
			WHERE customer_id = $1 AND status = $2
			ORDER BY created_at DESC
			LIMIT $3
		`, customerID, status.String(), limit)
	} else {
		rows, err = tx.Query(ctx, `
			SELECT `+shipmentColumns+`
			FROM shipments
			WHERE customer_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		`, customerID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query shipments by customer: %w", err)
	}
	defer rows.Close()

	return collectShipments(rows)
}

// ListByDriver returns shipments a driver has claimed, most recent first.
func (repo *ShipmentRepo) ListByDriver(ctx context.Context, driverID string, limit int) ([]*shipment.Shipment, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+shipmentColumns+`
		FROM shipments
		WHERE driver_id = $1
		ORDER BY claimed_at DESC NULLS LAST, created_at DESC
		LIMIT $2
	`, driverID, limit)
	if err != nil {
		return nil, fmt.Errorf("query shipments by driver: %w", err)
	}
	defer rows.Close()

	return collectShipments(rows)
}

// ListByStatus returns shipments across all customers, optionally filtered by status.
func (repo *ShipmentRepo) ListByStatus(ctx context.Context, status *shipment.Status, limit int) ([]*shipment.Shipment, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows pgx.Rows
	if status != nil {
		rows, err = tx.Query(ctx, `
			SELECT `+shipmentColumns+`
			FROM shipments
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2
		`, status.String(), limit)
	} else {
		rows, err = tx.Query(ctx, `
			SELECT `+shipmentColumns+`
			FROM shipments
			ORDER BY created_at DESC
			LIMIT $1
		`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query shipments by status: %w", err)
	}
	defer rows.Close()

	return collectShipments(rows)
}

// Claim attempts to take a PENDING, unassigned shipment for a driver with a
// single conditional UPDATE. The affected-row count is the only signal: one
// row means the driver won, zero means the shipment was missing, already
// taken, or no longer PENDING. No row is ever locked or pre-read here, so
// concurrent claimers serialize on the row write itself.
func (repo *ShipmentRepo) Claim(ctx context.Context, shipmentID, driverID string, claimedAt time.Time) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE shipments
		SET driver_id = $1,
		    status = 'ASSIGNED',
		    claimed_at = $2,
		    updated_at = now()
		WHERE id = $3
		  AND status = 'PENDING'
		  AND driver_id IS NULL
	`, driverID, claimedAt, shipmentID)
	if err != nil {
		return false, fmt.Errorf("claim shipment: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// Advance moves a shipment one step along the delivery path with a single
// conditional UPDATE guarded by both the expected predecessor status and the
// owning driver. Stamps the timeline column and evidence refs for the target
// status. Same discipline as Claim: RowsAffected decides the outcome.
func (repo *ShipmentRepo) Advance(ctx context.Context, shipmentID, driverID string, from, to shipment.Status, ev shipment.Evidence, at time.Time) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	var tag pgconn.CommandTag
	switch to {
	case shipment.StatusPickedUp:
		tag, err = tx.Exec(ctx, `
			UPDATE shipments
			SET status = $1,
			    picked_up_at = $2,
			    pickup_photo_ref = COALESCE(NULLIF($3, ''), pickup_photo_ref),
			    updated_at = now()
			WHERE id = $4
			  AND status = $5
			  AND driver_id = $6
		`, to.String(), at, ev.PhotoRef, shipmentID, from.String(), driverID)
	case shipment.StatusDelivered:
		tag, err = tx.Exec(ctx, `
			UPDATE shipments
			SET status = $1,
			    delivered_at = $2,
			    delivery_photo_ref = COALESCE(NULLIF($3, ''), delivery_photo_ref),
			    signature_ref = COALESCE(NULLIF($4, ''), signature_ref),
			    updated_at = now()
			WHERE id = $5
			  AND status = $6
			  AND driver_id = $7
		`, to.String(), at, ev.PhotoRef, ev.SignatureRef, shipmentID, from.String(), driverID)
	default:
		return false, fmt.Errorf("advance to %s is not a delivery step", to)
	}
	if err != nil {
		return false, fmt.Errorf("advance shipment to %s: %w", to, err)
	}

	return tag.RowsAffected() == 1, nil
}

// CancelPending cancels a shipment only while it is still PENDING and only
// for its owning customer. Once a driver holds the job the guard fails and
// zero rows change.
func (repo *ShipmentRepo) CancelPending(ctx context.Context, shipmentID, customerID string, at time.Time) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE shipments
		SET status = 'CANCELLED',
		    updated_at = $1
		WHERE id = $2
		  AND customer_id = $3
		  AND status = 'PENDING'
	`, at, shipmentID, customerID)
	if err != nil {
		return false, fmt.Errorf("cancel shipment: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// --- helpers ---

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanShipment reads one row in shipmentColumns order.
func scanShipment(row rowScanner) (*shipment.Shipment, error) {
	var out shipment.Shipment
	var status string

	err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.CustomerID, &out.DriverID, &status,
		&out.OriginAirport, &out.DestinationAirport,
		&out.PickupAddress, &out.PickupLatitude, &out.PickupLongitude, &out.PickupAt,
		&out.PickupContactName, &out.PickupContactPhone,
		&out.DropoffAddress, &out.DropoffLatitude, &out.DropoffLongitude, &out.DropoffBy,
		&out.DropoffContactName, &out.DropoffContactPhone,
		&out.DistanceMiles, &out.PriceCents, &out.Currency, &out.Notes,
		&out.PickupPhotoRef, &out.DeliveryPhotoRef, &out.SignatureRef,
		&out.ClaimedAt, &out.PickedUpAt, &out.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}
	out.Status = shipment.Status(status)

	return &out, nil
}

// collectShipments drains rows into a slice.
func collectShipments(rows pgx.Rows) ([]*shipment.Shipment, error) {
	var shipments []*shipment.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		shipments = append(shipments, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return shipments, nil
}
