package postgres

import (
	"context"

	"courier-dispatch/internal/domain/shipment"
)

// CountByStatus returns the number of shipments currently in the given status.
func (repo *ShipmentRepo) CountByStatus(ctx context.Context, status shipment.Status) (int, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM shipments
		WHERE status = $1
	`, status.String()).Scan(&n)
	if err != nil {
		return 0, err
	}

	return n, nil
}

// SumDeliveredCents returns the total value of delivered shipments.
func (repo *ShipmentRepo) SumDeliveredCents(ctx context.Context) (int64, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(price_cents), 0)
		FROM shipments
		WHERE status = 'DELIVERED'
	`).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}
