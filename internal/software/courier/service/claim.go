package service

import (
	"context"
	"time"

	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/domain/user"
	"courier-dispatch/internal/ports"
)

// Claim attempts to take a PENDING shipment for a driver. The outcome is
// decided by a single conditional write: whichever driver's UPDATE changes
// the row wins, every other concurrent caller changes nothing and gets a
// conflict. The diagnostic re-read below only classifies the loss, it never
// decides it.
func (service *courierService) Claim(ctx context.Context, shipmentID, driverID string) (ports.ShipmentView, error) {
	corrID := generateCorrelationID()
	now := time.Now().UTC()

	var out ports.ShipmentView
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		// the claimant must be a registered driver
		claimant, err := service.users.GetByID(ctx, driverID)
		if err != nil {
			return err
		}
		if !claimant.IsDriver() {
			return user.ErrRoleNotPermitted
		}

		won, err := service.shipments.Claim(ctx, shipmentID, driverID, now)
		if err != nil {
			return err
		}
		if !won {
			return service.classifyClaimMiss(ctx, shipmentID)
		}

		fresh, err := service.shipments.GetByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		out = ports.NewShipmentView(fresh)
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "shipment_claim_failed", "Failed to claim shipment", err, map[string]any{
			"shipment_id": shipmentID,
			"driver_id":   driverID,
			"request_id":  corrID,
		})
		return ports.ShipmentView{}, err
	}

	service.publishShipmentStatus(ctx, out, corrID)

	service.logger.Info(ctx, "shipment_claimed", "Driver claimed shipment", map[string]any{
		"shipment_id": shipmentID,
		"driver_id":   driverID,
		"request_id":  corrID,
	})

	return out, nil
}

// classifyClaimMiss re-reads the shipment after a zero-row claim to tell the
// caller why they lost. The write has already failed; the state observed here
// may even have moved again, which is fine for an error message.
func (service *courierService) classifyClaimMiss(ctx context.Context, shipmentID string) error {
	current, err := service.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return err // includes shipment.ErrNotFound
	}

	conflict := &shipment.ConflictError{
		ShipmentID: current.ID,
		Status:     current.Status,
	}
	if current.DriverID != nil {
		conflict.ClaimedBy = *current.DriverID
	}
	return conflict
}
