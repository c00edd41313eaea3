package service

import (
	"context"
	"fmt"
	"time"

	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/ports"
)

// Advance moves a shipment one step along the delivery path (ASSIGNED ->
// PICKED_UP or PICKED_UP -> DELIVERED). The write is conditional on both the
// expected predecessor status and the owning driver, so a stale or concurrent
// caller changes nothing. Delivering also bumps the driver's delivery counter
// inside the same transaction.
func (service *courierService) Advance(ctx context.Context, in ports.AdvanceInput) (ports.ShipmentView, error) {
	corrID := generateCorrelationID()
	now := time.Now().UTC()

	from, err := predecessorOf(in.Target)
	if err != nil {
		return ports.ShipmentView{}, err
	}

	ev, err := service.storeEvidence(ctx, in.ShipmentID, in.Target, in.Evidence)
	if err != nil {
		service.logger.Error(ctx, "evidence_store_failed", "Failed to store transition evidence", err, map[string]any{
			"shipment_id": in.ShipmentID,
			"request_id":  corrID,
		})
		return ports.ShipmentView{}, err
	}

	var out ports.ShipmentView
	err = service.uow.WithinTx(ctx, func(ctx context.Context) error {
		moved, err := service.shipments.Advance(ctx, in.ShipmentID, in.DriverID, from, in.Target, ev, now)
		if err != nil {
			return err
		}
		if !moved {
			return service.classifyAdvanceMiss(ctx, in.ShipmentID, in.DriverID, from)
		}

		// the counter moves with the status or not at all
		if in.Target == shipment.StatusDelivered {
			if err := service.drivers.IncrementDeliveries(ctx, in.DriverID); err != nil {
				return err
			}
		}

		fresh, err := service.shipments.GetByID(ctx, in.ShipmentID)
		if err != nil {
			return err
		}
		out = ports.NewShipmentView(fresh)
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "shipment_advance_failed", "Failed to advance shipment", err, map[string]any{
			"shipment_id": in.ShipmentID,
			"driver_id":   in.DriverID,
			"target":      in.Target.String(),
			"request_id":  corrID,
		})
		return ports.ShipmentView{}, err
	}

	service.publishShipmentStatus(ctx, out, corrID)

	service.logger.Info(ctx, "shipment_advanced", "Shipment moved along the delivery path", map[string]any{
		"shipment_id": in.ShipmentID,
		"driver_id":   in.DriverID,
		"status":      out.Status,
		"request_id":  corrID,
	})

	return out, nil
}

// predecessorOf maps a transition target to the single status it may leave
// from. Only the two driver-performed steps are reachable here.
func predecessorOf(target shipment.Status) (shipment.Status, error) {
	switch target {
	case shipment.StatusPickedUp:
		return shipment.StatusAssigned, nil
	case shipment.StatusDelivered:
		return shipment.StatusPickedUp, nil
	default:
		return "", fmt.Errorf("%w: cannot advance to %s", shipment.ErrInvalidTransition, target)
	}
}

// classifyAdvanceMiss re-reads the shipment after a zero-row advance and maps
// the observed state to the right caller error. Purely diagnostic.
func (service *courierService) classifyAdvanceMiss(ctx context.Context, shipmentID, driverID string, from shipment.Status) error {
	current, err := service.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return err // includes shipment.ErrNotFound
	}

	if current.DriverID == nil || *current.DriverID == "" {
		return shipment.ErrNoDriverAssigned
	}
	if *current.DriverID != driverID {
		return shipment.ErrNotAssignedToDriver
	}
	// right driver, wrong state: repeated or out-of-order transition
	return fmt.Errorf("%w: shipment is %s, expected %s", shipment.ErrInvalidTransition, current.Status, from)
}

// storeEvidence decodes any supplied base64 data URLs and persists them,
// returning opaque references for the repository to attach. Evidence lands in
// the store before the transaction; an orphaned blob after a failed advance
// is harmless, a committed row pointing at a missing blob is not.
func (service *courierService) storeEvidence(ctx context.Context, shipmentID string, target shipment.Status, in ports.EvidenceInput) (shipment.Evidence, error) {
	var ev shipment.Evidence

	kind := "pickup"
	if target == shipment.StatusDelivered {
		kind = "delivery"
	}

	if in.Photo != "" {
		ref, err := service.putDataURL(ctx, shipmentID, kind+"-photo", in.Photo)
		if err != nil {
			return shipment.Evidence{}, err
		}
		ev.PhotoRef = ref
	}
	if in.Signature != "" {
		ref, err := service.putDataURL(ctx, shipmentID, "signature", in.Signature)
		if err != nil {
			return shipment.Evidence{}, err
		}
		ev.SignatureRef = ref
	}

	return ev, nil
}

// GetEvidence loads a stored blob by its opaque reference.
func (service *courierService) GetEvidence(ctx context.Context, ref string) ([]byte, string, error) {
	return service.evidence.Get(ctx, ref)
}
