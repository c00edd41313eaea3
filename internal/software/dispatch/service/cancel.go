package service

import (
	"context"
	"time"

	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/ports"
)

// CancelShipment lets a customer withdraw a shipment that no driver has
// touched yet. The write is conditional on PENDING status and on ownership;
// once a driver holds the job the guard fails and the caller gets a conflict
// carrying the current state.
func (service *dispatchService) CancelShipment(ctx context.Context, shipmentID, customerID string) (ports.ShipmentView, error) {
	corrID := generateCorrelationID()
	now := time.Now().UTC()

	var out ports.ShipmentView
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		cancelled, err := service.shipments.CancelPending(ctx, shipmentID, customerID, now)
		if err != nil {
			return err
		}
		if !cancelled {
			return service.classifyCancelMiss(ctx, shipmentID, customerID)
		}

		fresh, err := service.shipments.GetByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		out = ports.NewShipmentView(fresh)
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "shipment_cancel_failed", "Failed to cancel shipment", err, map[string]any{
			"shipment_id": shipmentID,
			"customer_id": customerID,
			"request_id":  corrID,
		})
		return ports.ShipmentView{}, err
	}

	service.publishShipmentStatus(ctx, out, corrID)

	service.logger.Info(ctx, "shipment_cancelled", "Customer cancelled shipment", map[string]any{
		"shipment_id": shipmentID,
		"customer_id": customerID,
		"request_id":  corrID,
	})

	return out, nil
}

// classifyCancelMiss re-reads the shipment after a zero-row cancel. Another
// customer's shipment reads as missing rather than forbidden so the endpoint
// does not confirm foreign shipment ids.
func (service *dispatchService) classifyCancelMiss(ctx context.Context, shipmentID, customerID string) error {
	current, err := service.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return err // includes shipment.ErrNotFound
	}
	if current.CustomerID != customerID {
		return shipment.ErrNotFound
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
