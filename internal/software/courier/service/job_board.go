package service

import (
	"context"

	"courier-dispatch/internal/ports"
)

const defaultListLimit = 50

// ListAvailable returns the job board: every PENDING shipment any driver may
// claim, soonest pickup first. The same shipment stays visible to all drivers
// until somebody wins the claim.
func (service *courierService) ListAvailable(ctx context.Context, limit int) ([]ports.ShipmentView, error) {
	// the board never hands out more than a page
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	var views []ports.ShipmentView
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		shipments, err := service.shipments.ListAvailable(ctx, limit)
		if err != nil {
			return err
		}
		views = make([]ports.ShipmentView, 0, len(shipments))
		for _, s := range shipments {
			views = append(views, ports.NewShipmentView(s))
		}
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "job_board_list_failed", "Failed to list available shipments", err, nil)
		return nil, err
	}

	return views, nil
}

// ListDriverShipments returns the shipments a driver has claimed, newest first.
func (service *courierService) ListDriverShipments(ctx context.Context, driverID string, limit int) ([]ports.ShipmentView, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	var views []ports.ShipmentView
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		shipments, err := service.shipments.ListByDriver(ctx, driverID, limit)
		if err != nil {
			return err
		}
		views = make([]ports.ShipmentView, 0, len(shipments))
		for _, s := range shipments {
			views = append(views, ports.NewShipmentView(s))
		}
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "driver_shipments_list_failed", "Failed to list driver shipments", err, map[string]any{
			"driver_id": driverID,
		})
		return nil, err
	}

	return views, nil
}
