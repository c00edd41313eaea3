package service

import (
	"context"

	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/ports"
)

const defaultListLimit = 50

// GetShipment fetches one shipment by id.
func (service *dispatchService) GetShipment(ctx context.Context, shipmentID string) (ports.ShipmentView, error) {
	var out ports.ShipmentView
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		s, err := service.shipments.GetByID(ctx, shipmentID)
		if err != nil {
			return err
		}
		out = ports.NewShipmentView(s)
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "shipment_get_failed", "Failed to fetch shipment", err, map[string]any{
			"shipment_id": shipmentID,
		})
		return ports.ShipmentView{}, err
	}

	return out, nil
}

// ListCustomerShipments returns a customer's shipments, optionally filtered
// by status, newest first.
func (service *dispatchService) ListCustomerShipments(ctx context.Context, customerID string, status string, limit int) ([]ports.ShipmentView, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}

	var filter *shipment.Status
	if status != "" {
		parsed, err := shipment.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &parsed
	}

	var views []ports.ShipmentView
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		shipments, err := service.shipments.ListByCustomer(ctx, customerID, filter, limit)
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
		service.logger.Error(ctx, "shipment_list_failed", "Failed to list customer shipments", err, map[string]any{
			"customer_id": customerID,
		})
		return nil, err
	}

	return views, nil
}
