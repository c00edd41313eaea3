package service

import (
	"context"
	"errors"
	"strings"

	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/domain/user"
	"courier-dispatch/internal/ports"
)

const defaultListLimit = 50

// ListShipments returns shipments across all customers, optionally narrowed
// to a single status.
func (service *adminService) ListShipments(ctx context.Context, status string, limit int) ([]ports.ShipmentView, error) {
	var filter *shipment.Status
	if raw := strings.TrimSpace(status); raw != "" {
		parsed, err := shipment.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		filter = &parsed
	}
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}

	rows, err := service.shipments.ListByStatus(ctx, filter, limit)
	if err != nil {
		service.logger.Error(ctx, "shipments_list_failed", "Failed to list shipments", err, map[string]any{
			"status": status,
		})
		return nil, err
	}

	views := make([]ports.ShipmentView, 0, len(rows))
	for _, s := range rows {
		views = append(views, ports.NewShipmentView(s))
	}
	return views, nil
}

// ListDrivers returns the fleet roster, online drivers first. Each profile is
// joined with its account record to surface name and email.
func (service *adminService) ListDrivers(ctx context.Context, limit int) ([]ports.DriverView, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}

	profiles, err := service.drivers.ListAll(ctx, limit)
	if err != nil {
		service.logger.Error(ctx, "drivers_list_failed", "Failed to list driver profiles", err, nil)
		return nil, err
	}

	views := make([]ports.DriverView, 0, len(profiles))
	for _, p := range profiles {
		view := ports.DriverView{
			DriverID:         p.UserID,
			IsOnline:         p.IsOnline,
			CurrentLatitude:  p.CurrentLatitude,
			CurrentLongitude: p.CurrentLongitude,
			VehicleType:      p.VehicleType,
			VehiclePlate:     p.VehiclePlate,
			Rating:           p.Rating,
			TotalDeliveries:  p.TotalDeliveries,
		}

		// a profile whose account row is gone still renders, just without a name
		account, err := service.users.GetByID(ctx, p.UserID)
		if err == nil {
			view.Email = account.Email
			view.Name = account.FullName()
		} else if !errors.Is(err, user.ErrNotFound) {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
