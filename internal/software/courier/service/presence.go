package service

import (
	"context"
	"time"

	"courier-dispatch/internal/domain/driver"
	"courier-dispatch/internal/general/contracts"
	"courier-dispatch/internal/ports"
)

// GoOnline marks the driver available for work, optionally seeding a location.
func (service *courierService) GoOnline(ctx context.Context, driverID string, lat, lng *float64) (ports.OnlineResult, error) {
	corrID := generateCorrelationID()

	if err := driver.ValidateCoordinates(lat, lng); err != nil {
		return ports.OnlineResult{}, err
	}

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		return service.drivers.SetOnline(ctx, driverID, true, lat, lng)
	})
	if err != nil {
		service.logger.Error(ctx, "driver_go_online_failed", "Failed to bring driver online", err, map[string]any{
			"driver_id":  driverID,
			"request_id": corrID,
		})
		return ports.OnlineResult{}, err
	}

	// publish driver status update (ONLINE)
	statusMsg := contracts.DriverStatusMessage{
		DriverID:  driverID,
		Status:    "ONLINE",
		Timestamp: time.Now().UTC(),
		Envelope:  contracts.Envelope{CorrelationID: corrID},
	}
	if lat != nil && lng != nil {
		statusMsg.Location = &contracts.GeoPoint{Lat: *lat, Lng: *lng}
	}
	if err := service.pub.PublishDriverStatus(statusMsg); err != nil {
		service.logger.Error(ctx, "driver_status_publish_failed", "Failed to publish driver status to RabbitMQ", err, map[string]any{
			"driver_id":  driverID,
			"request_id": corrID,
		})
	}

	service.logger.Info(ctx, "driver_online", "Driver successfully went online", map[string]any{
		"driver_id":  driverID,
		"request_id": corrID,
	})

	return ports.OnlineResult{
		DriverID: driverID,
		IsOnline: true,
		Message:  "You are now online and can claim shipments",
	}, nil
}

// GoOffline marks the driver unavailable. Shipments already claimed stay
// claimed; going offline only hides the driver from availability counts.
func (service *courierService) GoOffline(ctx context.Context, driverID string) (ports.OnlineResult, error) {
	corrID := generateCorrelationID()

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		return service.drivers.SetOnline(ctx, driverID, false, nil, nil)
	})
	if err != nil {
		service.logger.Error(ctx, "driver_go_offline_failed", "Failed to take driver offline", err, map[string]any{
			"driver_id":  driverID,
			"request_id": corrID,
		})
		return ports.OnlineResult{}, err
	}

	// publish driver status update (OFFLINE)
	statusMsg := contracts.DriverStatusMessage{
		DriverID:  driverID,
		Status:    "OFFLINE",
		Timestamp: time.Now().UTC(),
		Envelope:  contracts.Envelope{CorrelationID: corrID},
	}
	if err := service.pub.PublishDriverStatus(statusMsg); err != nil {
		service.logger.Error(ctx, "driver_status_publish_failed", "Failed to publish driver status to RabbitMQ", err, map[string]any{
			"driver_id":  driverID,
			"request_id": corrID,
		})
	}

	service.logger.Info(ctx, "driver_offline", "Driver went offline", map[string]any{
		"driver_id":  driverID,
		"request_id": corrID,
	})

	return ports.OnlineResult{
		DriverID: driverID,
		IsOnline: false,
		Message:  "You are now offline",
	}, nil
}

// UpdateLocation records the driver's last reported coordinates.
func (service *courierService) UpdateLocation(ctx context.Context, in ports.LocationInput) error {
	if err := driver.ValidateCoordinates(&in.Latitude, &in.Longitude); err != nil {
		return err
	}

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		return service.drivers.UpdateLocation(ctx, in.DriverID, in.Latitude, in.Longitude)
	})
	if err != nil {
		service.logger.Error(ctx, "driver_location_update_failed", "Failed to update driver location", err, map[string]any{
			"driver_id": in.DriverID,
		})
		return err
	}

	return nil
}
