package service

import (
	"context"
	"time"

	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/ports"
)

// GetStats assembles the dashboard snapshot. All counts run inside one
// transaction so the numbers describe a single moment.
func (service *adminService) GetStats(ctx context.Context) (ports.StatsResult, error) {
	var out ports.StatsResult

	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		counts := map[shipment.Status]*int{
			shipment.StatusPending:   &out.Shipments.Pending,
			shipment.StatusAssigned:  &out.Shipments.Assigned,
			shipment.StatusPickedUp:  &out.Shipments.PickedUp,
			shipment.StatusDelivered: &out.Shipments.Delivered,
			shipment.StatusCancelled: &out.Shipments.Cancelled,
		}
		for status, dst := range counts {
			n, err := service.shipments.CountByStatus(ctx, status)
			if err != nil {
				return err
			}
			*dst = n
		}

		revenue, err := service.shipments.SumDeliveredCents(ctx)
		if err != nil {
			return err
		}
		out.RevenueCents = revenue

		online, err := service.drivers.CountOnline(ctx)
		if err != nil {
			return err
		}
		total, err := service.drivers.CountAll(ctx)
		if err != nil {
			return err
		}
		out.Drivers = ports.StatsDrivers{Online: online, Total: total}
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "stats_failed", "Failed to assemble dashboard stats", err, nil)
		return ports.StatsResult{}, err
	}

	out.Timestamp = time.Now().UTC()
	return out, nil
}
