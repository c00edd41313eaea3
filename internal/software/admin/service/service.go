package service

import (
	"courier-dispatch/internal/general/logger"
	"courier-dispatch/internal/ports"
)

// adminService implements ports.AdminService: read-only fleet monitoring.
type adminService struct {
	logger    *logger.Logger
	uow       ports.UnitOfWork
	users     ports.UserRepository
	shipments ports.ShipmentRepository
	drivers   ports.DriverProfileRepository
}

// NewAdminService wires the monitoring service.
func NewAdminService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	users ports.UserRepository,
	shipments ports.ShipmentRepository,
	drivers ports.DriverProfileRepository,
) ports.AdminService {
	return &adminService{
		logger:    logger,
		uow:       uow,
		users:     users,
		shipments: shipments,
		drivers:   drivers,
	}
}
