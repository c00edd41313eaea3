package service

import (
	"courier-dispatch/internal/general/jwt"
	"courier-dispatch/internal/general/logger"
	"courier-dispatch/internal/general/rabbitmq"
	"courier-dispatch/internal/ports"
)

// dispatchService holds all dependencies required by the Dispatch service.
type dispatchService struct {
	logger    *logger.Logger
	uow       ports.UnitOfWork
	users     ports.UserRepository
	shipments ports.ShipmentRepository
	drivers   ports.DriverProfileRepository
	jwtMgr    *jwt.Manager
	pub       *rabbitmq.MQPublisher
}

// NewDispatchService constructs the service with required dependencies.
func NewDispatchService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	users ports.UserRepository,
	shipments ports.ShipmentRepository,
	drivers ports.DriverProfileRepository,
	jwtMgr *jwt.Manager,
	pub *rabbitmq.MQPublisher,
) ports.DispatchService {
	return &dispatchService{
		logger:    logger,
		uow:       uow,
		users:     users,
		shipments: shipments,
		drivers:   drivers,
		jwtMgr:    jwtMgr,
		pub:       pub,
	}
}
