package service

import (
	"courier-dispatch/internal/general/logger"
	"courier-dispatch/internal/general/rabbitmq"
	"courier-dispatch/internal/ports"
)

// courierService holds all dependencies required by the Courier service.
type courierService struct {
	logger    *logger.Logger
	uow       ports.UnitOfWork
	users     ports.UserRepository
	shipments ports.ShipmentRepository
	drivers   ports.DriverProfileRepository
	evidence  ports.EvidenceStore
	pub       *rabbitmq.MQPublisher
}

// NewCourierService constructs the service with required dependencies.
func NewCourierService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	users ports.UserRepository,
	shipments ports.ShipmentRepository,
	drivers ports.DriverProfileRepository,
	evidence ports.EvidenceStore,
	pub *rabbitmq.MQPublisher,
) ports.CourierService {
	return &courierService{
		logger:    logger,
		uow:       uow,
		users:     users,
		shipments: shipments,
		drivers:   drivers,
		evidence:  evidence,
		pub:       pub,
	}
}
