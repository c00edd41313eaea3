package contracts

// Exchanges
const (
	ExchangeShipmentTopic = "shipment_topic"
	ExchangeDriverTopic   = "driver_topic"
)

// Queues
const (
	QueueShipmentStatus = "shipment_status"
	QueueDriverStatus   = "driver_status"
)

// Routing patterns
const (
	RouteShipmentStatusPrefix = "shipment.status." // {status}
	RouteDriverStatusPrefix   = "driver.status."   // {driver_id}
)
