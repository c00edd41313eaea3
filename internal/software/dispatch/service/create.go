package service

import (
	"context"
	"errors"
	"strings"

	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/domain/user"
	"courier-dispatch/internal/ports"
)

// CreateShipment registers a new PENDING shipment on the job board. The
// customer is resolved by email and created on the fly when unknown, the way
// the dispatcher console books shipments over the phone.
func (service *dispatchService) CreateShipment(ctx context.Context, in ports.CreateShipmentInput) (ports.ShipmentView, error) {
	corrID := generateCorrelationID()

	var out ports.ShipmentView
	err := service.uow.WithinTx(ctx, func(ctx context.Context) error {
		customer, err := service.resolveCustomer(ctx, in)
		if err != nil {
			return err
		}

		s, err := shipment.NewShipment(customer.ID, in.PickupAt, in.DropoffBy, in.PriceCents, in.Currency)
		if err != nil {
			return err
		}
		applyRoute(s, in)
		if err := s.ValidateRoute(); err != nil {
			return err
		}

		if err := service.shipments.CreateShipment(ctx, s); err != nil {
			return err
		}

		out = ports.NewShipmentView(s)
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "shipment_create_failed", "Failed to create shipment", err, map[string]any{
			"customer_email": in.CustomerEmail,
			"request_id":     corrID,
		})
		return ports.ShipmentView{}, err
	}

	service.publishShipmentStatus(ctx, out, corrID)

	service.logger.Info(ctx, "shipment_created", "Shipment posted to the job board", map[string]any{
		"shipment_id": out.ShipmentID,
		"customer_id": out.CustomerID,
		"request_id":  corrID,
	})

	return out, nil
}

// resolveCustomer finds the customer by id (self-service booking) or by email
// (dispatcher console). Unknown emails get a password-less account registered
// on the fly; existing non-customer accounts cannot receive shipments.
func (service *dispatchService) resolveCustomer(ctx context.Context, in ports.CreateShipmentInput) (*user.User, error) {
	if in.CustomerID != "" {
		account, err := service.users.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if !account.IsCustomer() {
			return nil, user.ErrRoleNotPermitted
		}
		return account, nil
	}
	if strings.TrimSpace(in.CustomerEmail) == "" {
		return nil, shipment.ErrCustomerRequired
	}

	existing, err := service.users.GetByEmail(ctx, in.CustomerEmail)
	if err == nil {
		if !existing.IsCustomer() {
			return nil, user.ErrRoleNotPermitted
		}
		return existing, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}

	firstName := strings.TrimSpace(in.CustomerFirstName)
	lastName := strings.TrimSpace(in.CustomerLastName)
	if firstName == "" {
		// fall back to the email local part when the dispatcher skipped the name
		firstName, _, _ = strings.Cut(in.CustomerEmail, "@")
	}
	if lastName == "" {
		lastName = "customer"
	}

	account, err := user.NewUser(in.CustomerEmail, user.RoleCustomer, "", firstName, lastName, in.CustomerPhone)
	if err != nil {
		return nil, err
	}
	if err := service.users.CreateUser(ctx, account); err != nil {
		return nil, err
	}

	service.logger.Info(ctx, "customer_autocreated", "Customer account created during shipment booking", map[string]any{
		"customer_id": account.ID,
	})

	return account, nil
}

// applyRoute copies the optional route descriptors onto the entity.
func applyRoute(s *shipment.Shipment, in ports.CreateShipmentInput) {
	s.OriginAirport = optText(in.OriginAirport)
	s.DestinationAirport = optText(in.DestinationAirport)
	s.PickupAddress = optText(in.PickupAddress)
	s.PickupLatitude = in.PickupLatitude
	s.PickupLongitude = in.PickupLongitude
	s.PickupContactName = optText(in.PickupContactName)
	s.PickupContactPhone = optText(in.PickupContactPhone)
	s.DropoffAddress = optText(in.DropoffAddress)
	s.DropoffLatitude = in.DropoffLatitude
	s.DropoffLongitude = in.DropoffLongitude
	s.DropoffContactName = optText(in.DropoffContactName)
	s.DropoffContactPhone = optText(in.DropoffContactPhone)
	s.Notes = optText(in.Notes)
}

// optText returns nil for blank strings so they land as SQL NULLs.
func optText(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}
