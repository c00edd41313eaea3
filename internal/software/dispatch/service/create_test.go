package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/domain/user"
	"courier-dispatch/internal/ports"
)

func baseCreateInput() ports.CreateShipmentInput {
	now := time.Now().UTC()
	return ports.CreateShipmentInput{
		OriginAirport:  "JFK",
		DropoffAddress: "350 5th Ave, New York",
		PickupAt:       now.Add(2 * time.Hour),
		DropoffBy:      now.Add(6 * time.Hour),
		PriceCents:     12500,
		Currency:       "USD",
	}
}

func seedCustomer(t *testing.T, env *testEnv, id, email string) *user.User {
	t.Helper()
	u, err := user.NewUser(email, user.RoleCustomer, "hash", "Test", "Customer", "")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	u.ID = id
	env.users.add(u)
	return u
}

func TestCreateShipmentByCustomerID(t *testing.T) {
	env := newTestEnv()
	seedCustomer(t, env, "cust-1", "ada@example.com")

	in := baseCreateInput()
	in.CustomerID = "cust-1"

	view, err := env.svc.CreateShipment(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateShipment: %v", err)
	}
	if view.Status != shipment.StatusPending.String() {
		t.Fatalf("new shipment must be PENDING, got %s", view.Status)
	}
	if view.CustomerID != "cust-1" {
		t.Fatalf("wrong customer: %s", view.CustomerID)
	}
	if view.DriverID != "" {
		t.Fatalf("new shipment must have no driver")
	}
}

func TestCreateShipmentAutoCreatesCustomer(t *testing.T) {
	env := newTestEnv()

	in := baseCreateInput()
	in.CustomerEmail = "walkin@example.com"
	in.CustomerPhone = "+1-555-0101"

	view, err := env.svc.CreateShipment(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateShipment: %v", err)
	}

	account, err := env.users.GetByEmail(context.Background(), "walkin@example.com")
	if err != nil {
		t.Fatalf("customer not auto-created: %v", err)
	}
	if account.PasswordHash != "" {
		t.Fatalf("auto-created customer must be password-less")
	}
	if account.FirstName != "walkin" {
		t.Fatalf("expected email local part as first name, got %q", account.FirstName)
	}
	if view.CustomerID != account.ID {
		t.Fatalf("shipment bound to wrong customer")
	}
}

func TestCreateShipmentRejectsDriverEmail(t *testing.T) {
	env := newTestEnv()
	u, _ := user.NewUser("drv@example.com", user.RoleDriver, "hash", "A", "Driver", "")
	u.ID = "drv-1"
	env.users.add(u)

	in := baseCreateInput()
	in.CustomerEmail = "drv@example.com"

	if _, err := env.svc.CreateShipment(context.Background(), in); !errors.Is(err, user.ErrRoleNotPermitted) {
		t.Fatalf("expected ErrRoleNotPermitted, got %v", err)
	}
}

func TestCreateShipmentValidation(t *testing.T) {
	env := newTestEnv()
	seedCustomer(t, env, "cust-1", "ada@example.com")

	// inverted window
	in := baseCreateInput()
	in.CustomerID = "cust-1"
	in.DropoffBy = in.PickupAt.Add(-time.Hour)
	if _, err := env.svc.CreateShipment(context.Background(), in); !errors.Is(err, shipment.ErrWindowInverted) {
		t.Fatalf("expected ErrWindowInverted, got %v", err)
	}

	// no route at all
	in = baseCreateInput()
	in.CustomerID = "cust-1"
	in.OriginAirport = ""
	in.DropoffAddress = ""
	if _, err := env.svc.CreateShipment(context.Background(), in); !errors.Is(err, shipment.ErrPickupRequired) {
		t.Fatalf("expected ErrPickupRequired, got %v", err)
	}

	// neither customer id nor email
	in = baseCreateInput()
	if _, err := env.svc.CreateShipment(context.Background(), in); !errors.Is(err, shipment.ErrCustomerRequired) {
		t.Fatalf("expected ErrCustomerRequired, got %v", err)
	}
}

func TestGetAndListShipments(t *testing.T) {
	env := newTestEnv()
	seedCustomer(t, env, "cust-1", "ada@example.com")

	in := baseCreateInput()
	in.CustomerID = "cust-1"
	created, err := env.svc.CreateShipment(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateShipment: %v", err)
	}

	got, err := env.svc.GetShipment(context.Background(), created.ShipmentID)
	if err != nil {
		t.Fatalf("GetShipment: %v", err)
	}
	if got.ShipmentID != created.ShipmentID {
		t.Fatalf("wrong shipment returned")
	}

	if _, err := env.svc.GetShipment(context.Background(), "shp-missing"); !errors.Is(err, shipment.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	views, err := env.svc.ListCustomerShipments(context.Background(), "cust-1", "", 0)
	if err != nil {
		t.Fatalf("ListCustomerShipments: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 shipment, got %d", len(views))
	}

	// status filter
	views, err = env.svc.ListCustomerShipments(context.Background(), "cust-1", "delivered", 0)
	if err != nil {
		t.Fatalf("ListCustomerShipments with filter: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected no delivered shipments, got %d", len(views))
	}

	if _, err := env.svc.ListCustomerShipments(context.Background(), "cust-1", "bogus", 0); !errors.Is(err, shipment.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
