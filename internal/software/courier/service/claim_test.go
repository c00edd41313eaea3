package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/domain/user"
)

func seedDriver(t *testing.T, env *testEnv, id string) {
	t.Helper()
	u, err := user.NewUser(id+"@example.com", user.RoleDriver, "hash", "Test", "Driver", "")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	u.ID = id
	env.users.add(u)
}

func seedPending(t *testing.T, env *testEnv, id string) *shipment.Shipment {
	t.Helper()
	now := time.Now().UTC()
	s, err := shipment.NewShipment("cust-1", now.Add(time.Hour), now.Add(3*time.Hour), 5000, "USD")
	if err != nil {
		t.Fatalf("NewShipment: %v", err)
	}
	s.ID = id
	env.shipments.add(s)
	return s
}

func TestClaimWinner(t *testing.T) {
	env := newTestEnv()
	seedDriver(t, env, "drv-1")
	seedPending(t, env, "shp-1")

	view, err := env.svc.Claim(context.Background(), "shp-1", "drv-1")
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if view.Status != shipment.StatusAssigned.String() {
		t.Fatalf("expected ASSIGNED, got %s", view.Status)
	}
	if view.DriverID != "drv-1" {
		t.Fatalf("expected drv-1, got %s", view.DriverID)
	}
	if view.ClaimedAt == nil {
		t.Fatalf("claimed_at missing from view")
	}
}

func TestClaimExactlyOneWinner(t *testing.T) {
	env := newTestEnv()
	const drivers = 16
	for i := 0; i < drivers; i++ {
		seedDriver(t, env, fmt.Sprintf("drv-%d", i))
	}
	seedPending(t, env, "shp-race")

	var wg sync.WaitGroup
	errs := make([]error, drivers)
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Claim(context.Background(), "shp-race", fmt.Sprintf("drv-%d", i))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		var conflict *shipment.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("loser got %v, expected ConflictError", err)
		}
		if conflict.Status != shipment.StatusAssigned {
			t.Fatalf("conflict reports %s, expected ASSIGNED", conflict.Status)
		}
		if conflict.ClaimedBy == "" {
			t.Fatalf("conflict must name the driver holding the shipment")
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", winners)
	}

	final, err := env.shipments.GetByID(context.Background(), "shp-race")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if final.Status != shipment.StatusAssigned {
		t.Fatalf("final status %s, expected ASSIGNED", final.Status)
	}
}

func TestClaimSecondDriverConflicts(t *testing.T) {
	env := newTestEnv()
	seedDriver(t, env, "drv-1")
	seedDriver(t, env, "drv-2")
	seedPending(t, env, "shp-1")

	if _, err := env.svc.Claim(context.Background(), "shp-1", "drv-1"); err != nil {
		t.Fatalf("first claim: %v", err)
	}

	_, err := env.svc.Claim(context.Background(), "shp-1", "drv-2")
	var conflict *shipment.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.ClaimedBy != "drv-1" {
		t.Fatalf("conflict names %q, expected drv-1", conflict.ClaimedBy)
	}
}

func TestClaimRequiresDriverRole(t *testing.T) {
	env := newTestEnv()
	u, _ := user.NewUser("cust@example.com", user.RoleCustomer, "hash", "Some", "Customer", "")
	u.ID = "cust-1"
	env.users.add(u)
	seedPending(t, env, "shp-1")

	if _, err := env.svc.Claim(context.Background(), "shp-1", "cust-1"); !errors.Is(err, user.ErrRoleNotPermitted) {
		t.Fatalf("expected ErrRoleNotPermitted, got %v", err)
	}

	// the shipment must be untouched
	s, _ := env.shipments.GetByID(context.Background(), "shp-1")
	if s.Status != shipment.StatusPending {
		t.Fatalf("rejected claim must not move the shipment")
	}
}

func TestClaimUnknownShipment(t *testing.T) {
	env := newTestEnv()
	seedDriver(t, env, "drv-1")

	if _, err := env.svc.Claim(context.Background(), "shp-missing", "drv-1"); !errors.Is(err, shipment.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClaimCancelledShipment(t *testing.T) {
	env := newTestEnv()
	seedDriver(t, env, "drv-1")
	s := seedPending(t, env, "shp-1")
	if err := s.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	env.shipments.add(s)

	_, err := env.svc.Claim(context.Background(), "shp-1", "drv-1")
	var conflict *shipment.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Status != shipment.StatusCancelled {
		t.Fatalf("conflict reports %s, expected CANCELLED", conflict.Status)
	}
	if conflict.ClaimedBy != "" {
		t.Fatalf("cancelled shipment has no holder")
	}
}
