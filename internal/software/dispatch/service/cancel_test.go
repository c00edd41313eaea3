package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"courier-dispatch/internal/domain/shipment"
)

func seedPending(t *testing.T, env *testEnv, id, customerID string) *shipment.Shipment {
	t.Helper()
	now := time.Now().UTC()
	s, err := shipment.NewShipment(customerID, now.Add(time.Hour), now.Add(3*time.Hour), 5000, "USD")
	if err != nil {
		t.Fatalf("NewShipment: %v", err)
	}
	s.ID = id
	env.shipments.add(s)
	return s
}

func TestCancelPending(t *testing.T) {
	env := newTestEnv()
	seedPending(t, env, "shp-1", "cust-1")

	view, err := env.svc.CancelShipment(context.Background(), "shp-1", "cust-1")
	if err != nil {
		t.Fatalf("CancelShipment: %v", err)
	}
	if view.Status != shipment.StatusCancelled.String() {
		t.Fatalf("expected CANCELLED, got %s", view.Status)
	}
}

func TestCancelAfterClaimConflicts(t *testing.T) {
	env := newTestEnv()
	seedPending(t, env, "shp-1", "cust-1")

	won, err := env.shipments.Claim(context.Background(), "shp-1", "drv-1", time.Now().UTC())
	if err != nil || !won {
		t.Fatalf("setup claim failed: won=%v err=%v", won, err)
	}

	_, err = env.svc.CancelShipment(context.Background(), "shp-1", "cust-1")
	var conflict *shipment.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Status != shipment.StatusAssigned || conflict.ClaimedBy != "drv-1" {
		t.Fatalf("conflict must carry the authoritative state: %+v", conflict)
	}
}

func TestCancelForeignShipmentReadsAsMissing(t *testing.T) {
	env := newTestEnv()
	seedPending(t, env, "shp-1", "cust-1")

	// a different customer probing the id must not learn it exists
	if _, err := env.svc.CancelShipment(context.Background(), "shp-1", "cust-2"); !errors.Is(err, shipment.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// and the shipment is untouched
	s, _ := env.shipments.GetByID(context.Background(), "shp-1")
	if s.Status != shipment.StatusPending {
		t.Fatalf("foreign cancel must not move the shipment")
	}
}

func TestCancelUnknownShipment(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.CancelShipment(context.Background(), "shp-missing", "cust-1"); !errors.Is(err, shipment.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelIsIdempotentConflict(t *testing.T) {
	env := newTestEnv()
	seedPending(t, env, "shp-1", "cust-1")

	if _, err := env.svc.CancelShipment(context.Background(), "shp-1", "cust-1"); err != nil {
		t.Fatalf("first cancel: %v", err)
	}

	// a second cancel lost the conditional write; the conflict reports CANCELLED
	_, err := env.svc.CancelShipment(context.Background(), "shp-1", "cust-1")
	var conflict *shipment.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Status != shipment.StatusCancelled {
		t.Fatalf("conflict reports %s, expected CANCELLED", conflict.Status)
	}
}
