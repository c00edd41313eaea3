package driver

import (
	"errors"
	"testing"
)

func TestNewProfile(t *testing.T) {
	p, err := NewProfile("drv-1", "van", "AB-123")
	if err != nil {
		t.Fatalf("NewProfile: %v", err)
	}
	if p.IsOnline {
		t.Fatalf("new profiles must start offline")
	}
	if p.Rating != 5.0 {
		t.Fatalf("expected default rating 5.0, got %v", p.Rating)
	}

	if _, err := NewProfile("  ", "van", ""); !errors.Is(err, ErrUserIDRequired) {
		t.Fatalf("expected ErrUserIDRequired, got %v", err)
	}
}

func TestGoOnlineCoordinates(t *testing.T) {
	p, _ := NewProfile("drv-1", "", "")

	// online with no location is allowed
	if err := p.GoOnline(nil, nil); err != nil {
		t.Fatalf("GoOnline: %v", err)
	}
	if !p.IsOnline {
		t.Fatalf("expected online")
	}

	lat, lng := 40.7128, -74.0060
	if err := p.GoOnline(&lat, &lng); err != nil {
		t.Fatalf("GoOnline with coords: %v", err)
	}
	if p.CurrentLatitude == nil || *p.CurrentLatitude != lat {
		t.Fatalf("latitude not stored")
	}

	// one coordinate without the other is rejected
	if err := p.GoOnline(&lat, nil); !errors.Is(err, ErrBadCoordinates) {
		t.Fatalf("expected ErrBadCoordinates, got %v", err)
	}

	bad := 123.0
	if err := p.UpdateLocation(bad, 0); !errors.Is(err, ErrBadCoordinates) {
		t.Fatalf("expected ErrBadCoordinates for out-of-range latitude, got %v", err)
	}

	p.GoOffline()
	if p.IsOnline {
		t.Fatalf("expected offline")
	}
}

func TestRecordDelivery(t *testing.T) {
	p, _ := NewProfile("drv-1", "", "")
	p.RecordDelivery()
	p.RecordDelivery()
	if p.TotalDeliveries != 2 {
		t.Fatalf("expected 2 deliveries, got %d", p.TotalDeliveries)
	}
}

func TestSetRating(t *testing.T) {
	p, _ := NewProfile("drv-1", "", "")
	if err := p.SetRating(0.5); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	if err := p.SetRating(4.2); err != nil {
		t.Fatalf("SetRating: %v", err)
	}
	if p.Rating != 4.2 {
		t.Fatalf("rating not stored")
	}
}
