package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"courier-dispatch/internal/domain/user"
	"courier-dispatch/internal/general/jwt"
	"courier-dispatch/internal/general/logger"
	"courier-dispatch/internal/ports"
)

// stubCourierService records claim calls and returns a canned view.
type stubCourierService struct {
	claims int
}

func (s *stubCourierService) Claim(ctx context.Context, shipmentID, driverID string) (ports.ShipmentView, error) {
	s.claims++
	return ports.ShipmentView{ShipmentID: shipmentID, DriverID: driverID, Status: "ASSIGNED"}, nil
}

func (s *stubCourierService) ListAvailable(ctx context.Context, limit int) ([]ports.ShipmentView, error) {
	return nil, nil
}
func (s *stubCourierService) Advance(ctx context.Context, in ports.AdvanceInput) (ports.ShipmentView, error) {
	return ports.ShipmentView{}, nil
}
func (s *stubCourierService) ListDriverShipments(ctx context.Context, driverID string, limit int) ([]ports.ShipmentView, error) {
	return nil, nil
}
func (s *stubCourierService) GoOnline(ctx context.Context, driverID string, lat, lng *float64) (ports.OnlineResult, error) {
	return ports.OnlineResult{}, nil
}
func (s *stubCourierService) GoOffline(ctx context.Context, driverID string) (ports.OnlineResult, error) {
	return ports.OnlineResult{}, nil
}
func (s *stubCourierService) UpdateLocation(ctx context.Context, in ports.LocationInput) error {
	return nil
}
func (s *stubCourierService) GetEvidence(ctx context.Context, ref string) ([]byte, string, error) {
	return nil, "", nil
}

func claimRequestFor(t *testing.T, driverID, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/shipments/shp-1/claim", strings.NewReader(body))
	r.SetPathValue("shipment_id", "shp-1")
	cl := jwt.NewUserClaims(driverID, user.RoleDriver, time.Hour)
	return r.WithContext(jwt.InjectClaims(r.Context(), cl))
}

func TestClaimHandlerUsesTokenSubject(t *testing.T) {
	svc := &stubCourierService{}
	h := NewCourierHTTPHandler(svc, logger.New("courier-handler-test"), jwt.NewManager("test-secret", time.Hour))

	w := httptest.NewRecorder()
	h.handleClaim(w, claimRequestFor(t, "drv-1", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("empty body: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if svc.claims != 1 {
		t.Fatalf("expected one claim call, got %d", svc.claims)
	}

	// a body naming the caller themselves is redundant but harmless
	w = httptest.NewRecorder()
	h.handleClaim(w, claimRequestFor(t, "drv-1", `{"driver_id":"drv-1"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("matching body: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if svc.claims != 2 {
		t.Fatalf("expected two claim calls, got %d", svc.claims)
	}
}

func TestClaimHandlerRejectsForeignDriverBody(t *testing.T) {
	svc := &stubCourierService{}
	h := NewCourierHTTPHandler(svc, logger.New("courier-handler-test"), jwt.NewManager("test-secret", time.Hour))

	// a stale client claiming on behalf of somebody else fails loudly
	w := httptest.NewRecorder()
	h.handleClaim(w, claimRequestFor(t, "drv-1", `{"driver_id":"drv-2"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
	}
	if svc.claims != 0 {
		t.Fatalf("service must not be called, got %d calls", svc.claims)
	}
}
