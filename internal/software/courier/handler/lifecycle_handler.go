package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/general/jwt"
	"courier-dispatch/internal/ports"
)

const maxEvidenceBodyBytes = 8 << 20 // photos arrive base64-inlined

// evidenceRequest is the optional JSON body for pickup/deliver transitions.
type evidenceRequest struct {
	Photo     string `json:"photo,omitempty"`     // base64 data URL
	Signature string `json:"signature,omitempty"` // base64 data URL
}

// ----- Handler: POST /shipments/{shipment_id}/pickup -----

func (handler *CourierHTTPHandler) handlePickup(w http.ResponseWriter, r *http.Request) {
	handler.handleAdvance(w, r, shipment.StatusPickedUp)
}

// ----- Handler: POST /shipments/{shipment_id}/deliver -----

func (handler *CourierHTTPHandler) handleDeliver(w http.ResponseWriter, r *http.Request) {
	handler.handleAdvance(w, r, shipment.StatusDelivered)
}

// handleAdvance is the shared body for the two lifecycle transitions; only
// the target status differs.
func (handler *CourierHTTPHandler) handleAdvance(w http.ResponseWriter, r *http.Request, target shipment.Status) {
	// generate a context with request ID
	ctx := handler.withReqID(r.Context(), r)

	// fetch and check the shipment id
	shipmentID := strings.TrimSpace(r.PathValue("shipment_id"))
	if shipmentID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing shipment_id in path", nil)
		return
	}
	ctx = handler.logger.WithShipmentID(ctx, shipmentID)

	// the acting driver is the token subject
	claims := jwt.RequireClaims(r)
	if claims == nil || strings.TrimSpace(claims.Subject) == "" {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", nil)
		return
	}

	// evidence body is optional; when present it must be well-formed JSON
	var req evidenceRequest
	if r.Body != nil && r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEvidenceBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			handler.httpError(ctx, w, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	in := ports.AdvanceInput{
		ShipmentID: shipmentID,
		DriverID:   claims.Subject,
		Target:     target,
		Evidence: ports.EvidenceInput{
			Photo:     req.Photo,
			Signature: req.Signature,
		},
	}

	// bound service call; evidence upload makes this slower than a claim
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	view, err := handler.svc.Advance(ctxWithTimeout, in)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, view)
}
