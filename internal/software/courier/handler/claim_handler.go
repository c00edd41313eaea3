package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"courier-dispatch/internal/general/jwt"
)

// claimRequest is the optional JSON body of a claim. The claimant is always
// the token subject; the body only exists so an old client naming somebody
// else fails loudly instead of silently claiming for itself.
type claimRequest struct {
	DriverID string `json:"driver_id,omitempty"`
}

// ----- Handler: POST /shipments/{shipment_id}/claim -----

func (handler *CourierHTTPHandler) handleClaim(w http.ResponseWriter, r *http.Request) {
	// generate a context with request ID
	ctx := handler.withReqID(r.Context(), r)

	// fetch and check the shipment id
	shipmentID := strings.TrimSpace(r.PathValue("shipment_id"))
	if shipmentID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing shipment_id in path", nil)
		return
	}
	ctx = handler.logger.WithShipmentID(ctx, shipmentID)

	// the claimant is the token subject, never a request field: a driver can
	// only claim for themselves
	claims := jwt.RequireClaims(r)
	if claims == nil || strings.TrimSpace(claims.Subject) == "" {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", nil)
		return
	}
	driverID := claims.Subject

	if r.Body != nil && r.ContentLength != 0 {
		var req claimRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			handler.httpError(ctx, w, http.StatusBadRequest, "invalid request body", err)
			return
		}
		if req.DriverID != "" && req.DriverID != driverID {
			handler.httpError(ctx, w, http.StatusBadRequest, "driver_id does not match token subject", nil)
			return
		}
	}

	// bound service call
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	view, err := handler.svc.Claim(ctxWithTimeout, shipmentID, driverID)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, view)
}
