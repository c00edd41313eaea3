package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"courier-dispatch/internal/general/jwt"
	"courier-dispatch/internal/ports"
)

// onlineRequest is the optional JSON body for going online.
type onlineRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// locationRequest is the JSON body for a location report.
type locationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ----- Handler: POST /drivers/{driver_id}/online -----

func (handler *CourierHTTPHandler) handleGoOnline(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.requireOwnDriverID(ctx, w, r)
	if !ok {
		return
	}

	var req onlineRequest
	if r.Body != nil && r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			handler.httpError(ctx, w, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.GoOnline(ctxWithTimeout, driverID, req.Latitude, req.Longitude)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}

// ----- Handler: POST /drivers/{driver_id}/offline -----

func (handler *CourierHTTPHandler) handleGoOffline(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.requireOwnDriverID(ctx, w, r)
	if !ok {
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.GoOffline(ctxWithTimeout, driverID)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}

// ----- Handler: POST /drivers/{driver_id}/location -----

func (handler *CourierHTTPHandler) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.requireOwnDriverID(ctx, w, r)
	if !ok {
		return
	}

	// check the content type
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return
	}

	var req locationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := handler.svc.UpdateLocation(ctxWithTimeout, ports.LocationInput{
		DriverID:  driverID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireOwnDriverID validates the path driver_id against the token subject.
func (handler *CourierHTTPHandler) requireOwnDriverID(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	driverID := strings.TrimSpace(r.PathValue("driver_id"))
	if driverID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing driver_id in path", nil)
		return "", false
	}

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return "", false
	}
	if !subjectMatches(claims, driverID) {
		handler.httpError(ctx, w, http.StatusForbidden, "driver_id does not match token subject", errors.New("driver/token mismatch"))
		return "", false
	}

	return driverID, true
}
