package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"courier-dispatch/internal/general/jwt"
	"courier-dispatch/internal/ports"
)

// createShipmentRequest is the JSON body for POST /shipments.
type createShipmentRequest struct {
	CustomerEmail     string `json:"customer_email,omitempty"` // admin booking on behalf of a customer
	CustomerFirstName string `json:"customer_first_name,omitempty"`
	CustomerLastName  string `json:"customer_last_name,omitempty"`
	CustomerPhone     string `json:"customer_phone,omitempty"`

	OriginAirport      string   `json:"origin_airport,omitempty"`
	DestinationAirport string   `json:"destination_airport,omitempty"`
	PickupAddress      string   `json:"pickup_address,omitempty"`
	PickupLatitude     *float64 `json:"pickup_latitude,omitempty"`
	PickupLongitude    *float64 `json:"pickup_longitude,omitempty"`
	PickupAt           string   `json:"pickup_at"`
	PickupContactName  string   `json:"pickup_contact_name,omitempty"`
	PickupContactPhone string   `json:"pickup_contact_phone,omitempty"`

	DropoffAddress      string   `json:"dropoff_address,omitempty"`
	DropoffLatitude     *float64 `json:"dropoff_latitude,omitempty"`
	DropoffLongitude    *float64 `json:"dropoff_longitude,omitempty"`
	DropoffBy           string   `json:"dropoff_by"`
	DropoffContactName  string   `json:"dropoff_contact_name,omitempty"`
	DropoffContactPhone string   `json:"dropoff_contact_phone,omitempty"`

	PriceCents int    `json:"price_cents"`
	Currency   string `json:"currency,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// ----- Handler: POST /shipments -----

func (handler *DispatchHTTPHandler) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	// check the content type
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return
	}

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	var req createShipmentRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	pickupAt, err := time.Parse(time.RFC3339, req.PickupAt)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "pickup_at must be RFC3339", err)
		return
	}
	dropoffBy, err := time.Parse(time.RFC3339, req.DropoffBy)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "dropoff_by must be RFC3339", err)
		return
	}

	in := ports.CreateShipmentInput{
		CustomerEmail:     req.CustomerEmail,
		CustomerFirstName: req.CustomerFirstName,
		CustomerLastName:  req.CustomerLastName,
		CustomerPhone:     req.CustomerPhone,

		OriginAirport:      req.OriginAirport,
		DestinationAirport: req.DestinationAirport,
		PickupAddress:      req.PickupAddress,
		PickupLatitude:     req.PickupLatitude,
		PickupLongitude:    req.PickupLongitude,
		PickupAt:           pickupAt,
		PickupContactName:  req.PickupContactName,
		PickupContactPhone: req.PickupContactPhone,

		DropoffAddress:      req.DropoffAddress,
		DropoffLatitude:     req.DropoffLatitude,
		DropoffLongitude:    req.DropoffLongitude,
		DropoffBy:           dropoffBy,
		DropoffContactName:  req.DropoffContactName,
		DropoffContactPhone: req.DropoffContactPhone,

		PriceCents: req.PriceCents,
		Currency:   req.Currency,
		Notes:      req.Notes,
	}

	// customers always book for themselves; only admins may book by email
	if !claims.Role.IsAdmin() || in.CustomerEmail == "" {
		in.CustomerID = claims.Subject
		in.CustomerEmail = ""
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	view, err := handler.svc.CreateShipment(ctxWithTimeout, in)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, view)
}

// ----- Handler: GET /shipments/{shipment_id} -----

func (handler *DispatchHTTPHandler) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	shipmentID := strings.TrimSpace(r.PathValue("shipment_id"))
	if shipmentID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing shipment_id in path", nil)
		return
	}
	ctx = handler.logger.WithShipmentID(ctx, shipmentID)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	view, err := handler.svc.GetShipment(ctxWithTimeout, shipmentID)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	// customers may only see their own shipments; admins see everything
	if claims.Role.IsCustomer() && view.CustomerID != claims.Subject {
		handler.httpError(ctxWithTimeout, w, http.StatusNotFound, "shipment not found", nil)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, view)
}

// ----- Handler: GET /shipments -----

func (handler *DispatchHTTPHandler) handleListShipments(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil || strings.TrimSpace(claims.Subject) == "" {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", nil)
		return
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	views, err := handler.svc.ListCustomerShipments(ctxWithTimeout, claims.Subject, status, limit)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, map[string]any{
		"shipments": views,
		"count":     len(views),
	})
}

// ----- Handler: POST /shipments/{shipment_id}/cancel -----

func (handler *DispatchHTTPHandler) handleCancelShipment(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	shipmentID := strings.TrimSpace(r.PathValue("shipment_id"))
	if shipmentID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing shipment_id in path", nil)
		return
	}
	ctx = handler.logger.WithShipmentID(ctx, shipmentID)

	claims := jwt.RequireClaims(r)
	if claims == nil || strings.TrimSpace(claims.Subject) == "" {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", nil)
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	view, err := handler.svc.CancelShipment(ctxWithTimeout, shipmentID, claims.Subject)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, view)
}
