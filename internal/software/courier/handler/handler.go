package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"courier-dispatch/internal/domain/driver"
	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/domain/user"
	"courier-dispatch/internal/general/evidence"
	"courier-dispatch/internal/general/jwt"
	"courier-dispatch/internal/general/logger"
	"courier-dispatch/internal/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

// CourierHTTPHandler adapts HTTP requests to the CourierService.
type CourierHTTPHandler struct {
	svc    ports.CourierService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewCourierHTTPHandler wires an HTTP handler around the CourierService.
func NewCourierHTTPHandler(
	svc ports.CourierService,
	logger *logger.Logger,
	auth *jwt.Manager,
) *CourierHTTPHandler {
	return &CourierHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts courier endpoints on the provided mux.
func (handler *CourierHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /shipments/available",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleListAvailable),
	)
	mux.HandleFunc("GET /shipments/mine",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleListMine),
	)
	mux.HandleFunc("POST /shipments/{shipment_id}/claim",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleClaim),
	)
	mux.HandleFunc("POST /shipments/{shipment_id}/pickup",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handlePickup),
	)
	mux.HandleFunc("POST /shipments/{shipment_id}/deliver",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleDeliver),
	)

	mux.HandleFunc("POST /drivers/{driver_id}/online",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleGoOnline),
	)
	mux.HandleFunc("POST /drivers/{driver_id}/offline",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleGoOffline),
	)
	mux.HandleFunc("POST /drivers/{driver_id}/location",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleUpdateLocation),
	)

	mux.HandleFunc("GET /evidence/{ref...}",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver, user.RoleAdmin, user.RoleCustomer)(handler.handleGetEvidence),
	)

	mux.HandleFunc("GET /courier/health", handler.handleHealth)
}

// ----- general helpers -----

// jsonResponse takes any type of data and encode it to HTTP response.
func (handler *CourierHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	// encode to buffer first so we can control status on failure
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// httpError sends a JSON error response with a message.
func (handler *CourierHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	} else if status == http.StatusConflict {
		action = "claim_conflict"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// serviceError maps service-layer failures to HTTP responses. Database faults
// stay 500s; everything the caller can do something about becomes a 4xx.
func (handler *CourierHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	var conflict *shipment.ConflictError
	switch {
	case errors.As(err, &conflict):
		// losing the claim race is a conflict, with the authoritative state attached
		body := map[string]any{
			"error":       conflict.Error(),
			"shipment_id": conflict.ShipmentID,
			"status":      conflict.Status.String(),
		}
		if conflict.ClaimedBy != "" {
			body["claimed_by"] = conflict.ClaimedBy
		}
		handler.logger.Error(ctx, "claim_conflict", "Shipment state conflict", err, nil)
		handler.jsonResponse(ctx, w, http.StatusConflict, body)

	case errors.Is(err, shipment.ErrNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, "shipment not found", err)
	case errors.Is(err, driver.ErrNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, "driver profile not found", err)
	case errors.Is(err, user.ErrNotFound), errors.Is(err, user.ErrRoleNotPermitted):
		handler.httpError(ctx, w, http.StatusBadRequest, "claimant is not a registered driver", err)
	case errors.Is(err, shipment.ErrNotAssignedToDriver):
		handler.httpError(ctx, w, http.StatusForbidden, "shipment is assigned to another driver", err)
	case errors.Is(err, shipment.ErrNoDriverAssigned), errors.Is(err, shipment.ErrInvalidTransition):
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, evidence.ErrBadDataURL), errors.Is(err, driver.ErrBadCoordinates):
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)

	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			handler.httpError(ctx, w, http.StatusInternalServerError, "database error", err)
			return
		}
		handler.httpError(ctx, w, http.StatusInternalServerError, "internal error", err)
	}
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *CourierHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

// randID generates a random 24-char hex string suitable for request IDs.
func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// subjectMatches checks that the authenticated subject equals the path actor.
func subjectMatches(claims *jwt.Claims, id string) bool {
	return claims != nil && strings.TrimSpace(claims.Subject) != "" && claims.Subject == id
}
