package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"courier-dispatch/internal/domain/shipment"
	"courier-dispatch/internal/domain/user"
	"courier-dispatch/internal/general/jwt"
	"courier-dispatch/internal/general/logger"
	"courier-dispatch/internal/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

// DispatchHTTPHandler adapts HTTP requests to the DispatchService.
type DispatchHTTPHandler struct {
	svc    ports.DispatchService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewDispatchHTTPHandler wires an HTTP handler around the DispatchService.
func NewDispatchHTTPHandler(
	svc ports.DispatchService,
	logger *logger.Logger,
	auth *jwt.Manager,
) *DispatchHTTPHandler {
	return &DispatchHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts dispatch endpoints on the provided mux.
func (handler *DispatchHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/signup", handler.handleSignup)
	mux.HandleFunc("POST /auth/login", handler.handleLogin)

	mux.HandleFunc("POST /shipments",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleCustomer, user.RoleAdmin)(handler.handleCreateShipment),
	)
	mux.HandleFunc("GET /shipments/{shipment_id}",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleCustomer, user.RoleAdmin)(handler.handleGetShipment),
	)
	mux.HandleFunc("GET /shipments",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleCustomer)(handler.handleListShipments),
	)
	mux.HandleFunc("POST /shipments/{shipment_id}/cancel",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleCustomer)(handler.handleCancelShipment),
	)

	mux.HandleFunc("GET /dispatch/health", handler.handleHealth)
}

// ----- general helpers -----

// jsonResponse takes any type of data and encode it to HTTP response.
func (handler *DispatchHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
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
func (handler *DispatchHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// serviceError maps service-layer failures to HTTP responses.
func (handler *DispatchHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	var conflict *shipment.ConflictError
	switch {
	case errors.As(err, &conflict):
		body := map[string]any{
			"error":       conflict.Error(),
			"shipment_id": conflict.ShipmentID,
			"status":      conflict.Status.String(),
		}
		if conflict.ClaimedBy != "" {
			body["claimed_by"] = conflict.ClaimedBy
		}
		handler.logger.Error(ctx, "cancel_conflict", "Shipment state conflict", err, nil)
		handler.jsonResponse(ctx, w, http.StatusConflict, body)

	case errors.Is(err, shipment.ErrNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, "shipment not found", err)
	case errors.Is(err, user.ErrNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, "user not found", err)
	case errors.Is(err, user.ErrBadCredentials):
		handler.httpError(ctx, w, http.StatusUnauthorized, "invalid credentials", err)
	case errors.Is(err, user.ErrEmailTaken):
		handler.httpError(ctx, w, http.StatusConflict, "email already registered", err)
	case errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrNameRequired),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrRoleNotPermitted),
		errors.Is(err, shipment.ErrInvalidStatus),
		errors.Is(err, shipment.ErrWindowInverted),
		errors.Is(err, shipment.ErrNegativePrice),
		errors.Is(err, shipment.ErrPickupRequired),
		errors.Is(err, shipment.ErrDropoffRequired),
		errors.Is(err, shipment.ErrCustomerRequired):
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
func (handler *DispatchHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
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
