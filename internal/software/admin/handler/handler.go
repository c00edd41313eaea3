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
	"courier-dispatch/internal/general/websocket"
	"courier-dispatch/internal/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

// AdminHTTPHandler serves the monitoring API and the live dashboard feed.
type AdminHTTPHandler struct {
	svc    ports.AdminService
	logger *logger.Logger
	auth   *jwt.Manager
	hub    *websocket.Hub
}

// NewAdminHTTPHandler wires an HTTP handler around the AdminService.
func NewAdminHTTPHandler(
	svc ports.AdminService,
	logger *logger.Logger,
	auth *jwt.Manager,
	hub *websocket.Hub,
) *AdminHTTPHandler {
	return &AdminHTTPHandler{svc: svc, logger: logger, auth: auth, hub: hub}
}

// RegisterRoutes mounts admin endpoints on the provided mux.
func (handler *AdminHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/stats",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleAdmin)(handler.handleStats),
	)
	mux.HandleFunc("GET /admin/shipments",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleAdmin)(handler.handleListShipments),
	)
	mux.HandleFunc("GET /admin/drivers",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleAdmin)(handler.handleListDrivers),
	)

	// the hub authenticates before upgrading, so no middleware here
	mux.HandleFunc("GET /ws/admin", handler.hub.ConnectAdmin)

	mux.HandleFunc("GET /admin/health", handler.handleHealth)
}

// ----- general helpers -----

// jsonResponse takes any type of data and encode it to HTTP response.
func (handler *AdminHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
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
func (handler *AdminHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// serviceError maps service-layer failures to HTTP responses.
func (handler *AdminHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shipment.ErrInvalidStatus):
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
func (handler *AdminHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
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
