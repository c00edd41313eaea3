package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"courier-dispatch/internal/general/jwt"
)

// ----- Handler: GET /shipments/available -----

func (handler *CourierHTTPHandler) handleListAvailable(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	limit := parseLimit(r.URL.Query().Get("limit"))

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	views, err := handler.svc.ListAvailable(ctxWithTimeout, limit)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, map[string]any{
		"shipments": views,
		"count":     len(views),
	})
}

// ----- Handler: GET /shipments/mine -----

func (handler *CourierHTTPHandler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil || strings.TrimSpace(claims.Subject) == "" {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", nil)
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"))

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	views, err := handler.svc.ListDriverShipments(ctxWithTimeout, claims.Subject, limit)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, map[string]any{
		"shipments": views,
		"count":     len(views),
	})
}

// parseLimit converts the optional ?limit= query parameter; the service
// applies its own bounds.
func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
