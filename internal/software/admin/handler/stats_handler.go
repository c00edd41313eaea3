package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// ----- Handler: GET /admin/stats -----

func (handler *AdminHTTPHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stats, err := handler.svc.GetStats(ctxWithTimeout)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, stats)
}

// ----- Handler: GET /admin/shipments -----

func (handler *AdminHTTPHandler) handleListShipments(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	status := r.URL.Query().Get("status")
	limit := parseLimit(r)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	views, err := handler.svc.ListShipments(ctxWithTimeout, status, limit)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, map[string]any{
		"shipments": views,
		"count":     len(views),
	})
}

// ----- Handler: GET /admin/drivers -----

func (handler *AdminHTTPHandler) handleListDrivers(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	views, err := handler.svc.ListDrivers(ctxWithTimeout, parseLimit(r))
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, map[string]any{
		"drivers": views,
		"count":   len(views),
	})
}

// ----- Handler: GET /admin/health -----

func (handler *AdminHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"status":           "ok",
		"service":          "admin-service",
		"connected_admins": handler.hub.ConnectedAdmins(),
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	})
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
