package handler

import (
	"net/http"
	"time"
)

// ----- Handler: GET /courier/health -----

func (handler *CourierHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "courier-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
