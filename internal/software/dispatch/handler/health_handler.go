package handler

import (
	"net/http"
	"time"
)

// ----- Handler: GET /dispatch/health -----

func (handler *DispatchHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "dispatch-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
