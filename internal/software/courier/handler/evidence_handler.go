package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"courier-dispatch/internal/general/evidence"
)

// ----- Handler: GET /evidence/{ref...} -----

// handleGetEvidence streams a stored photo or signature back to an
// authenticated caller. References are opaque paths issued at upload time.
func (handler *CourierHTTPHandler) handleGetEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	ref := strings.TrimSpace(r.PathValue("ref"))
	if ref == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "missing evidence reference", nil)
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	data, contentType, err := handler.svc.GetEvidence(ctxWithTimeout, ref)
	if err != nil {
		switch {
		case errors.Is(err, evidence.ErrNotFound):
			handler.httpError(ctxWithTimeout, w, http.StatusNotFound, "evidence not found", err)
		case errors.Is(err, evidence.ErrBadRef):
			handler.httpError(ctxWithTimeout, w, http.StatusBadRequest, "malformed evidence reference", err)
		default:
			handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to load evidence", err)
		}
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
