package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"selfreg-backend/internal/apperr"
)

func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodePermissionDenied:
		return http.StatusForbidden
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeServiceError maps a service error onto the response envelope. Upstream
// failures are logged and answered with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Code == apperr.CodeUpstream {
		if logger != nil {
			logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		}
		writeError(w, http.StatusInternalServerError, "operation failed, try again")
		return
	}
	writeError(w, statusFor(appErr.Code), appErr.Message)
}

// outcomeMessage is the client-facing text for a per-item failure.
func outcomeMessage(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Code != apperr.CodeUpstream {
		return appErr.Message
	}
	return "operation failed, try again"
}
