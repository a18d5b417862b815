package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"selfreg-backend/internal/service"
)

type ActivityLogHandler struct {
	Service service.ActivityService
	Logger  *slog.Logger
}

func (h ActivityLogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/activity", h.list)
}

func (h ActivityLogHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context(), currentActor(r), queryInt(r, "limit", 100))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, l := range items {
		resp = append(resp, map[string]any{
			"id":        l.ID,
			"title":     l.Title,
			"message":   l.Message,
			"actor":     l.Actor,
			"type":      string(l.Type),
			"timestamp": l.LoggedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
