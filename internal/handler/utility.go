package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/service"
)

type UtilityHandler struct {
	Service service.CatalogService
	Logger  *slog.Logger
}

func (h UtilityHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/utilities", h.list)
	r.Post("/admin/utilities", h.create)
	r.Put("/admin/utilities/{id}", h.update)
	r.Delete("/admin/utilities/{id}", h.delete)
}

type utilityRequest struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (req utilityRequest) toDomain(id int64) domain.Utility {
	u := domain.Utility{ID: id, Name: req.Name, URL: req.URL, Description: req.Description, IsActive: true}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	return u
}

func (h UtilityHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListUtilities(r.Context(), currentActor(r))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, utilityView))
}

func (h UtilityHandler) create(w http.ResponseWriter, r *http.Request) {
	var req utilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.Service.CreateUtility(r.Context(), currentActor(r), req.toDomain(0))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, utilityView(*u))
}

func (h UtilityHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var req utilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.Service.UpdateUtility(r.Context(), currentActor(r), req.toDomain(id))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, utilityView(*u))
}

func (h UtilityHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteUtility(r.Context(), currentActor(r), id); err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
