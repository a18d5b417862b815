package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/service"
)

type PanchayathHandler struct {
	Service service.CatalogService
	Logger  *slog.Logger
}

func (h PanchayathHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/panchayaths", h.list)
	r.Post("/admin/panchayaths", h.create)
	r.Put("/admin/panchayaths/{id}", h.update)
	r.Delete("/admin/panchayaths/{id}", h.delete)
}

type panchayathRequest struct {
	Name     string `json:"name"`
	District string `json:"district"`
}

func (h PanchayathHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListPanchayaths(r.Context(), currentActor(r))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, panchayathView))
}

func (h PanchayathHandler) create(w http.ResponseWriter, r *http.Request) {
	var req panchayathRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.Service.CreatePanchayath(r.Context(), currentActor(r), domain.Panchayath{Name: req.Name, District: req.District})
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, panchayathView(*p))
}

func (h PanchayathHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var req panchayathRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.Service.UpdatePanchayath(r.Context(), currentActor(r), domain.Panchayath{ID: id, Name: req.Name, District: req.District})
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, panchayathView(*p))
}

func (h PanchayathHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeletePanchayath(r.Context(), currentActor(r), id); err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
