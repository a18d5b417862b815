package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/service"
)

type CategoryHandler struct {
	Service service.CatalogService
	Logger  *slog.Logger
}

func (h CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/categories", h.list)
	r.Post("/admin/categories", h.create)
	r.Put("/admin/categories/{id}", h.update)
	r.Delete("/admin/categories/{id}", h.delete)
}

type categoryRequest struct {
	Name         string  `json:"name"`
	ActualFee    int64   `json:"actualFee"`
	OfferFee     int64   `json:"offerFee"`
	IsActive     *bool   `json:"isActive"`
	Description  *string `json:"description"`
	PopupWarning *string `json:"popupWarning"`
	ImageURL     *string `json:"imageUrl"`
	QRImageURL   *string `json:"qrImageUrl"`
}

func (req categoryRequest) toDomain(id int64) domain.Category {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return domain.Category{
		ID:           id,
		Name:         req.Name,
		ActualFee:    req.ActualFee,
		OfferFee:     req.OfferFee,
		IsActive:     active,
		Description:  req.Description,
		PopupWarning: req.PopupWarning,
		ImageURL:     req.ImageURL,
		QRImageURL:   req.QRImageURL,
	}
}

func (h CategoryHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListCategories(r.Context(), currentActor(r))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, categoryView))
}

func (h CategoryHandler) create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.Service.CreateCategory(r.Context(), currentActor(r), req.toDomain(0))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryView(*c))
}

func (h CategoryHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.Service.UpdateCategory(r.Context(), currentActor(r), req.toDomain(id))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryView(*c))
}

func (h CategoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteCategory(r.Context(), currentActor(r), id); err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
