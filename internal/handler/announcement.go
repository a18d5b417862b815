package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/service"
)

type AnnouncementHandler struct {
	Service service.CatalogService
	Logger  *slog.Logger
}

func (h AnnouncementHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/announcements", h.list)
	r.Post("/admin/announcements", h.create)
	r.Put("/admin/announcements/{id}", h.update)
	r.Delete("/admin/announcements/{id}", h.delete)
}

type announcementRequest struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	IsActive   *bool   `json:"isActive"`
	ExpiryDate *string `json:"expiryDate"`
}

// toDomain accepts expiryDate as RFC3339 or a plain date, which expires at the end of that day.
func (req announcementRequest) toDomain(id int64) (domain.Announcement, bool) {
	a := domain.Announcement{ID: id, Title: req.Title, Content: req.Content, IsActive: true}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	if req.ExpiryDate != nil && *req.ExpiryDate != "" {
		if t, err := time.Parse(time.RFC3339, *req.ExpiryDate); err == nil {
			a.ExpiryDate = &t
		} else if d, err := time.Parse(dateLayout, *req.ExpiryDate); err == nil {
			end := d.Add(24*time.Hour - time.Second)
			a.ExpiryDate = &end
		} else {
			return a, false
		}
	}
	return a, true
}

func (h AnnouncementHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListAnnouncements(r.Context(), currentActor(r))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, announcementView))
}

func (h AnnouncementHandler) create(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, ok := req.toDomain(0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid expiryDate")
		return
	}
	a, err := h.Service.CreateAnnouncement(r.Context(), currentActor(r), in)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, announcementView(*a))
}

func (h AnnouncementHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var req announcementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, ok := req.toDomain(id)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid expiryDate")
		return
	}
	a, err := h.Service.UpdateAnnouncement(r.Context(), currentActor(r), in)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, announcementView(*a))
}

func (h AnnouncementHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteAnnouncement(r.Context(), currentActor(r), id); err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
