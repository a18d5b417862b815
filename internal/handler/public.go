package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"selfreg-backend/internal/service"
)

// PublicHandler serves the unauthenticated registrant-facing endpoints.
type PublicHandler struct {
	Registrations service.RegistrationService
	Catalog       service.CatalogService
	Logger        *slog.Logger
	Now           func() time.Time
}

func (h PublicHandler) RegisterRoutes(r chi.Router) {
	r.Get("/public/categories", h.categories)
	r.Get("/public/panchayaths", h.panchayaths)
	r.Get("/public/announcements", h.announcements)
	r.Get("/public/utilities", h.utilities)
	r.Post("/public/registrations", h.submit)
	r.Get("/public/registrations/status", h.status)
	r.Post("/public/registrations/confirm", h.confirm)
}

func (h PublicHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h PublicHandler) categories(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.PublicCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, categoryView))
}

func (h PublicHandler) panchayaths(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.PublicPanchayaths(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, panchayathView))
}

func (h PublicHandler) announcements(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.PublicAnnouncements(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, announcementView))
}

func (h PublicHandler) utilities(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.PublicUtilities(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, utilityView))
}

func (h PublicHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string  `json:"name"`
		MobileNumber string  `json:"mobileNumber"`
		Address      string  `json:"address"`
		Ward         string  `json:"ward"`
		AgentPro     *string `json:"agentPro"`
		CategoryID   int64   `json:"categoryId"`
		PanchayathID *int64  `json:"panchayathId"`
		Preference   *string `json:"preference"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	reg, err := h.Registrations.Submit(r.Context(), service.SubmitInput{
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
		Address:      req.Address,
		Ward:         req.Ward,
		AgentPro:     req.AgentPro,
		CategoryID:   req.CategoryID,
		PanchayathID: req.PanchayathID,
		Preference:   req.Preference,
	})
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, publicRegistrationView(*reg, h.now()))
}

func (h PublicHandler) status(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reg, found, err := h.Registrations.CheckStatus(r.Context(), q.Get("mobile"), q.Get("customerId"))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, map[string]any{"found": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"found":        true,
		"registration": publicRegistrationView(*reg, h.now()),
	})
}

func (h PublicHandler) confirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MobileNumber string `json:"mobileNumber"`
		CustomerID   string `json:"customerId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	reg, err := h.Registrations.SelfConfirm(r.Context(), req.MobileNumber, req.CustomerID)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, publicRegistrationView(*reg, h.now()))
}
