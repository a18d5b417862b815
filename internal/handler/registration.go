package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/export"
	"selfreg-backend/internal/service"
)

type RegistrationHandler struct {
	Service service.RegistrationService
	Logger  *slog.Logger
	Now     func() time.Time
}

func (h RegistrationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/registrations", h.list)
	r.Get("/admin/registrations/export", h.export)
	r.Post("/admin/registrations/bulk-approve", h.bulkApprove)
	r.Get("/admin/registrations/{id}", h.get)
	r.Put("/admin/registrations/{id}", h.update)
	r.Put("/admin/registrations/{id}/status", h.updateStatus)
	r.Delete("/admin/registrations/{id}", h.delete)
}

func (h RegistrationHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// parseListQuery reads the list filters shared by list and export.
func parseListQuery(r *http.Request) (service.ListQuery, error) {
	var q service.ListQuery
	values := r.URL.Query()
	if raw := values.Get("status"); raw != "" {
		status := domain.RegistrationStatus(raw)
		if !status.Valid() {
			return q, fmt.Errorf("invalid status %q", raw)
		}
		q.Filter.Status = &status
	}
	var err error
	if q.Filter.CategoryID, err = queryInt64(r, "categoryId"); err != nil {
		return q, err
	}
	if q.Filter.PanchayathID, err = queryInt64(r, "panchayathId"); err != nil {
		return q, err
	}
	q.Filter.Search = strings.TrimSpace(values.Get("q"))
	if q.Filter.From, err = parseDateQuery(r, "startDate"); err != nil {
		return q, fmt.Errorf("invalid startDate (use %s)", dateLayout)
	}
	if q.Filter.To, err = parseDateQuery(r, "endDate"); err != nil {
		return q, fmt.Errorf("invalid endDate (use %s)", dateLayout)
	}
	if q.Filter.From != nil && q.Filter.To != nil && q.Filter.To.Before(*q.Filter.From) {
		return q, fmt.Errorf("endDate must not be before startDate")
	}
	if raw := values.Get("expiringWithin"); raw != "" {
		n := queryInt(r, "expiringWithin", 0)
		if n <= 0 {
			return q, fmt.Errorf("expiringWithin must be a positive number of days")
		}
		q.ExpiringWithin = &n
	}
	q.Filter.Limit = queryInt(r, "limit", 0)
	return q, nil
}

func (h RegistrationHandler) list(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.Service.List(r.Context(), currentActor(r), q)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, registrationViews(items, h.now()))
}

func (h RegistrationHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	reg, err := h.Service.Get(r.Context(), currentActor(r), id)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, registrationView(*reg, h.now()))
}

func (h RegistrationHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Name         string  `json:"name"`
		Address      string  `json:"address"`
		MobileNumber string  `json:"mobileNumber"`
		Ward         string  `json:"ward"`
		AgentPro     *string `json:"agentPro"`
		FeePaid      int64   `json:"feePaid"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	reg, err := h.Service.Edit(r.Context(), currentActor(r), id, service.EditInput{
		Name:         req.Name,
		Address:      req.Address,
		MobileNumber: req.MobileNumber,
		Ward:         req.Ward,
		AgentPro:     req.AgentPro,
		FeePaid:      req.FeePaid,
	})
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, registrationView(*reg, h.now()))
}

func (h RegistrationHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	reg, err := h.Service.UpdateStatus(r.Context(), currentActor(r), id, domain.RegistrationStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, registrationView(*reg, h.now()))
}

func (h RegistrationHandler) bulkApprove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	outcomes, err := h.Service.BulkApprove(r.Context(), currentActor(r), req.IDs)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	now := h.now()
	results := make([]map[string]any, 0, len(outcomes))
	approved := 0
	for _, o := range outcomes {
		item := map[string]any{"id": o.ID, "ok": o.OK()}
		if o.OK() {
			approved++
			item["registration"] = registrationView(*o.Registration, now)
		} else {
			item["error"] = outcomeMessage(o.Err)
		}
		results = append(results, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"approved": approved,
		"failed":   len(outcomes) - approved,
		"results":  results,
	})
}

func (h RegistrationHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), currentActor(r), id); err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h RegistrationHandler) export(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
		return
	}
	items, err := h.Service.List(r.Context(), currentActor(r), q)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	now := h.now()
	var (
		data        []byte
		contentType string
	)
	if format == "xlsx" {
		data, err = export.RegistrationsXLSX(items, now)
		contentType = export.ContentTypeXLSX
	} else {
		data, err = export.RegistrationsCSV(items, now)
		contentType = export.ContentTypeCSV
	}
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"registrations_%s.%s\"", now.Format("20060102"), format))
	_, _ = w.Write(data)
}
