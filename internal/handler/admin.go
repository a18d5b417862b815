package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/service"
)

// AdminHandler manages admin accounts and their module permissions.
type AdminHandler struct {
	Service service.AdminService
	Logger  *slog.Logger
}

func (h AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/admins", h.list)
	r.Post("/admin/admins", h.create)
	r.Put("/admin/admins/{id}", h.update)
	r.Delete("/admin/admins/{id}", h.delete)
	r.Get("/admin/admins/{id}/permissions", h.getPermissions)
	r.Put("/admin/admins/{id}/permissions", h.savePermissions)
}

func (h AdminHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context(), currentActor(r))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, adminView))
}

func (h AdminHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
		IsActive *bool  `json:"isActive"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	admin, err := h.Service.Create(r.Context(), currentActor(r), service.CreateAdminInput{
		Username: req.Username,
		Password: req.Password,
		Role:     domain.AdminRole(req.Role),
		IsActive: active,
	})
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, adminView(*admin))
}

func (h AdminHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Password *string `json:"password"`
		Role     *string `json:"role"`
		IsActive *bool   `json:"isActive"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	in := service.UpdateAdminInput{Password: req.Password, IsActive: req.IsActive}
	if req.Role != nil {
		role := domain.AdminRole(*req.Role)
		in.Role = &role
	}
	admin, err := h.Service.Update(r.Context(), currentActor(r), id, in)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, adminView(*admin))
}

func (h AdminHandler) delete(w http.ResponseWriter, r *http.Request) {
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

func (h AdminHandler) getPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	grants, err := h.Service.GetGrants(r.Context(), currentActor(r), id)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, grantViews(grants))
}

// savePermissions replaces the admin's grants with the submitted set.
func (h AdminHandler) savePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Permissions []struct {
			Module     string `json:"module"`
			Permission string `json:"permission"`
		} `json:"permissions"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	grants := make([]domain.PermissionGrant, 0, len(req.Permissions))
	for _, p := range req.Permissions {
		grants = append(grants, domain.PermissionGrant{
			AdminID:    id,
			Module:     domain.Module(p.Module),
			Permission: domain.PermissionType(p.Permission),
		})
	}
	saved, err := h.Service.SaveGrants(r.Context(), currentActor(r), id, grants)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, grantViews(saved))
}
