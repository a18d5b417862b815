package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"selfreg-backend/internal/apperr"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/ports"
	"selfreg-backend/internal/repository"
)

const minPasswordLength = 8

// AdminService manages admin accounts and their module grants.
type AdminService struct {
	Admins   ports.AdminStore
	Grants   ports.GrantStore
	Access   Authorizer
	Activity ActivityRecorder
}

type CreateAdminInput struct {
	Username string
	Password string
	Role     domain.AdminRole
	IsActive bool
}

type UpdateAdminInput struct {
	Password *string
	Role     *domain.AdminRole
	IsActive *bool
}

func (s AdminService) List(ctx context.Context, actor domain.Actor) ([]domain.AdminUser, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAdminUsers, domain.PermRead); err != nil {
		return nil, err
	}
	items, err := s.Admins.List(ctx)
	if err != nil {
		return nil, apperr.Upstream(err, "list admins")
	}
	return items, nil
}

func (s AdminService) Create(ctx context.Context, actor domain.Actor, in CreateAdminInput) (*domain.AdminUser, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAdminUsers, domain.PermWrite); err != nil {
		return nil, err
	}
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return nil, apperr.Validation("username is required")
	}
	if !in.Role.Valid() {
		return nil, apperr.Validation("invalid role %q", in.Role)
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	admin, err := s.Admins.Create(ctx, ports.CreateAdminParams{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     in.IsActive,
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperr.New(apperr.CodeConflict, "username already taken")
		}
		return nil, apperr.Upstream(err, "create admin")
	}
	s.Activity.Record(ctx, actorName(actor), domain.LogInfo, "Admin created", "%s created admin %s (%s)", actorName(actor), admin.Username, admin.Role)
	return admin, nil
}

func (s AdminService) Update(ctx context.Context, actor domain.Actor, id int64, in UpdateAdminInput) (*domain.AdminUser, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAdminUsers, domain.PermWrite); err != nil {
		return nil, err
	}
	var params ports.UpdateAdminParams
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperr.Validation("invalid role %q", *in.Role)
		}
		params.Role = in.Role
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		params.PasswordHash = &hash
	}
	if in.IsActive != nil {
		if !*in.IsActive && id == actor.AdminID {
			return nil, apperr.Validation("you cannot deactivate your own account")
		}
		params.IsActive = in.IsActive
	}
	admin, err := s.Admins.Update(ctx, id, params)
	if err != nil {
		return nil, translateStoreErr(err, "update admin")
	}
	s.Activity.Record(ctx, actorName(actor), domain.LogInfo, "Admin updated", "%s updated admin %s", actorName(actor), admin.Username)
	return admin, nil
}

func (s AdminService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if err := s.Access.Require(ctx, actor, domain.ModuleAdminUsers, domain.PermDelete); err != nil {
		return err
	}
	if id == actor.AdminID {
		return apperr.Validation("you cannot delete your own account")
	}
	if err := s.Admins.Delete(ctx, id); err != nil {
		return translateStoreErr(err, "delete admin")
	}
	s.Activity.Record(ctx, actorName(actor), domain.LogWarning, "Admin deleted", "%s deleted admin %d", actorName(actor), id)
	return nil
}

// GetGrants returns the stored grants of an admin.
func (s AdminService) GetGrants(ctx context.Context, actor domain.Actor, adminID int64) ([]domain.PermissionGrant, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAdminUsers, domain.PermRead); err != nil {
		return nil, err
	}
	if _, err := s.Admins.GetByID(ctx, adminID); err != nil {
		return nil, translateStoreErr(err, "load admin")
	}
	grants, err := s.Grants.ListGrants(ctx, adminID)
	if err != nil {
		return nil, apperr.Upstream(err, "load permissions")
	}
	return grants, nil
}

// SaveGrants replaces the admin's grant set. Saving an empty set puts the admin
// back on role defaults.
func (s AdminService) SaveGrants(ctx context.Context, actor domain.Actor, adminID int64, grants []domain.PermissionGrant) ([]domain.PermissionGrant, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAdminUsers, domain.PermWrite); err != nil {
		return nil, err
	}
	target, err := s.Admins.GetByID(ctx, adminID)
	if err != nil {
		return nil, translateStoreErr(err, "load admin")
	}
	if target.Role == domain.RoleSuperAdmin && len(grants) > 0 {
		return nil, apperr.Validation("super admins already hold every permission")
	}

	type key struct {
		m domain.Module
		p domain.PermissionType
	}
	seen := make(map[key]bool, len(grants))
	clean := make([]domain.PermissionGrant, 0, len(grants))
	for _, g := range grants {
		if !g.Module.Valid() {
			return nil, apperr.Validation("unknown module %q", g.Module)
		}
		if !g.Permission.Valid() {
			return nil, apperr.Validation("unknown permission type %q", g.Permission)
		}
		k := key{g.Module, g.Permission}
		if seen[k] {
			continue
		}
		seen[k] = true
		clean = append(clean, domain.PermissionGrant{AdminID: adminID, Module: g.Module, Permission: g.Permission})
	}

	if err := s.Grants.ReplaceGrants(ctx, adminID, clean); err != nil {
		return nil, apperr.Upstream(err, "save permissions")
	}
	s.Activity.Record(ctx, actorName(actor), domain.LogInfo, "Permissions updated", "%s saved %d grants for %s", actorName(actor), len(clean), target.Username)
	return clean, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", apperr.Validation("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperr.Validation("password is too long")
		}
		return "", apperr.Upstream(err, "hash password")
	}
	return string(hash), nil
}
