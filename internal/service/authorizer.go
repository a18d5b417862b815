package service

import (
	"context"
	"log/slog"

	"selfreg-backend/internal/access"
	"selfreg-backend/internal/apperr"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/metrics"
	"selfreg-backend/internal/ports"
)

// Authorizer gates actions on the actor's role and stored grants. Grants are
// read fresh on every check.
type Authorizer struct {
	Grants  ports.GrantStore
	Metrics *metrics.Metrics
}

func (a Authorizer) grantsFor(ctx context.Context, actor domain.Actor) ([]domain.PermissionGrant, error) {
	if actor.Role == domain.RoleSuperAdmin {
		return nil, nil
	}
	grants, err := a.Grants.ListGrants(ctx, actor.AdminID)
	if err != nil {
		return nil, apperr.Upstream(err, "load permissions")
	}
	return grants, nil
}

// Require fails with PermissionDenied unless actor holds perm on module.
func (a Authorizer) Require(ctx context.Context, actor domain.Actor, module domain.Module, perm domain.PermissionType) error {
	if actor.AdminID == 0 && actor.Role == "" {
		return apperr.New(apperr.CodePermissionDenied, "admin session required")
	}
	grants, err := a.grantsFor(ctx, actor)
	if err != nil {
		return err
	}
	if !access.Allows(actor.Role, grants, module, perm) {
		a.Metrics.IncDenied(string(module), string(perm))
		return apperr.Denied(string(perm), string(module))
	}
	return nil
}

// Can reports whether actor holds perm on module, treating lookup failures as "no".
func (a Authorizer) Can(ctx context.Context, actor domain.Actor, module domain.Module, perm domain.PermissionType) bool {
	grants, err := a.grantsFor(ctx, actor)
	if err != nil {
		return false
	}
	return access.Allows(actor.Role, grants, module, perm)
}

// Profile is the capability summary shown to an admin after sign-in.
type Profile struct {
	Actor          domain.Actor
	Effective      access.Capabilities
	Modules        map[domain.Module]access.ModuleCapabilities
	VisibleModules []domain.Module
}

func (a Authorizer) Profile(ctx context.Context, actor domain.Actor, logger *slog.Logger) Profile {
	p := Profile{
		Actor:   actor,
		Modules: make(map[domain.Module]access.ModuleCapabilities, len(domain.Modules)),
	}
	grants, err := a.grantsFor(ctx, actor)
	if err != nil {
		if logger != nil {
			logger.Warn("load permissions for profile", "admin_id", actor.AdminID, "err", err)
		}
		for _, m := range domain.Modules {
			p.Modules[m] = access.ModuleCapabilities{}
		}
		return p
	}
	p.Effective = access.ResolveEffective(actor.Role, grants)
	p.VisibleModules = access.VisibleModules(actor.Role, grants)
	for _, m := range domain.Modules {
		p.Modules[m] = access.ForModule(actor.Role, grants, m)
	}
	return p
}
