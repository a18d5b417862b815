// Package access derives admin capabilities from role and stored grants.
package access

import "selfreg-backend/internal/domain"

// Capabilities is the coarse, module-independent view of what an admin may do.
type Capabilities struct {
	CanRead         bool `json:"canRead"`
	CanWrite        bool `json:"canWrite"`
	CanDelete       bool `json:"canDelete"`
	CanManageAdmins bool `json:"canManageAdmins"`
}

// ModuleCapabilities is what an admin may do on a single module.
type ModuleCapabilities struct {
	CanRead   bool `json:"canRead"`
	CanWrite  bool `json:"canWrite"`
	CanDelete bool `json:"canDelete"`
}

// Has reports whether the capability for perm is set.
func (c ModuleCapabilities) Has(perm domain.PermissionType) bool {
	switch perm {
	case domain.PermRead:
		return c.CanRead
	case domain.PermWrite:
		return c.CanWrite
	case domain.PermDelete:
		return c.CanDelete
	}
	return false
}

// ResolveEffective computes the coarse capability set.
// super_admin always gets everything; otherwise any stored grant switches
// resolution to "any module grants that type", and an admin without grants
// falls back to the role defaults.
func ResolveEffective(role domain.AdminRole, grants []domain.PermissionGrant) Capabilities {
	if role == domain.RoleSuperAdmin {
		return Capabilities{CanRead: true, CanWrite: true, CanDelete: true, CanManageAdmins: true}
	}
	if len(grants) > 0 {
		var c Capabilities
		for _, g := range grants {
			switch g.Permission {
			case domain.PermRead:
				c.CanRead = true
			case domain.PermWrite:
				c.CanWrite = true
			case domain.PermDelete:
				c.CanDelete = true
			}
			if g.Module == domain.ModuleAdminUsers && (g.Permission == domain.PermRead || g.Permission == domain.PermWrite) {
				c.CanManageAdmins = true
			}
		}
		return c
	}
	return roleDefaults(role)
}

func roleDefaults(role domain.AdminRole) Capabilities {
	switch role {
	case domain.RoleLocalAdmin:
		return Capabilities{CanRead: true, CanWrite: true}
	case domain.RoleUserAdmin:
		return Capabilities{CanRead: true}
	}
	return Capabilities{}
}

// ResolveModule reports exactly which grants exist for module. It applies no
// role defaults and no super_admin rule; callers must special-case super_admin.
func ResolveModule(module domain.Module, grants []domain.PermissionGrant) ModuleCapabilities {
	var c ModuleCapabilities
	for _, g := range grants {
		if g.Module != module {
			continue
		}
		switch g.Permission {
		case domain.PermRead:
			c.CanRead = true
		case domain.PermWrite:
			c.CanWrite = true
		case domain.PermDelete:
			c.CanDelete = true
		}
	}
	return c
}

// ForModule is the capability set used to gate actions on module.
//
//   - super_admin: everything.
//   - admins with any stored grant: exactly their grants on module.
//   - admins without grants: role defaults, except admin_users which is never
//     reachable through defaults.
func ForModule(role domain.AdminRole, grants []domain.PermissionGrant, module domain.Module) ModuleCapabilities {
	if role == domain.RoleSuperAdmin {
		return ModuleCapabilities{CanRead: true, CanWrite: true, CanDelete: true}
	}
	if len(grants) > 0 {
		return ResolveModule(module, grants)
	}
	if module == domain.ModuleAdminUsers {
		return ModuleCapabilities{}
	}
	d := roleDefaults(role)
	return ModuleCapabilities{CanRead: d.CanRead, CanWrite: d.CanWrite, CanDelete: d.CanDelete}
}

// Allows is the authoritative gate for an action on module.
func Allows(role domain.AdminRole, grants []domain.PermissionGrant, module domain.Module, perm domain.PermissionType) bool {
	return ForModule(role, grants, module).Has(perm)
}

// VisibleModules returns the modules an admin can at least read, in display order.
func VisibleModules(role domain.AdminRole, grants []domain.PermissionGrant) []domain.Module {
	var out []domain.Module
	for _, m := range domain.Modules {
		if ForModule(role, grants, m).CanRead {
			out = append(out, m)
		}
	}
	return out
}
