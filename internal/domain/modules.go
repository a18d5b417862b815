package domain

import "fmt"

// Module names the admin back-office areas a grant can target.
type Module string

// PermissionType is the kind of access a grant allows.
type PermissionType string

const (
	ModuleRegistrations Module = "registrations"
	ModuleCategories    Module = "categories"
	ModulePanchayaths   Module = "panchayaths"
	ModuleAnnouncements Module = "announcements"
	ModuleUtilities     Module = "utilities"
	ModuleAccounts      Module = "accounts"
	ModuleAdminUsers    Module = "admin_users"

	PermRead   PermissionType = "read"
	PermWrite  PermissionType = "write"
	PermDelete PermissionType = "delete"
)

// Modules lists every module in display order.
var Modules = []Module{
	ModuleRegistrations,
	ModuleCategories,
	ModulePanchayaths,
	ModuleAnnouncements,
	ModuleUtilities,
	ModuleAccounts,
	ModuleAdminUsers,
}

// PermissionTypes lists every grantable permission type.
var PermissionTypes = []PermissionType{PermRead, PermWrite, PermDelete}

func (m Module) Valid() bool {
	for _, known := range Modules {
		if m == known {
			return true
		}
	}
	return false
}

func (p PermissionType) Valid() bool {
	return p == PermRead || p == PermWrite || p == PermDelete
}

// ParseModule converts a stored or submitted module name.
func ParseModule(s string) (Module, error) {
	m := Module(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown module %q", s)
	}
	return m, nil
}

// ParsePermissionType converts a stored or submitted permission type.
func ParsePermissionType(s string) (PermissionType, error) {
	p := PermissionType(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown permission type %q", s)
	}
	return p, nil
}
