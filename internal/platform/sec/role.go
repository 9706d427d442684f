// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

package sec

// # User Roles

// Role represents the authorization level granted to an account.
type Role string

const (
	// Unrestricted access across all tenants (platform operators)
	RoleAdmin Role = "ADMIN"

	// Full control inside a single tenant, including user management
	RoleTenantAdmin Role = "TENANT_ADMIN"

	// Standard operational access within a tenant
	RoleUser Role = "USER"

	// Read-only access within a tenant
	RoleViewer Role = "VIEWER"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r Role) AtLeast(target Role) bool {
	return r.level() >= target.level()
}

// Valid reports whether r is one of the known role tags.
func (r Role) Valid() bool {
	return r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r Role) level() int {

	// Linear scale (10-40) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 40
	case RoleTenantAdmin:
		return 30
	case RoleUser:
		return 20
	case RoleViewer:
		return 10
	default:
		return 0
	}
}

// # Role Sets

// HighestRole returns the most privileged role in the set, or [RoleViewer]
// when the set is empty. Accounts conventionally carry at least one role, but
// token claims are external input and must not panic on an empty slice.
func HighestRole(roles []string) Role {
	highest := RoleViewer
	for _, raw := range roles {
		if candidate := Role(raw); candidate.Valid() && candidate.AtLeast(highest) {
			highest = candidate
		}
	}
	return highest
}

// HasRole reports whether the set contains the exact role tag.
func HasRole(roles []string, target Role) bool {
	for _, raw := range roles {
		if Role(raw) == target {
			return true
		}
	}
	return false
}
