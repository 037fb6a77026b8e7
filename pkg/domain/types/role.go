package types

// Role is the marketplace role of an account. The identity provider's metadata is the
// source of truth for it; the application table mirrors it.
type Role string

const (
	RoleVoyageur    Role = "voyageur"
	RolePrestataire Role = "prestataire"
	RoleAdmin       Role = "admin"

	// DefaultRole applies when identity metadata carries no role
	DefaultRole = RoleVoyageur
)

// AllRoles returns the roles known to the marketplace
func AllRoles() []Role {
	return []Role{
		RoleVoyageur,
		RolePrestataire,
		RoleAdmin,
	}
}

// IsKnown reports whether r is one of AllRoles. Unknown roles are still carried verbatim
// through reconciliation.
func (r Role) IsKnown() bool {
	switch r {
	case RoleVoyageur, RolePrestataire, RoleAdmin:
		return true
	default:
		return false
	}
}

// Normalize returns DefaultRole for an empty role
func (r Role) Normalize() Role {
	if r == "" {
		return DefaultRole
	}
	return r
}

func (r Role) String() string {
	return string(r)
}
