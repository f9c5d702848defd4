package domain

// Principal is the authenticated identity attached to a single request.
// Only token verification produces one; it carries no mutable state.
type Principal struct {
	ID   uint
	Role Role
}

// IsAdmin reports whether the principal holds the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
