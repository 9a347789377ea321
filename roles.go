package accounts

// roleHierarchy orders roles for minimum-level checks.
var roleHierarchy = map[UserRole]int{
	RoleGuest:  0,
	RoleMember: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	_, ok := roleHierarchy[r]
	return ok
}

// ParseRole converts a string to a UserRole, returning whether it was valid
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// RoleIsAtLeast checks if role meets the minimum required role level
func RoleIsAtLeast(role, minRole UserRole) bool {
	roleLevel, ok := roleHierarchy[role]
	if !ok {
		return false
	}
	minLevel, ok := roleHierarchy[minRole]
	if !ok {
		return false
	}
	return roleLevel >= minLevel
}
