package auth

import "strings"

// Admin roles, lowest to highest.
const (
	RoleViewer = "viewer"
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
)

var roleRank = map[string]int{
	RoleViewer: 10,
	RoleAdmin:  20,
	RoleOwner:  30,
}

// NormalizeRole lowercases role and reports whether it is known.
func NormalizeRole(role string) (string, bool) {
	r := strings.ToLower(strings.TrimSpace(role))
	_, ok := roleRank[r]
	return r, ok
}

// HasRole reports whether role is at least minimum. An unknown minimum is never satisfied.
func HasRole(role, minimum string) bool {
	need, ok := roleRank[strings.ToLower(strings.TrimSpace(minimum))]
	if !ok {
		return false
	}
	return roleRank[strings.ToLower(strings.TrimSpace(role))] >= need
}
